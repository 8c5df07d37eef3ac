package database

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRetriesExhausted 重试次数耗尽
var ErrRetriesExhausted = errors.New("maximum retries exceeded")

// 可重试的 PostgreSQL 错误码
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgTooManyConnections   = "53300"
)

// TransientError 瞬时错误，可携带服务端建议的重试等待时间
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// defaultBackoff 无重试提示时的基础等待时间
const defaultBackoff = 100 * time.Millisecond

// Retrier 对数据库操作执行带退避的自动重试
type Retrier struct {
	MaxRetries int
	// Sleep 可注入以便测试，默认 time.Sleep
	Sleep func(time.Duration)
}

// NewRetrier 创建重试器
func NewRetrier(maxRetries int) *Retrier {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Retrier{
		MaxRetries: maxRetries,
		Sleep:      time.Sleep,
	}
}

// ExecuteWithRetries 执行操作，瞬时错误按退避提示重试，非瞬时错误立即返回
func (r *Retrier) ExecuteWithRetries(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < r.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		hint, transient := classify(err)
		if !transient {
			return err
		}
		lastErr = err

		backoff := backoffDuration(hint)
		log.Printf("transient database error (attempt %d/%d), retrying in %v: %v",
			attempt+1, r.MaxRetries, backoff, err)
		r.sleep(backoff)
	}
	return errors.Join(ErrRetriesExhausted, lastErr)
}

func (r *Retrier) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}

// backoffDuration 计算实际等待时间：提示值（或默认值）加上少量抖动
func backoffDuration(hint time.Duration) time.Duration {
	base := hint
	if base <= 0 {
		base = defaultBackoff
	}
	jitter := 50*time.Millisecond + time.Duration(rand.Int63n(int64(50*time.Millisecond)))
	return base + jitter
}

// classify 判断错误是否为瞬时错误，并提取重试等待提示
func classify(err error) (time.Duration, bool) {
	var te *TransientError
	if errors.As(err, &te) {
		return te.RetryAfter, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgTooManyConnections:
			return 0, true
		}
	}
	return 0, false
}
