package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ashwinyue/aria/internal/model"
)

func newTestTurnRepo(t *testing.T) *TurnRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ChatTurn{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewTurnRepository(db)
}

// seedTurns 为 user1 在 4、5、6 三个对话各写入若干轮次，外加另一个用户的干扰数据
func seedTurns(t *testing.T, repo *TurnRepository) {
	t.Helper()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	for chatID, count := range map[int]int{4: 3, 5: 2, 6: 1} {
		for turnID := 0; turnID < count; turnID++ {
			seq++
			err := repo.Append(&model.ChatTurn{
				UserID:       "user1",
				ChatID:       chatID,
				TurnID:       turnID,
				HumanMessage: "h",
				AIMessage:    "a",
				Timestamp:    base.Add(time.Duration(chatID*100+turnID) * time.Minute),
			})
			if err != nil {
				t.Fatalf("seed turn %d: %v", seq, err)
			}
		}
	}
	if err := repo.Append(&model.ChatTurn{
		UserID: "user2", ChatID: 5, TurnID: 0, Timestamp: base,
	}); err != nil {
		t.Fatalf("seed other user: %v", err)
	}
}

func chatIDs(turns []*model.ChatTurn) map[int]int {
	counts := make(map[int]int)
	for _, turn := range turns {
		counts[turn.ChatID]++
	}
	return counts
}

func TestTurnRepository_QueryScopes(t *testing.T) {
	repo := newTestTurnRepo(t)
	seedTurns(t, repo)

	tests := []struct {
		name       string
		chatID     int
		scope      Scope
		limit      int
		wantCounts map[int]int
	}{
		{
			name:       "current returns only the given chat",
			chatID:     5,
			scope:      ScopeCurrent,
			limit:      10,
			wantCounts: map[int]int{5: 2},
		},
		{
			name:       "previous of 5 excludes chat 5",
			chatID:     5,
			scope:      ScopePrevious,
			limit:      10,
			wantCounts: map[int]int{4: 3},
		},
		{
			name:       "previous of 6 includes chat 5 only",
			chatID:     6,
			scope:      ScopePrevious,
			limit:      10,
			wantCounts: map[int]int{5: 2},
		},
		{
			name:       "previous ignores the limit",
			chatID:     5,
			scope:      ScopePrevious,
			limit:      1,
			wantCounts: map[int]int{4: 3},
		},
		{
			name:       "all spans every chat of the user",
			chatID:     6,
			scope:      ScopeAll,
			limit:      0,
			wantCounts: map[int]int{4: 3, 5: 2, 6: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, err := repo.Query("user1", tt.chatID, tt.scope, tt.limit)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			got := chatIDs(turns)
			if len(got) != len(tt.wantCounts) {
				t.Fatalf("chats = %v, want %v", got, tt.wantCounts)
			}
			for chatID, count := range tt.wantCounts {
				if got[chatID] != count {
					t.Errorf("chat %d turns = %d, want %d", chatID, got[chatID], count)
				}
			}
			for _, turn := range turns {
				if turn.UserID != "user1" {
					t.Errorf("leaked turn of user %q", turn.UserID)
				}
			}
		})
	}
}

func TestTurnRepository_QueryCurrentLimitKeepsLatest(t *testing.T) {
	repo := newTestTurnRepo(t)
	seedTurns(t, repo)

	turns, err := repo.Query("user1", 4, ScopeCurrent, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	// 最近的两轮按时间升序返回
	if turns[0].TurnID != 1 || turns[1].TurnID != 2 {
		t.Errorf("turn ids = %d,%d, want 1,2", turns[0].TurnID, turns[1].TurnID)
	}
	if !turns[0].Timestamp.Before(turns[1].Timestamp) {
		t.Error("turns not in chronological order")
	}
}

func TestTurnRepository_QueryCurrentUnlimited(t *testing.T) {
	repo := newTestTurnRepo(t)
	seedTurns(t, repo)

	turns, err := repo.Query("user1", 4, ScopeCurrent, 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(turns) != 3 {
		t.Errorf("turns = %d, want all 3", len(turns))
	}
}

func TestTurnRepository_LatestTurnID(t *testing.T) {
	repo := newTestTurnRepo(t)
	seedTurns(t, repo)

	latest, err := repo.LatestTurnID("user1", 4)
	if err != nil {
		t.Fatalf("LatestTurnID() error = %v", err)
	}
	if latest != 2 {
		t.Errorf("latest = %d, want 2", latest)
	}

	latest, err = repo.LatestTurnID("user1", 99)
	if err != nil {
		t.Fatalf("LatestTurnID() error = %v", err)
	}
	if latest != -1 {
		t.Errorf("latest = %d, want -1 for missing chat", latest)
	}
}
