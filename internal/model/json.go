package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue 序列化为 jsonb 列值
func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// jsonScan 从 jsonb 列值反序列化
func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type: %T", src)
	}
}

// StringList 字符串列表（jsonb 存储）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return jsonValue(l)
}

func (l *StringList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// ConcernProgressList 困扰进展列表（jsonb 存储）
type ConcernProgressList []ConcernProgress

func (l ConcernProgressList) Value() (driver.Value, error) {
	if l == nil {
		l = ConcernProgressList{}
	}
	return jsonValue(l)
}

func (l *ConcernProgressList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// TherapyPlanList 治疗计划列表（jsonb 存储）
type TherapyPlanList []TherapyPlan

func (l TherapyPlanList) Value() (driver.Value, error) {
	if l == nil {
		l = TherapyPlanList{}
	}
	return jsonValue(l)
}

func (l *TherapyPlanList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// ConcernList 心理困扰列表（jsonb 存储）
type ConcernList []MentalHealthConcern

func (l ConcernList) Value() (driver.Value, error) {
	if l == nil {
		l = ConcernList{}
	}
	return jsonValue(l)
}

func (l *ConcernList) Scan(src interface{}) error {
	return jsonScan(src, l)
}
