package model

import "time"

// TherapyPlan 某一会话的治疗计划
type TherapyPlan struct {
	ChatID            int      `json:"chat_id"`
	Exercises         []string `json:"exercises"`
	SubmitAssignments []string `json:"submit_assignments"`
	AssignAssignments []string `json:"assign_assignments"`
	AssignExercises   []string `json:"assign_exercises"`
	ShareResources    []string `json:"share_resources"`
}

// MentalHealthConcern 心理困扰及其严重程度
// Severity 取值 0-10，finalize 时按进展增量调整
type MentalHealthConcern struct {
	Label    string `json:"label"`
	Severity int    `json:"severity"`
}

// UserJourney 用户的长期治疗档案，每个 user_id 一行
// 不存在该行即表示用户是首次使用
type UserJourney struct {
	ID                   uint            `gorm:"primaryKey" json:"-"`
	UserID               string          `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	PatientGoals         StringList      `gorm:"type:jsonb" json:"patient_goals"`
	TherapyType          StringList      `gorm:"type:jsonb" json:"therapy_type"`
	TherapyPlan          TherapyPlanList `gorm:"type:jsonb" json:"therapy_plan"`
	MentalHealthConcerns ConcernList     `gorm:"type:jsonb" json:"mental_health_concerns"`
	LastUpdate           time.Time       `gorm:"autoUpdateTime" json:"last_update"`
}

// TableName 指定表名
func (UserJourney) TableName() string {
	return "user_journeys"
}
