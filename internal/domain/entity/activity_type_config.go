package entity

import (
	"time"
)

// Встроенные типы активности. Список открытый: админ может завести
// собственный тип через SetActivityTypeConfig.
const (
	ActivityTypeMessage         = "MESSAGE"
	ActivityTypeForumPost       = "FORUM_POST"
	ActivityTypeReaction        = "REACTION"
	ActivityTypeVoice           = "VOICE"
	ActivityTypeQuizCorrect     = "QUIZ_CORRECT"
	ActivityTypeQuizParticipate = "QUIZ_PARTICIPATE"
)

// ActivityTypeConfig описывает правила начисления очков для одного типа активности
type ActivityTypeConfig struct {
	ActivityType    string    `gorm:"primaryKey;size:50" json:"activity_type"`
	Points          int       `gorm:"not null" json:"points"`
	CooldownMinutes int       `gorm:"not null;default:0" json:"cooldown_minutes"`
	DailyCap        *int      `json:"daily_cap,omitempty"`
	Enabled         bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ActivityTypeConfig) TableName() string {
	return "activity_type_configs"
}

// Cooldown возвращает кулдаун типа активности как time.Duration
func (c *ActivityTypeConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// DefaultActivityTypeConfigs возвращает стартовый набор типов активности.
// Используется для первичного заполнения таблицы при запуске.
func DefaultActivityTypeConfigs() []ActivityTypeConfig {
	reactionCap := 20
	return []ActivityTypeConfig{
		{ActivityType: ActivityTypeMessage, Points: 10, CooldownMinutes: 5, Enabled: true},
		{ActivityType: ActivityTypeForumPost, Points: 50, CooldownMinutes: 10, Enabled: true},
		{ActivityType: ActivityTypeReaction, Points: 5, CooldownMinutes: 1, DailyCap: &reactionCap, Enabled: true},
		{ActivityType: ActivityTypeVoice, Points: 20, CooldownMinutes: 30, Enabled: true},
		{ActivityType: ActivityTypeQuizCorrect, Points: 100, CooldownMinutes: 0, Enabled: true},
		{ActivityType: ActivityTypeQuizParticipate, Points: 30, CooldownMinutes: 0, Enabled: true},
	}
}
