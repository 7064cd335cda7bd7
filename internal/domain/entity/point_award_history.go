package entity

import (
	"time"
)

// PointAwardHistory — неизменяемая запись об одном начислении очков.
// Используется для отчётов по периодам, сами очки живут в ActivityPoint.
type PointAwardHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:32;not null;index" json:"user_id"`
	ActivityType string    `gorm:"size:50;not null;index" json:"activity_type"`
	Points       int       `gorm:"not null" json:"points"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PointAwardHistory) TableName() string {
	return "point_award_histories"
}
