package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
)

// ActivityTypeTotal — агрегат истории начислений по одному типу активности
type ActivityTypeTotal struct {
	ActivityType string `json:"activity_type"`
	TotalPoints  int    `json:"total_points"`
}

// PointAwardHistoryRepository определяет методы для работы с историей начислений
type PointAwardHistoryRepository interface {
	Insert(tx *gorm.DB, rec *entity.PointAwardHistory) error
	// AggregateByType возвращает суммы начислений по типам активности за период.
	// Нулевые границы периода означают "без ограничения".
	AggregateByType(userID string, from, to *time.Time) ([]ActivityTypeTotal, error)
	ResetUser(tx *gorm.DB, userID string) error
	ResetAll(tx *gorm.DB) error
}
