package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
)

// AccumulationLogRepository определяет методы для работы с журналом rate-limit
// пар (пользователь, тип активности)
type AccumulationLogRepository interface {
	Get(userID, activityType string) (*entity.PointAccumulationLog, error)
	Upsert(tx *gorm.DB, log *entity.PointAccumulationLog) error
	ResetUser(tx *gorm.DB, userID string) error
	ResetAll(tx *gorm.DB) error
}
