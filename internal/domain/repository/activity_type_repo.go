package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// ActivityTypeConfigRepository определяет методы для работы с реестром типов активности
type ActivityTypeConfigRepository interface {
	GetByType(activityType string) (*entity.ActivityTypeConfig, error)
	GetAll() ([]entity.ActivityTypeConfig, error)
	Save(cfg *entity.ActivityTypeConfig) error
	// CreateIfMissing создает конфигурацию, если её ещё нет.
	// Возвращает true, если запись была создана.
	CreateIfMissing(cfg *entity.ActivityTypeConfig) (bool, error)
}
