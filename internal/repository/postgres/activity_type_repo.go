package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// ActivityTypeConfigRepo реализует repository.ActivityTypeConfigRepository
type ActivityTypeConfigRepo struct {
	db *gorm.DB
}

// NewActivityTypeConfigRepo создает новый репозиторий реестра типов активности
func NewActivityTypeConfigRepo(db *gorm.DB) *ActivityTypeConfigRepo {
	return &ActivityTypeConfigRepo{db: db}
}

// GetByType возвращает конфигурацию типа активности
func (r *ActivityTypeConfigRepo) GetByType(activityType string) (*entity.ActivityTypeConfig, error) {
	var cfg entity.ActivityTypeConfig
	err := r.db.Where("activity_type = ?", activityType).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// GetAll возвращает все типы активности
func (r *ActivityTypeConfigRepo) GetAll() ([]entity.ActivityTypeConfig, error) {
	var configs []entity.ActivityTypeConfig
	err := r.db.Order("activity_type").Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// Save создает или обновляет конфигурацию типа активности
func (r *ActivityTypeConfigRepo) Save(cfg *entity.ActivityTypeConfig) error {
	return r.db.Save(cfg).Error
}

// CreateIfMissing создает конфигурацию, если её ещё нет (первичное заполнение).
// Существующие настройки не перетираются.
func (r *ActivityTypeConfigRepo) CreateIfMissing(cfg *entity.ActivityTypeConfig) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(cfg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
