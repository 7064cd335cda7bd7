package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// AccumulationLogRepo реализует repository.AccumulationLogRepository
type AccumulationLogRepo struct {
	db *gorm.DB
}

// NewAccumulationLogRepo создает новый репозиторий журнала rate-limit
func NewAccumulationLogRepo(db *gorm.DB) *AccumulationLogRepo {
	return &AccumulationLogRepo{db: db}
}

func (r *AccumulationLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Get возвращает журнал для пары (пользователь, тип активности)
func (r *AccumulationLogRepo) Get(userID, activityType string) (*entity.PointAccumulationLog, error) {
	var log entity.PointAccumulationLog
	err := r.db.Where("user_id = ? AND activity_type = ?", userID, activityType).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// Upsert сохраняет журнал (создаёт строку при первом начислении)
func (r *AccumulationLogRepo) Upsert(tx *gorm.DB, log *entity.PointAccumulationLog) error {
	return r.conn(tx).Save(log).Error
}

// ResetUser удаляет журналы одного пользователя (по всем типам активности)
func (r *AccumulationLogRepo) ResetUser(tx *gorm.DB, userID string) error {
	return r.conn(tx).Where("user_id = ?", userID).Delete(&entity.PointAccumulationLog{}).Error
}

// ResetAll удаляет все журналы
func (r *AccumulationLogRepo) ResetAll(tx *gorm.DB) error {
	return r.conn(tx).Where("1 = 1").Delete(&entity.PointAccumulationLog{}).Error
}
