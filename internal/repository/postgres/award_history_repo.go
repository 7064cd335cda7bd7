package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/domain/repository"
)

// PointAwardHistoryRepo реализует repository.PointAwardHistoryRepository
type PointAwardHistoryRepo struct {
	db *gorm.DB
}

// NewPointAwardHistoryRepo создает новый репозиторий истории начислений
func NewPointAwardHistoryRepo(db *gorm.DB) *PointAwardHistoryRepo {
	return &PointAwardHistoryRepo{db: db}
}

func (r *PointAwardHistoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Insert добавляет неизменяемую запись о начислении
func (r *PointAwardHistoryRepo) Insert(tx *gorm.DB, rec *entity.PointAwardHistory) error {
	return r.conn(tx).Create(rec).Error
}

// AggregateByType возвращает суммы начислений пользователя по типам активности.
// Нулевые границы периода означают "без ограничения".
func (r *PointAwardHistoryRepo) AggregateByType(userID string, from, to *time.Time) ([]repository.ActivityTypeTotal, error) {
	query := r.db.Model(&entity.PointAwardHistory{}).
		Select("activity_type, SUM(points) AS total_points").
		Where("user_id = ?", userID)

	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var totals []repository.ActivityTypeTotal
	err := query.Group("activity_type").Order("activity_type").Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// ResetUser удаляет историю начислений одного пользователя
func (r *PointAwardHistoryRepo) ResetUser(tx *gorm.DB, userID string) error {
	return r.conn(tx).Where("user_id = ?", userID).Delete(&entity.PointAwardHistory{}).Error
}

// ResetAll удаляет всю историю начислений
func (r *PointAwardHistoryRepo) ResetAll(tx *gorm.DB) error {
	return r.conn(tx).Where("1 = 1").Delete(&entity.PointAwardHistory{}).Error
}
