package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// ActivityPointRepo реализует repository.ActivityPointRepository
type ActivityPointRepo struct {
	db *gorm.DB
}

// NewActivityPointRepo создает новый репозиторий балансов очков
func NewActivityPointRepo(db *gorm.DB) *ActivityPointRepo {
	return &ActivityPointRepo{db: db}
}

func (r *ActivityPointRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// GetByUserID возвращает баланс пользователя
func (r *ActivityPointRepo) GetByUserID(userID string) (*entity.ActivityPoint, error) {
	var point entity.ActivityPoint
	err := r.db.Where("user_id = ?", userID).First(&point).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &point, nil
}

// GetAll возвращает все балансы, отсортированные для рейтинга.
// Ничья по очкам разрешается в пользу того, кто раньше достиг текущего
// баланса, затем по user_id для полной детерминированности.
func (r *ActivityPointRepo) GetAll() ([]entity.ActivityPoint, error) {
	var points []entity.ActivityPoint
	err := r.db.
		Order("points DESC").
		Order("last_accumulated_at ASC NULLS LAST").
		Order("user_id ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Upsert сохраняет баланс (создаёт строку при первом начислении)
func (r *ActivityPointRepo) Upsert(tx *gorm.DB, point *entity.ActivityPoint) error {
	return r.conn(tx).Save(point).Error
}

// ResetUser удаляет баланс одного пользователя
func (r *ActivityPointRepo) ResetUser(tx *gorm.DB, userID string) error {
	return r.conn(tx).Where("user_id = ?", userID).Delete(&entity.ActivityPoint{}).Error
}

// ResetAll удаляет все балансы
func (r *ActivityPointRepo) ResetAll(tx *gorm.DB) error {
	return r.conn(tx).Where("1 = 1").Delete(&entity.ActivityPoint{}).Error
}
