package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
)

// ActivityPointRepository определяет методы для работы с балансами очков.
// Методы с параметром tx выполняются внутри переданной транзакции;
// nil означает выполнение вне транзакции.
type ActivityPointRepository interface {
	GetByUserID(userID string) (*entity.ActivityPoint, error)
	// GetAll возвращает все балансы, отсортированные по points DESC.
	// Ничья разрешается по last_accumulated_at ASC (кто раньше достиг), затем по user_id.
	GetAll() ([]entity.ActivityPoint, error)
	Upsert(tx *gorm.DB, point *entity.ActivityPoint) error
	ResetUser(tx *gorm.DB, userID string) error
	ResetAll(tx *gorm.DB) error
}
