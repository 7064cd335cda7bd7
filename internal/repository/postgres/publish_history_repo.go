package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuizPublishHistoryRepo реализует repository.QuizPublishHistoryRepository
type QuizPublishHistoryRepo struct {
	db *gorm.DB
}

// NewQuizPublishHistoryRepo создает новый репозиторий журнала публикаций
func NewQuizPublishHistoryRepo(db *gorm.DB) *QuizPublishHistoryRepo {
	return &QuizPublishHistoryRepo{db: db}
}

// Create создает запись о публикации за день.
// При гонке двух триггеров уникальный индекс по published_date вернёт
// gorm.ErrDuplicatedKey — вызывающий код трактует это как идемпотентный no-op.
func (r *QuizPublishHistoryRepo) Create(history *entity.QuizPublishHistory) error {
	return r.db.Create(history).Error
}

// GetByDate возвращает запись о публикации за указанную дату
func (r *QuizPublishHistoryRepo) GetByDate(date string) (*entity.QuizPublishHistory, error) {
	var history entity.QuizPublishHistory
	err := r.db.Where("published_date = ?", date).First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

// Update обновляет запись о публикации (message_id и т.п.)
func (r *QuizPublishHistoryRepo) Update(history *entity.QuizPublishHistory) error {
	return r.db.Save(history).Error
}

// MarkRevealed атомарно выставляет explanation_revealed=true.
// Условие WHERE гарантирует, что окно ответов закроет ровно один вызов:
// повторный (или конкурентный) триггер получит false.
func (r *QuizPublishHistoryRepo) MarkRevealed(id uint) (bool, error) {
	result := r.db.Model(&entity.QuizPublishHistory{}).
		Where("id = ? AND explanation_revealed = ?", id, false).
		Update("explanation_revealed", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAll очищает журнал публикаций (сброс пула вопросов)
func (r *QuizPublishHistoryRepo) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&entity.QuizPublishHistory{})
	return result.RowsAffected, result.Error
}
