package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuizPublishHistoryRepository определяет методы для работы с журналом публикаций.
// Уникальный индекс по published_date — последняя линия защиты от двойной
// публикации при гонке триггеров: нарушение уникальности транслируется
// в gorm.ErrDuplicatedKey.
type QuizPublishHistoryRepository interface {
	Create(history *entity.QuizPublishHistory) error
	GetByDate(date string) (*entity.QuizPublishHistory, error)
	Update(history *entity.QuizPublishHistory) error
	// MarkRevealed атомарно выставляет explanation_revealed=true.
	// Возвращает false, если строка уже была раскрыта (повторный триггер).
	MarkRevealed(id uint) (bool, error)
	// DeleteAll очищает журнал (сброс пула при исчерпании банка вопросов).
	// Возвращает количество удалённых строк.
	DeleteAll() (int64, error)
}
