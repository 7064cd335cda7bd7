package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuizQuestionRepository определяет методы для работы с банком вопросов
type QuizQuestionRepository interface {
	Create(question *entity.QuizQuestion) error
	GetByID(id uint) (*entity.QuizQuestion, error)
	// ExistsByText проверяет наличие вопроса с точно таким же текстом
	ExistsByText(text string) (bool, error)
	// List возвращает страницу вопросов (с категорией) и общее количество.
	// categoryID == nil означает все категории.
	List(categoryID *uint, limit, offset int) ([]entity.QuizQuestion, int64, error)
	Delete(id uint) error
	// GetUnpublished возвращает вопросы, ещё не встречавшиеся в журнале публикаций
	GetUnpublished() ([]entity.QuizQuestion, error)
	CountByCategory(categoryID uint) (int64, error)
}
