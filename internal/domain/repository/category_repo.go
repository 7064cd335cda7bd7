package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuizCategoryRepository определяет методы для работы с категориями вопросов
type QuizCategoryRepository interface {
	Create(category *entity.QuizCategory) error
	GetByID(id uint) (*entity.QuizCategory, error)
	GetByName(name string) (*entity.QuizCategory, error)
	GetAll() ([]entity.QuizCategory, error)
	Delete(id uint) error
}
