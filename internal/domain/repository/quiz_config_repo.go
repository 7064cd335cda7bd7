package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuizConfigRepository определяет методы для работы с синглтон-конфигурацией квиза
type QuizConfigRepository interface {
	// Get возвращает конфигурацию (строка с id=1) или ErrNotFound
	Get() (*entity.QuizConfig, error)
	Save(cfg *entity.QuizConfig) error
}
