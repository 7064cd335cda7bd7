package repository

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuizAnswerRepository определяет методы для работы с ответами пользователей
type QuizAnswerRepository interface {
	Create(answer *entity.QuizAnswer) error
	GetByQuestionAndUser(questionID uint, userID string) (*entity.QuizAnswer, error)
	Save(answer *entity.QuizAnswer) error
	// GetUnawarded возвращает ответы с ещё не начисленными очками (points_awarded = 0)
	GetUnawarded(questionID uint) ([]entity.QuizAnswer, error)
	// CountByQuestion возвращает общее число ответов и число правильных
	CountByQuestion(questionID uint) (total int64, correct int64, err error)
	// CountByOption возвращает распределение ответов по вариантам [1..5]
	CountByOption(questionID uint) (map[int]int64, error)
}
