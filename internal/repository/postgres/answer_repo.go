package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuizAnswerRepo реализует repository.QuizAnswerRepository
type QuizAnswerRepo struct {
	db *gorm.DB
}

// NewQuizAnswerRepo создает новый репозиторий ответов
func NewQuizAnswerRepo(db *gorm.DB) *QuizAnswerRepo {
	return &QuizAnswerRepo{db: db}
}

// Create создает новый ответ пользователя
func (r *QuizAnswerRepo) Create(answer *entity.QuizAnswer) error {
	return r.db.Create(answer).Error
}

// GetByQuestionAndUser возвращает ответ пользователя на вопрос
func (r *QuizAnswerRepo) GetByQuestionAndUser(questionID uint, userID string) (*entity.QuizAnswer, error) {
	var answer entity.QuizAnswer
	err := r.db.Where("question_id = ? AND user_id = ?", questionID, userID).First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &answer, nil
}

// Save обновляет ответ (смена варианта до раскрытия, фиксация очков при раскрытии)
func (r *QuizAnswerRepo) Save(answer *entity.QuizAnswer) error {
	return r.db.Save(answer).Error
}

// GetUnawarded возвращает ответы с ещё не начисленными очками
func (r *QuizAnswerRepo) GetUnawarded(questionID uint) ([]entity.QuizAnswer, error) {
	var answers []entity.QuizAnswer
	err := r.db.
		Where("question_id = ? AND points_awarded = ?", questionID, 0).
		Order("id").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// CountByQuestion возвращает общее число ответов и число правильных
func (r *QuizAnswerRepo) CountByQuestion(questionID uint) (int64, int64, error) {
	var total int64
	if err := r.db.Model(&entity.QuizAnswer{}).
		Where("question_id = ?", questionID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var correct int64
	if err := r.db.Model(&entity.QuizAnswer{}).
		Where("question_id = ? AND is_correct = ?", questionID, true).
		Count(&correct).Error; err != nil {
		return 0, 0, err
	}

	return total, correct, nil
}

// CountByOption возвращает распределение ответов по вариантам [1..5]
func (r *QuizAnswerRepo) CountByOption(questionID uint) (map[int]int64, error) {
	type optionCount struct {
		SelectedOption int
		Count          int64
	}

	var rows []optionCount
	err := r.db.Model(&entity.QuizAnswer{}).
		Select("selected_option, COUNT(*) AS count").
		Where("question_id = ?", questionID).
		Group("selected_option").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, entity.QuizOptionCount)
	for opt := 1; opt <= entity.QuizOptionCount; opt++ {
		counts[opt] = 0
	}
	for _, row := range rows {
		counts[row.SelectedOption] = row.Count
	}
	return counts, nil
}
