package entity

import (
	"time"
)

// QuizAnswer — ответ одного пользователя на один опубликованный вопрос.
// До раскрытия ответ можно менять; очки начисляются ровно один раз
// на этапе раскрытия (PointsAwarded > 0 означает "рассчитан").
type QuizAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	QuestionID     uint      `gorm:"not null;uniqueIndex:idx_quiz_answer_question_user,priority:1" json:"question_id"`
	UserID         string    `gorm:"size:32;not null;uniqueIndex:idx_quiz_answer_question_user,priority:2" json:"user_id"`
	SelectedOption int       `gorm:"not null" json:"selected_option"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	PointsAwarded  int       `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizAnswer) TableName() string {
	return "quiz_answers"
}

// AwardPoints фиксирует начисленные очки. Возвращает false, если очки
// по этому ответу уже были начислены ранее (повторное начисление запрещено).
func (a *QuizAnswer) AwardPoints(points int) bool {
	if a.PointsAwarded != 0 {
		return false
	}
	a.PointsAwarded = points
	return true
}

// Revise заменяет выбранный вариант до раскрытия ответа
func (a *QuizAnswer) Revise(selectedOption int, isCorrect bool) {
	a.SelectedOption = selectedOption
	a.IsCorrect = isCorrect
}
