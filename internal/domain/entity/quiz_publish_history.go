package entity

import (
	"time"
)

// QuizPublishHistory хранит факт публикации вопроса за конкретный день.
// Это журнал проведения, а не справочник вопросов: уникальность по дате
// гарантирует не более одной публикации в сутки, а состояние дня
// (Idle → Published → Revealed) выводится из наличия строки и флага
// ExplanationRevealed.
type QuizPublishHistory struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	QuestionID          uint      `gorm:"not null;index" json:"question_id"`
	PublishedDate       string    `gorm:"size:10;not null;uniqueIndex" json:"published_date"`
	MessageID           string    `gorm:"size:32;not null;default:''" json:"message_id"`
	ExplanationRevealed bool      `gorm:"not null;default:false" json:"explanation_revealed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizPublishHistory) TableName() string {
	return "quiz_publish_histories"
}

// AnswerWindowOpen проверяет, открыто ли окно приёма ответов.
// Окно определяется только флагом раскрытия, не таймером: досрочное
// ручное раскрытие немедленно закрывает приём ответов.
func (h *QuizPublishHistory) AnswerWindowOpen() bool {
	return !h.ExplanationRevealed
}
