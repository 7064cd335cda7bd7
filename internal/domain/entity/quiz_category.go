package entity

import (
	"time"
)

// QuizCategory — категория вопросов квиза.
// Категорию нельзя удалить, пока на неё ссылается хотя бы один вопрос.
type QuizCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizCategory) TableName() string {
	return "quiz_categories"
}
