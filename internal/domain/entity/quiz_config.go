package entity

import (
	"time"
)

// QuizConfigID — id единственной строки конфигурации квиза
const QuizConfigID uint = 1

// QuizConfig — синглтон-настройки дневного цикла квиза: канал публикации,
// время публикации и время раскрытия ответа (HH:MM в таймзоне сервиса)
type QuizConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	QuizChannelID   string    `gorm:"size:32;not null;default:''" json:"quiz_channel_id"`
	QuizTime        string    `gorm:"size:5;not null;default:'09:00'" json:"quiz_time"`
	ExplanationTime string    `gorm:"size:5;not null;default:'21:00'" json:"explanation_time"`
	Enabled         bool      `gorm:"not null;default:false" json:"enabled"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizConfig) TableName() string {
	return "quiz_configs"
}

// ReadyToPublish проверяет, что квиз включен и канал публикации настроен
func (c *QuizConfig) ReadyToPublish() bool {
	return c.Enabled && c.QuizChannelID != ""
}
