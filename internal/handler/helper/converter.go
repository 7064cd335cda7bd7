package helper

import (
	"github.com/yourusername/community-api/internal/domain/entity"
)

// QuestionOption представляет вариант ответа для рендеринга в gateway
type QuestionOption struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ConvertOptionsToObjects преобразует массив строк в массив объектов с номером и текстом.
// Нумерация 1-based, как в поле answer вопроса и в ответах пользователей.
func ConvertOptionsToObjects(options entity.StringArray) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		// Дополнительная проверка на пустые строки
		if opt == "" {
			opt = "(пустой вариант)"
		}
		converted[i] = QuestionOption{Number: i + 1, Text: opt}
	}
	return converted
}
