package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// QuizOptionCount — количество вариантов ответа у вопроса дневного квиза.
// Варианты нумеруются с 1 (ответ всегда в диапазоне [1, QuizOptionCount]).
const QuizOptionCount = 5

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		// sqlite (тесты) возвращает текстовые колонки как string
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// QuizQuestion представляет один вопрос банка дневного квиза
type QuizQuestion struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	Category    *QuizCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Question    string        `gorm:"size:500;not null;uniqueIndex" json:"question"`
	Options     StringArray   `gorm:"type:jsonb;not null" json:"options"`
	Answer      int           `gorm:"not null" json:"-"` // Скрыто от клиента до раскрытия
	Explanation string        `gorm:"size:1000;not null;default:''" json:"-"`
	CreatedBy   string        `gorm:"size:32;not null;default:''" json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *QuizQuestion) IsCorrect(selectedOption int) bool {
	return selectedOption == q.Answer
}

// ValidOption проверяет, что номер варианта лежит в допустимом диапазоне [1, 5]
func ValidOption(option int) bool {
	return option >= 1 && option <= QuizOptionCount
}
