package service

import (
	"errors"
	"fmt"
)

// Ошибки валидации и состояния квиза. Ожидаемые no-op исходы
// (кулдаун, дневной лимит, квиз уже опубликован) ошибками не являются —
// соответствующие методы возвращают nil-результат.
var (
	// ErrInvalidOption — номер варианта ответа вне диапазона [1, 5]
	ErrInvalidOption = errors.New("selected option must be between 1 and 5")

	// ErrInvalidAnswer — номер правильного ответа вопроса вне диапазона [1, 5]
	ErrInvalidAnswer = errors.New("answer must be between 1 and 5")

	// ErrNoQuizToday — на сегодня квиз ещё не опубликован
	ErrNoQuizToday = errors.New("no quiz has been published today")

	// ErrAnswerClosed — ответ уже раскрыт, окно приёма ответов закрыто
	ErrAnswerClosed = errors.New("answer window is closed")

	// ErrDuplicateQuestion — вопрос с таким текстом уже зарегистрирован
	ErrDuplicateQuestion = errors.New("question with the same text already exists")

	// ErrCategoryNotFound — указанная категория не зарегистрирована
	ErrCategoryNotFound = errors.New("quiz category not found")

	// ErrDuplicateCategory — категория с таким именем уже существует
	ErrDuplicateCategory = errors.New("quiz category already exists")
)

// CategoryInUseError возвращается при попытке удалить категорию,
// на которую ещё ссылаются вопросы. Несёт количество блокирующих вопросов,
// чтобы вызывающая сторона могла показать осмысленное сообщение.
type CategoryInUseError struct {
	CategoryID    uint
	Name          string
	QuestionCount int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q is still referenced by %d question(s)", e.Name, e.QuestionCount)
}
