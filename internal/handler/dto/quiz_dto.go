package dto

import (
	"time"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/handler/helper"
	"github.com/yourusername/community-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Поля answer и explanation заполняются только при includeAnswer=true:
// до раскрытия gateway не должен видеть правильный ответ.
type QuestionResponse struct {
	ID          uint                    `json:"id"`
	Category    string                  `json:"category,omitempty"`
	Question    string                  `json:"question"`
	Options     []helper.QuestionOption `json:"options"`
	Answer      int                     `json:"answer,omitempty"`
	Explanation string                  `json:"explanation,omitempty"`
	CreatedBy   string                  `json:"created_by,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// TodayQuizResponse представляет сегодняшний квиз: вопрос и состояние цикла
type TodayQuizResponse struct {
	Question      *QuestionResponse `json:"question"`
	PublishedDate string            `json:"published_date"`
	MessageID     string            `json:"message_id,omitempty"`
	Revealed      bool              `json:"revealed"`
}

// SubmitAnswerResponse представляет итог приёма ответа.
// Правильность ответа не раскрывается до вечернего раскрытия.
type SubmitAnswerResponse struct {
	Accepted bool `json:"accepted"`
	IsNew    bool `json:"is_new"`
}

// RevealResponse представляет итог раскрытия ответа для рендеринга
type RevealResponse struct {
	Question          *QuestionResponse `json:"question"`
	ChannelID         string            `json:"channel_id,omitempty"`
	MessageID         string            `json:"message_id,omitempty"`
	TotalParticipants int64             `json:"total_participants"`
	TotalCorrect      int64             `json:"total_correct"`
	CorrectRate       float64           `json:"correct_rate"`
	SettledAnswers    int               `json:"settled_answers"`
	SkippedAnswers    int               `json:"skipped_answers"`
}

// QuizConfigResponse представляет конфигурацию дневного цикла квиза
type QuizConfigResponse struct {
	QuizChannelID   string `json:"quiz_channel_id"`
	QuizTime        string `json:"quiz_time"`
	ExplanationTime string `json:"explanation_time"`
	Enabled         bool   `json:"enabled"`
}

// CategoryResponse представляет категорию вопросов
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PaginatedQuestionResponse представляет пагинированный список вопросов
type PaginatedQuestionResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.QuizQuestion, includeAnswer bool) *QuestionResponse {
	if q == nil {
		return nil
	}

	resp := &QuestionResponse{
		ID:        q.ID,
		Question:  q.Question,
		Options:   helper.ConvertOptionsToObjects(q.Options),
		CreatedBy: q.CreatedBy,
		CreatedAt: q.CreatedAt,
	}
	if q.Category != nil {
		resp.Category = q.Category.Name
	}
	if includeAnswer {
		resp.Answer = q.Answer
		resp.Explanation = q.Explanation
	}
	return resp
}

// NewTodayQuizResponse создает DTO сегодняшнего квиза.
// Ответ включается только после раскрытия.
func NewTodayQuizResponse(q *entity.QuizQuestion, h *entity.QuizPublishHistory) *TodayQuizResponse {
	return &TodayQuizResponse{
		Question:      NewQuestionResponse(q, h.ExplanationRevealed),
		PublishedDate: h.PublishedDate,
		MessageID:     h.MessageID,
		Revealed:      h.ExplanationRevealed,
	}
}

// NewRevealResponse создает DTO итога раскрытия
func NewRevealResponse(r *service.RevealResult) *RevealResponse {
	return &RevealResponse{
		Question:          NewQuestionResponse(r.Question, true),
		ChannelID:         r.ChannelID,
		MessageID:         r.History.MessageID,
		TotalParticipants: r.TotalParticipants,
		TotalCorrect:      r.TotalCorrect,
		CorrectRate:       r.CorrectRate,
		SettledAnswers:    r.SettledAnswers,
		SkippedAnswers:    r.SkippedAnswers,
	}
}

// NewQuizConfigResponse создает DTO конфигурации квиза
func NewQuizConfigResponse(cfg *entity.QuizConfig) *QuizConfigResponse {
	if cfg == nil {
		return nil
	}
	return &QuizConfigResponse{
		QuizChannelID:   cfg.QuizChannelID,
		QuizTime:        cfg.QuizTime,
		ExplanationTime: cfg.ExplanationTime,
		Enabled:         cfg.Enabled,
	}
}

// NewCategoryResponse создает DTO категории
func NewCategoryResponse(c *entity.QuizCategory) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Name: c.Name}
}

// NewListCategoryResponse создает слайс DTO для списка категорий
func NewListCategoryResponse(categories []entity.QuizCategory) []*CategoryResponse {
	list := make([]*CategoryResponse, len(categories))
	for i := range categories {
		list[i] = NewCategoryResponse(&categories[i])
	}
	return list
}

// NewPaginatedQuestionResponse создает DTO пагинированного списка вопросов.
// В списке банка вопросов ответы видны: этот маршрут доступен только админам.
func NewPaginatedQuestionResponse(questions []entity.QuizQuestion, total int64, page, perPage int) *PaginatedQuestionResponse {
	list := make([]*QuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewQuestionResponse(&questions[i], true)
	}
	return &PaginatedQuestionResponse{
		Questions: list,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}
