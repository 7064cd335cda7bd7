package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/handler/dto"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
	"github.com/yourusername/community-api/internal/service"
)

// ScheduleReloader перечитывает расписание после изменения конфигурации квиза
type ScheduleReloader interface {
	Reload() error
}

// QuizHandler обрабатывает запросы дневного цикла квиза и банка вопросов
type QuizHandler struct {
	quizService     *service.QuizService
	questionService *service.QuestionService
	reloader        ScheduleReloader
}

// NewQuizHandler создает новый обработчик квизов
func NewQuizHandler(
	quizService *service.QuizService,
	questionService *service.QuestionService,
	reloader ScheduleReloader,
) *QuizHandler {
	return &QuizHandler{
		quizService:     quizService,
		questionService: questionService,
		reloader:        reloader,
	}
}

// RegisterQuestionsRequest представляет запрос на регистрацию вопросов
type RegisterQuestionsRequest struct {
	Questions []struct {
		Category    string   `json:"category" binding:"required"`
		Question    string   `json:"question" binding:"required,min=3,max=500"`
		Options     []string `json:"options" binding:"required,len=5"`
		Answer      int      `json:"answer" binding:"required,min=1,max=5"`
		Explanation string   `json:"explanation" binding:"omitempty,max=1000"`
		CreatedBy   string   `json:"created_by" binding:"omitempty,max=32"`
	} `json:"questions" binding:"required,min=1"`
}

// RegisterQuestions регистрирует пакет вопросов (админ)
// POST /api/quiz/questions
func (h *QuizHandler) RegisterQuestions(c *gin.Context) {
	var req RegisterQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		inputs = append(inputs, service.QuestionInput{
			Category:    q.Category,
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			CreatedBy:   q.CreatedBy,
		})
	}

	result := h.questionService.RegisterQuestions(inputs)

	status := http.StatusCreated
	if result.Success == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// ListQuestions возвращает список вопросов с пагинацией и фильтром по категории
// GET /api/quiz/questions?category_id=1&page=1&page_size=20
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var categoryID *uint
	if idStr := c.Query("category_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		u := uint(id)
		categoryID = &u
	}

	questions, total, err := h.questionService.ListQuestions(categoryID, page, pageSize)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedQuestionResponse(questions, total, page, pageSize))
}

// GetQuestion возвращает вопрос по ID (админ, с ответом)
// GET /api/quiz/questions/:id
func (h *QuizHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint) // Получаем из контекста

	question, err := h.questionService.GetQuestion(questionID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true))
}

// DeleteQuestion удаляет вопрос из банка (админ)
// DELETE /api/quiz/questions/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.questionService.DeleteQuestion(questionID); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// CreateCategoryRequest представляет запрос на создание категории
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateCategory регистрирует новую категорию вопросов (админ)
// POST /api/quiz/categories
func (h *QuizHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.questionService.CreateCategory(req.Name)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// ListCategories возвращает все категории
// GET /api/quiz/categories
func (h *QuizHandler) ListCategories(c *gin.Context) {
	categories, err := h.questionService.ListCategories()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.NewListCategoryResponse(categories)})
}

// DeleteCategory удаляет категорию (админ)
// DELETE /api/quiz/categories/:id
func (h *QuizHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	if err := h.questionService.DeleteCategory(categoryID); err != nil {
		var inUse *service.CategoryInUseError
		if errors.As(err, &inUse) {
			c.JSON(http.StatusConflict, gin.H{
				"error":          inUse.Error(),
				"question_count": inUse.QuestionCount,
			})
			return
		}
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// GetQuizConfig возвращает конфигурацию дневного цикла квиза
// GET /api/quiz/config
func (h *QuizHandler) GetQuizConfig(c *gin.Context) {
	cfg, err := h.quizService.GetQuizConfig()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizConfigResponse(cfg))
}

// SetQuizConfigRequest представляет запрос на изменение конфигурации квиза
type SetQuizConfigRequest struct {
	QuizChannelID   string `json:"quiz_channel_id" binding:"omitempty,max=32"`
	QuizTime        string `json:"quiz_time" binding:"required"`
	ExplanationTime string `json:"explanation_time" binding:"required"`
	Enabled         bool   `json:"enabled"`
}

// SetQuizConfig сохраняет конфигурацию квиза и перечитывает расписание (админ)
// PUT /api/quiz/config
func (h *QuizHandler) SetQuizConfig(c *gin.Context) {
	var req SetQuizConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := &entity.QuizConfig{
		QuizChannelID:   req.QuizChannelID,
		QuizTime:        req.QuizTime,
		ExplanationTime: req.ExplanationTime,
		Enabled:         req.Enabled,
	}

	if err := h.quizService.SetQuizConfig(cfg); err != nil {
		h.handleQuizError(c, err)
		return
	}

	if h.reloader != nil {
		if err := h.reloader.Reload(); err != nil {
			// Конфигурация сохранена, но расписание подхватится только
			// после перезапуска. Сообщаем об этом клиенту заголовком.
			log.Printf("[QuizHandler] Ошибка перечитывания расписания: %v", err)
			c.Header("X-Schedule-Reload-Warning", err.Error())
		}
	}

	c.JSON(http.StatusOK, dto.NewQuizConfigResponse(cfg))
}

// GetTodayQuiz возвращает сегодняшний квиз
// GET /api/quiz/today
func (h *QuizHandler) GetTodayQuiz(c *gin.Context) {
	question, history, err := h.quizService.GetTodayQuiz()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTodayQuizResponse(question, history))
}

// PublishQuiz публикует сегодняшний квиз вручную (админ; обычно это делает планировщик)
// POST /api/quiz/publish
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	result, err := h.quizService.PublishTodayQuiz()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	if result == nil {
		c.JSON(http.StatusOK, gin.H{"published": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"published":  true,
		"channel_id": result.ChannelID,
		"quiz":       dto.NewTodayQuizResponse(result.Question, result.History),
	})
}

// RevealQuiz раскрывает ответ и рассчитывает очки вручную (админ)
// POST /api/quiz/reveal
func (h *QuizHandler) RevealQuiz(c *gin.Context) {
	result, err := h.quizService.RevealExplanation()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	if result == nil {
		c.JSON(http.StatusOK, gin.H{"revealed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revealed": true,
		"result":   dto.NewRevealResponse(result),
	})
}

// SetMessageIDRequest представляет запрос на привязку id сообщения публикации
type SetMessageIDRequest struct {
	MessageID string `json:"message_id" binding:"required,max=32"`
}

// SetTodayMessageID записывает id сообщения, которым gateway опубликовал вопрос
// PUT /api/quiz/today/message
func (h *QuizHandler) SetTodayMessageID(c *gin.Context) {
	var req SetMessageIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.SetTodayMessageID(req.MessageID); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message ID saved"})
}

// SubmitAnswerRequest представляет ответ пользователя на сегодняшний вопрос
type SubmitAnswerRequest struct {
	UserID         string `json:"user_id" binding:"required,max=32"`
	SelectedOption int    `json:"selected_option" binding:"required,min=1,max=5"`
}

// SubmitAnswer принимает ответ пользователя
// POST /api/quiz/answers
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.quizService.SubmitAnswer(req.UserID, req.SelectedOption)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	// Правильность ответа не возвращаем: она станет известна при раскрытии
	c.JSON(http.StatusOK, dto.SubmitAnswerResponse{Accepted: true, IsNew: result.IsNew})
}

// GetAnswerStats возвращает распределение ответов на сегодняшний вопрос
// GET /api/quiz/today/stats
func (h *QuizHandler) GetAnswerStats(c *gin.Context) {
	counts, total, correct, err := h.quizService.GetAnswerStats()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"by_option":     counts,
		"total":         total,
		"total_correct": correct,
	})
}

// handleQuizError обрабатывает ошибки сервисов квиза и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoQuizToday):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "no_quiz_today"})
	case errors.Is(err, service.ErrAnswerClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "answer_closed"})
	case errors.Is(err, service.ErrInvalidOption), errors.Is(err, service.ErrInvalidAnswer):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateQuestion), errors.Is(err, service.ErrDuplicateCategory):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
