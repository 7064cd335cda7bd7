package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/domain/repository"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuestionInput — данные для регистрации одного вопроса
type QuestionInput struct {
	Category    string   `json:"category"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
	CreatedBy   string   `json:"created_by"`
}

// BulkItemError — ошибка регистрации одного элемента пакета
type BulkItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkRegisterResult — итог пакетной регистрации вопросов.
// Элементы обрабатываются независимо: одна плохая запись не роняет пакет.
type BulkRegisterResult struct {
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Errors  []BulkItemError `json:"errors,omitempty"`
}

// QuestionService предоставляет методы управления банком вопросов и категориями
type QuestionService struct {
	questionRepo repository.QuizQuestionRepository
	categoryRepo repository.QuizCategoryRepository
}

// NewQuestionService создает новый сервис банка вопросов
func NewQuestionService(
	questionRepo repository.QuizQuestionRepository,
	categoryRepo repository.QuizCategoryRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
	}
}

// RegisterQuestion валидирует и регистрирует один вопрос.
// Возвращает ErrInvalidAnswer, ErrCategoryNotFound или ErrDuplicateQuestion
// при соответствующих нарушениях.
func (s *QuestionService) RegisterQuestion(input QuestionInput) (*entity.QuizQuestion, error) {
	if !entity.ValidOption(input.Answer) {
		return nil, ErrInvalidAnswer
	}

	text := strings.TrimSpace(input.Question)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if len(input.Options) != entity.QuizOptionCount {
		return nil, fmt.Errorf("%w: exactly %d options are required", apperrors.ErrValidation, entity.QuizOptionCount)
	}
	for i, opt := range input.Options {
		if strings.TrimSpace(opt) == "" {
			return nil, fmt.Errorf("%w: option %d is empty", apperrors.ErrValidation, i+1)
		}
	}

	category, err := s.categoryRepo.GetByName(strings.TrimSpace(input.Category))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	exists, err := s.questionRepo.ExistsByText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to check question duplicate: %w", err)
	}
	if exists {
		return nil, ErrDuplicateQuestion
	}

	question := &entity.QuizQuestion{
		CategoryID:  category.ID,
		Question:    text,
		Options:     entity.StringArray(input.Options),
		Answer:      input.Answer,
		Explanation: strings.TrimSpace(input.Explanation),
		CreatedBy:   input.CreatedBy,
	}

	if err := s.questionRepo.Create(question); err != nil {
		// Гонка двух одинаковых регистраций: уникальный индекс по тексту
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateQuestion
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	question.Category = category
	return question, nil
}

// RegisterQuestions регистрирует пакет вопросов, обрабатывая каждый независимо
func (s *QuestionService) RegisterQuestions(inputs []QuestionInput) *BulkRegisterResult {
	result := &BulkRegisterResult{}
	for i, input := range inputs {
		if _, err := s.RegisterQuestion(input); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkItemError{Index: i, Error: err.Error()})
			continue
		}
		result.Success++
	}
	log.Printf("[QuestionService] Пакетная регистрация: успешно %d, с ошибками %d", result.Success, result.Failed)
	return result
}

// GetQuestion возвращает вопрос по ID
func (s *QuestionService) GetQuestion(id uint) (*entity.QuizQuestion, error) {
	return s.questionRepo.GetByID(id)
}

// ListQuestions возвращает страницу вопросов и общее количество
func (s *QuestionService) ListQuestions(categoryID *uint, page, pageSize int) ([]entity.QuizQuestion, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.questionRepo.List(categoryID, pageSize, (page-1)*pageSize)
}

// DeleteQuestion удаляет вопрос из банка
func (s *QuestionService) DeleteQuestion(id uint) error {
	return s.questionRepo.Delete(id)
}

// CreateCategory регистрирует новую категорию вопросов
func (s *QuestionService) CreateCategory(name string) (*entity.QuizCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}

	category := &entity.QuizCategory{Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// ListCategories возвращает все категории
func (s *QuestionService) ListCategories() ([]entity.QuizCategory, error) {
	return s.categoryRepo.GetAll()
}

// DeleteCategory удаляет категорию. Если на категорию ещё ссылаются вопросы,
// возвращает CategoryInUseError с количеством блокирующих вопросов.
func (s *QuestionService) DeleteCategory(id uint) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}

	count, err := s.questionRepo.CountByCategory(id)
	if err != nil {
		return fmt.Errorf("failed to count questions in category: %w", err)
	}
	if count > 0 {
		return &CategoryInUseError{CategoryID: id, Name: category.Name, QuestionCount: count}
	}

	return s.categoryRepo.Delete(id)
}
