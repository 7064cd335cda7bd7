package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// MockCategoryRepo реализует repository.QuizCategoryRepository.
// Мок банка вопросов переиспользуется из quiz_service_test.go.
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(category *entity.QuizCategory) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepo) GetByID(id uint) (*entity.QuizCategory, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizCategory), args.Error(1)
}

func (m *MockCategoryRepo) GetByName(name string) (*entity.QuizCategory, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizCategory), args.Error(1)
}

func (m *MockCategoryRepo) GetAll() ([]entity.QuizCategory, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizCategory), args.Error(1)
}

func (m *MockCategoryRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func newQuestionService(t *testing.T) (*QuestionService, *MockQuestionRepo, *MockCategoryRepo) {
	t.Helper()
	questionRepo := new(MockQuestionRepo)
	categoryRepo := new(MockCategoryRepo)
	return NewQuestionService(questionRepo, categoryRepo), questionRepo, categoryRepo
}

func validInput() QuestionInput {
	return QuestionInput{
		Category:    "История",
		Question:    "В каком году закончилась Вторая мировая война?",
		Options:     []string{"1943", "1944", "1945", "1946", "1947"},
		Answer:      3,
		Explanation: "Акт о капитуляции Японии подписан 2 сентября 1945 года",
		CreatedBy:   "111222333",
	}
}

func TestRegisterQuestion_Success(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	category := &entity.QuizCategory{ID: 3, Name: "История"}

	categoryRepo.On("GetByName", "История").Return(category, nil)
	questionRepo.On("ExistsByText", mock.Anything).Return(false, nil)
	questionRepo.On("Create", mock.MatchedBy(func(q *entity.QuizQuestion) bool {
		return q.CategoryID == 3 && q.Answer == 3 && len(q.Options) == 5
	})).Return(nil)

	question, err := svc.RegisterQuestion(validInput())

	require.NoError(t, err)
	require.NotNil(t, question)
	assert.Equal(t, "История", question.Category.Name)
}

func TestRegisterQuestion_InvalidAnswer(t *testing.T) {
	svc, _, _ := newQuestionService(t)

	input := validInput()
	input.Answer = 0
	_, err := svc.RegisterQuestion(input)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	input.Answer = 6
	_, err = svc.RegisterQuestion(input)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestRegisterQuestion_BadOptions(t *testing.T) {
	svc, _, _ := newQuestionService(t)

	input := validInput()
	input.Options = []string{"A", "B", "C"}
	_, err := svc.RegisterQuestion(input)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Вопрос должен иметь ровно 5 вариантов")

	input = validInput()
	input.Options[2] = "  "
	_, err = svc.RegisterQuestion(input)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Пустой вариант должен отклоняться")
}

func TestRegisterQuestion_UnknownCategory(t *testing.T) {
	svc, _, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByName", "История").Return(nil, apperrors.ErrNotFound)

	_, err := svc.RegisterQuestion(validInput())

	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRegisterQuestion_Duplicate(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByName", "История").Return(&entity.QuizCategory{ID: 3, Name: "История"}, nil)
	questionRepo.On("ExistsByText", mock.Anything).Return(true, nil)

	_, err := svc.RegisterQuestion(validInput())

	assert.ErrorIs(t, err, ErrDuplicateQuestion)
}

func TestRegisterQuestion_DuplicateRace(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByName", "История").Return(&entity.QuizCategory{ID: 3, Name: "История"}, nil)
	// Проверка существования прошла, но конкурентная регистрация успела первой
	questionRepo.On("ExistsByText", mock.Anything).Return(false, nil)
	questionRepo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.RegisterQuestion(validInput())

	assert.ErrorIs(t, err, ErrDuplicateQuestion, "Гонка по уникальному индексу должна отдаваться как дубликат")
}

func TestRegisterQuestions_PartialFailure(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByName", "История").Return(&entity.QuizCategory{ID: 3, Name: "История"}, nil)
	questionRepo.On("ExistsByText", mock.Anything).Return(false, nil)
	questionRepo.On("Create", mock.Anything).Return(nil)

	good := validInput()
	bad := validInput()
	bad.Answer = 9

	result := svc.RegisterQuestions([]QuestionInput{good, bad})

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index, "Ошибка должна указывать на второй элемент пакета")
}

func TestCreateCategory_Duplicate(t *testing.T) {
	svc, _, categoryRepo := newQuestionService(t)
	categoryRepo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.CreateCategory("История")

	assert.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestCreateCategory_EmptyName(t *testing.T) {
	svc, _, categoryRepo := newQuestionService(t)

	_, err := svc.CreateCategory("   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestDeleteCategory_InUse(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByID", uint(3)).Return(&entity.QuizCategory{ID: 3, Name: "История"}, nil)
	questionRepo.On("CountByCategory", uint(3)).Return(int64(12), nil)

	err := svc.DeleteCategory(3)

	var inUse *CategoryInUseError
	require.ErrorAs(t, err, &inUse, "Категория с вопросами должна блокировать удаление")
	assert.Equal(t, int64(12), inUse.QuestionCount)
	categoryRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestDeleteCategory_Empty(t *testing.T) {
	svc, questionRepo, categoryRepo := newQuestionService(t)
	categoryRepo.On("GetByID", uint(3)).Return(&entity.QuizCategory{ID: 3, Name: "История"}, nil)
	questionRepo.On("CountByCategory", uint(3)).Return(int64(0), nil)
	categoryRepo.On("Delete", uint(3)).Return(nil)

	err := svc.DeleteCategory(3)

	require.NoError(t, err)
	categoryRepo.AssertExpectations(t)
}
