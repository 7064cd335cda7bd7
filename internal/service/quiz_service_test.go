package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// ============================================================================
// Моки для QuizService
// ============================================================================

// MockQuestionRepo реализует repository.QuizQuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.QuizQuestion) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.QuizQuestion, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepo) ExistsByText(text string) (bool, error) {
	args := m.Called(text)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuestionRepo) List(categoryID *uint, limit, offset int) ([]entity.QuizQuestion, int64, error) {
	args := m.Called(categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.QuizQuestion), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetUnpublished() ([]entity.QuizQuestion, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepo) CountByCategory(categoryID uint) (int64, error) {
	args := m.Called(categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublishHistoryRepo реализует repository.QuizPublishHistoryRepository
type MockPublishHistoryRepo struct {
	mock.Mock
}

func (m *MockPublishHistoryRepo) Create(history *entity.QuizPublishHistory) error {
	args := m.Called(history)
	return args.Error(0)
}

func (m *MockPublishHistoryRepo) GetByDate(date string) (*entity.QuizPublishHistory, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizPublishHistory), args.Error(1)
}

func (m *MockPublishHistoryRepo) Update(history *entity.QuizPublishHistory) error {
	args := m.Called(history)
	return args.Error(0)
}

func (m *MockPublishHistoryRepo) MarkRevealed(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPublishHistoryRepo) DeleteAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockAnswerRepo реализует repository.QuizAnswerRepository
type MockAnswerRepo struct {
	mock.Mock
}

func (m *MockAnswerRepo) Create(answer *entity.QuizAnswer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockAnswerRepo) GetByQuestionAndUser(questionID uint, userID string) (*entity.QuizAnswer, error) {
	args := m.Called(questionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAnswer), args.Error(1)
}

func (m *MockAnswerRepo) Save(answer *entity.QuizAnswer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockAnswerRepo) GetUnawarded(questionID uint) ([]entity.QuizAnswer, error) {
	args := m.Called(questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAnswer), args.Error(1)
}

func (m *MockAnswerRepo) CountByQuestion(questionID uint) (int64, int64, error) {
	args := m.Called(questionID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockAnswerRepo) CountByOption(questionID uint) (map[int]int64, error) {
	args := m.Called(questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int64), args.Error(1)
}

// MockQuizConfigRepo реализует repository.QuizConfigRepository
type MockQuizConfigRepo struct {
	mock.Mock
}

func (m *MockQuizConfigRepo) Get() (*entity.QuizConfig, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizConfig), args.Error(1)
}

func (m *MockQuizConfigRepo) Save(cfg *entity.QuizConfig) error {
	args := m.Called(cfg)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

// MockPointAwarder реализует PointAwarder
type MockPointAwarder struct {
	mock.Mock
}

func (m *MockPointAwarder) TryAccumulate(userID, activityType string) (*AccumulateResult, error) {
	args := m.Called(userID, activityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccumulateResult), args.Error(1)
}

// ============================================================================
// Хелперы
// ============================================================================

type quizServiceMocks struct {
	questionRepo *MockQuestionRepo
	historyRepo  *MockPublishHistoryRepo
	answerRepo   *MockAnswerRepo
	configRepo   *MockQuizConfigRepo
	cacheRepo    *MockCacheRepo
	points       *MockPointAwarder
}

func newQuizService(t *testing.T) (*QuizService, *quizServiceMocks) {
	t.Helper()
	mocks := &quizServiceMocks{
		questionRepo: new(MockQuestionRepo),
		historyRepo:  new(MockPublishHistoryRepo),
		answerRepo:   new(MockAnswerRepo),
		configRepo:   new(MockQuizConfigRepo),
		cacheRepo:    new(MockCacheRepo),
		points:       new(MockPointAwarder),
	}
	svc := NewQuizService(
		mocks.questionRepo,
		mocks.historyRepo,
		mocks.answerRepo,
		mocks.configRepo,
		mocks.cacheRepo,
		mocks.points,
		time.UTC,
	)
	return svc, mocks
}

func today() string {
	return entity.DateKey(time.Now().UTC())
}

func enabledConfig() *entity.QuizConfig {
	return &entity.QuizConfig{
		ID:              entity.QuizConfigID,
		QuizChannelID:   "123456789",
		QuizTime:        "09:00",
		ExplanationTime: "21:00",
		Enabled:         true,
	}
}

// ============================================================================
// PublishTodayQuiz
// ============================================================================

func TestPublishTodayQuiz_DisabledConfig_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.configRepo.On("Get").Return(&entity.QuizConfig{Enabled: false}, nil)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err, "Выключенный квиз — штатный no-op, не ошибка")
	assert.Nil(t, result)
	mocks.historyRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestPublishTodayQuiz_MissingConfig_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.configRepo.On("Get").Return(nil, apperrors.ErrNotFound)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPublishTodayQuiz_AlreadyPublished_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.configRepo.On("Get").Return(enabledConfig(), nil)
	mocks.historyRepo.On("GetByDate", today()).
		Return(&entity.QuizPublishHistory{ID: 1, QuestionID: 7, PublishedDate: today()}, nil)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err, "Повторная публикация за день — штатный no-op")
	assert.Nil(t, result)
	mocks.questionRepo.AssertNotCalled(t, "GetUnpublished")
}

func TestPublishTodayQuiz_Success(t *testing.T) {
	svc, mocks := newQuizService(t)
	questions := []entity.QuizQuestion{
		{ID: 5, Question: "Вопрос A", Options: entity.StringArray{"1", "2", "3", "4", "5"}, Answer: 1},
	}

	mocks.configRepo.On("Get").Return(enabledConfig(), nil)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)
	mocks.questionRepo.On("GetUnpublished").Return(questions, nil)
	mocks.historyRepo.On("Create", mock.AnythingOfType("*entity.QuizPublishHistory")).Return(nil)
	mocks.cacheRepo.On("SetJSON", "quiz:today", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(5), result.Question.ID)
	assert.Equal(t, uint(5), result.History.QuestionID)
	assert.Equal(t, today(), result.History.PublishedDate)
	assert.Equal(t, "123456789", result.ChannelID)
	mocks.historyRepo.AssertExpectations(t)
}

func TestPublishTodayQuiz_PoolExhausted_ResetsAndRepublishes(t *testing.T) {
	svc, mocks := newQuizService(t)
	questions := []entity.QuizQuestion{{ID: 9, Question: "Снова в пуле", Answer: 2}}

	mocks.configRepo.On("Get").Return(enabledConfig(), nil)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)
	// Первый вызов — пул пуст, после сброса журнала вопросы снова доступны
	mocks.questionRepo.On("GetUnpublished").Return([]entity.QuizQuestion{}, nil).Once()
	mocks.historyRepo.On("DeleteAll").Return(int64(30), nil)
	mocks.questionRepo.On("GetUnpublished").Return(questions, nil).Once()
	mocks.historyRepo.On("Create", mock.AnythingOfType("*entity.QuizPublishHistory")).Return(nil)
	mocks.cacheRepo.On("SetJSON", "quiz:today", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(9), result.Question.ID)
	mocks.historyRepo.AssertCalled(t, "DeleteAll")
}

func TestPublishTodayQuiz_EmptyBank_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)

	mocks.configRepo.On("Get").Return(enabledConfig(), nil)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)
	// Пусто и до, и после сброса журнала: в банке вообще нет вопросов
	mocks.questionRepo.On("GetUnpublished").Return([]entity.QuizQuestion{}, nil)
	mocks.historyRepo.On("DeleteAll").Return(int64(0), nil)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err, "Пустой банк вопросов — штатный no-op")
	assert.Nil(t, result)
}

func TestPublishTodayQuiz_ConcurrentDuplicate_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	questions := []entity.QuizQuestion{{ID: 5, Question: "Вопрос A", Answer: 1}}

	mocks.configRepo.On("Get").Return(enabledConfig(), nil)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)
	mocks.questionRepo.On("GetUnpublished").Return(questions, nil)
	// Конкурентный триггер успел вставить строку за сегодня первым
	mocks.historyRepo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)

	result, err := svc.PublishTodayQuiz()

	require.NoError(t, err, "Проигранная гонка публикации — штатный no-op")
	assert.Nil(t, result)
}

// ============================================================================
// SubmitAnswer
// ============================================================================

func TestSubmitAnswer_InvalidOption(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.SubmitAnswer("111", 0)
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = svc.SubmitAnswer("111", 6)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestSubmitAnswer_NoQuizToday(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)

	_, err := svc.SubmitAnswer("111", 2)

	assert.ErrorIs(t, err, ErrNoQuizToday)
}

func TestSubmitAnswer_WindowClosed(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.historyRepo.On("GetByDate", today()).Return(&entity.QuizPublishHistory{
		ID: 1, QuestionID: 5, PublishedDate: today(), ExplanationRevealed: true,
	}, nil)

	_, err := svc.SubmitAnswer("111", 2)

	assert.ErrorIs(t, err, ErrAnswerClosed, "После раскрытия ответы не принимаются")
}

func TestSubmitAnswer_FirstAnswer(t *testing.T) {
	svc, mocks := newQuizService(t)
	question := &entity.QuizQuestion{ID: 5, Answer: 2}

	mocks.historyRepo.On("GetByDate", today()).
		Return(&entity.QuizPublishHistory{ID: 1, QuestionID: 5, PublishedDate: today()}, nil)
	mocks.questionRepo.On("GetByID", uint(5)).Return(question, nil)
	mocks.answerRepo.On("GetByQuestionAndUser", uint(5), "111").Return(nil, apperrors.ErrNotFound)
	mocks.answerRepo.On("Create", mock.MatchedBy(func(a *entity.QuizAnswer) bool {
		return a.QuestionID == 5 && a.UserID == "111" && a.SelectedOption == 2 && a.IsCorrect
	})).Return(nil)

	result, err := svc.SubmitAnswer("111", 2)

	require.NoError(t, err)
	assert.True(t, result.IsNew)
	assert.True(t, result.IsCorrect)
}

func TestSubmitAnswer_ReviseExisting(t *testing.T) {
	svc, mocks := newQuizService(t)
	question := &entity.QuizQuestion{ID: 5, Answer: 2}
	existing := &entity.QuizAnswer{ID: 10, QuestionID: 5, UserID: "111", SelectedOption: 2, IsCorrect: true}

	mocks.historyRepo.On("GetByDate", today()).
		Return(&entity.QuizPublishHistory{ID: 1, QuestionID: 5, PublishedDate: today()}, nil)
	mocks.questionRepo.On("GetByID", uint(5)).Return(question, nil)
	mocks.answerRepo.On("GetByQuestionAndUser", uint(5), "111").Return(existing, nil)
	mocks.answerRepo.On("Save", existing).Return(nil)

	result, err := svc.SubmitAnswer("111", 3)

	require.NoError(t, err)
	assert.False(t, result.IsNew, "Замена ответа не считается новым ответом")
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 3, existing.SelectedOption, "Выбранный вариант должен замениться")
	assert.False(t, existing.IsCorrect)
}

// ============================================================================
// RevealExplanation
// ============================================================================

func TestRevealExplanation_NoQuizToday_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.historyRepo.On("GetByDate", today()).Return(nil, apperrors.ErrNotFound)

	result, err := svc.RevealExplanation()

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRevealExplanation_AlreadyRevealed_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.historyRepo.On("GetByDate", today()).Return(&entity.QuizPublishHistory{
		ID: 1, QuestionID: 5, PublishedDate: today(), ExplanationRevealed: true,
	}, nil)

	result, err := svc.RevealExplanation()

	require.NoError(t, err, "Повторное раскрытие — штатный no-op")
	assert.Nil(t, result)
	mocks.historyRepo.AssertNotCalled(t, "MarkRevealed", mock.Anything)
}

func TestRevealExplanation_LostClaimRace_NoOp(t *testing.T) {
	svc, mocks := newQuizService(t)
	mocks.historyRepo.On("GetByDate", today()).Return(&entity.QuizPublishHistory{
		ID: 1, QuestionID: 5, PublishedDate: today(),
	}, nil)
	// Конкурентный триггер выставил флаг первым
	mocks.historyRepo.On("MarkRevealed", uint(1)).Return(false, nil)

	result, err := svc.RevealExplanation()

	require.NoError(t, err)
	assert.Nil(t, result)
	mocks.answerRepo.AssertNotCalled(t, "GetUnawarded", mock.Anything)
}

func TestRevealExplanation_SettlesAnswersExactlyOnce(t *testing.T) {
	svc, mocks := newQuizService(t)
	question := &entity.QuizQuestion{ID: 5, Answer: 2, Explanation: "Потому что"}
	answers := []entity.QuizAnswer{
		{ID: 10, QuestionID: 5, UserID: "111", SelectedOption: 2, IsCorrect: true},
		{ID: 11, QuestionID: 5, UserID: "222", SelectedOption: 3, IsCorrect: false},
	}

	mocks.historyRepo.On("GetByDate", today()).Return(&entity.QuizPublishHistory{
		ID: 1, QuestionID: 5, PublishedDate: today(),
	}, nil)
	mocks.historyRepo.On("MarkRevealed", uint(1)).Return(true, nil)
	mocks.questionRepo.On("GetByID", uint(5)).Return(question, nil)
	mocks.answerRepo.On("GetUnawarded", uint(5)).Return(answers, nil)

	mocks.points.On("TryAccumulate", "111", entity.ActivityTypeQuizCorrect).
		Return(&AccumulateResult{ActivityType: entity.ActivityTypeQuizCorrect, PointsAdded: 100, NewPoints: 100}, nil)
	mocks.points.On("TryAccumulate", "222", entity.ActivityTypeQuizParticipate).
		Return(&AccumulateResult{ActivityType: entity.ActivityTypeQuizParticipate, PointsAdded: 30, NewPoints: 30}, nil)

	mocks.answerRepo.On("Save", mock.MatchedBy(func(a *entity.QuizAnswer) bool {
		return a.PointsAwarded > 0
	})).Return(nil)
	mocks.answerRepo.On("CountByQuestion", uint(5)).Return(int64(2), int64(1), nil)
	mocks.cacheRepo.On("Delete", "quiz:today").Return(nil)
	mocks.configRepo.On("Get").Return(enabledConfig(), nil)

	result, err := svc.RevealExplanation()

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.SettledAnswers)
	assert.Equal(t, 0, result.SkippedAnswers)
	assert.Equal(t, int64(2), result.TotalParticipants)
	assert.Equal(t, int64(1), result.TotalCorrect)
	assert.InDelta(t, 0.5, result.CorrectRate, 1e-9)
	mocks.points.AssertExpectations(t)
}

func TestRevealExplanation_PartialFailureContinues(t *testing.T) {
	svc, mocks := newQuizService(t)
	question := &entity.QuizQuestion{ID: 5, Answer: 2}
	answers := []entity.QuizAnswer{
		{ID: 10, QuestionID: 5, UserID: "111", SelectedOption: 2, IsCorrect: true},
		{ID: 11, QuestionID: 5, UserID: "222", SelectedOption: 3, IsCorrect: false},
	}

	mocks.historyRepo.On("GetByDate", today()).Return(&entity.QuizPublishHistory{
		ID: 1, QuestionID: 5, PublishedDate: today(),
	}, nil)
	mocks.historyRepo.On("MarkRevealed", uint(1)).Return(true, nil)
	mocks.questionRepo.On("GetByID", uint(5)).Return(question, nil)
	mocks.answerRepo.On("GetUnawarded", uint(5)).Return(answers, nil)

	// Первое начисление падает, второе проходит
	mocks.points.On("TryAccumulate", "111", entity.ActivityTypeQuizCorrect).
		Return(nil, errors.New("db connection lost"))
	mocks.points.On("TryAccumulate", "222", entity.ActivityTypeQuizParticipate).
		Return(&AccumulateResult{PointsAdded: 30, NewPoints: 30}, nil)

	mocks.answerRepo.On("Save", mock.Anything).Return(nil)
	mocks.answerRepo.On("CountByQuestion", uint(5)).Return(int64(2), int64(1), nil)
	mocks.cacheRepo.On("Delete", "quiz:today").Return(nil)
	mocks.configRepo.On("Get").Return(enabledConfig(), nil)

	result, err := svc.RevealExplanation()

	require.NoError(t, err, "Отказ по одному пользователю не должен ронять расчет")
	require.NotNil(t, result)
	assert.Equal(t, 1, result.SettledAnswers)
	assert.Equal(t, 1, result.SkippedAnswers)
}

// ============================================================================
// Конфигурация
// ============================================================================

func TestSetQuizConfig_Validation(t *testing.T) {
	svc, mocks := newQuizService(t)

	err := svc.SetQuizConfig(&entity.QuizConfig{QuizTime: "25:00", ExplanationTime: "21:00"})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Невалидное время публикации должно отклоняться")

	err = svc.SetQuizConfig(&entity.QuizConfig{QuizTime: "09:00", ExplanationTime: "9pm"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = svc.SetQuizConfig(&entity.QuizConfig{QuizTime: "09:00", ExplanationTime: "21:00", Enabled: true})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Включение без канала публикации должно отклоняться")

	mocks.configRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestSetQuizConfig_Valid(t *testing.T) {
	svc, mocks := newQuizService(t)
	cfg := &entity.QuizConfig{QuizChannelID: "123", QuizTime: "09:00", ExplanationTime: "21:00", Enabled: true}
	mocks.configRepo.On("Save", cfg).Return(nil)

	err := svc.SetQuizConfig(cfg)

	require.NoError(t, err)
	mocks.configRepo.AssertExpectations(t)
}
