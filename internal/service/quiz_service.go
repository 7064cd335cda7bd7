package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/domain/repository"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// Ключ и TTL кеша сегодняшнего квиза
const (
	todayQuizCacheKey = "quiz:today"
	todayQuizCacheTTL = 1 * time.Hour
)

// PointAwarder — начисление очков за участие в квизе.
// Реализуется PointService; выделен в интерфейс, чтобы расчет квиза
// не зависел от конкретного сервиса очков.
type PointAwarder interface {
	TryAccumulate(userID, activityType string) (*AccumulateResult, error)
}

// PublishResult — итог публикации дневного квиза.
// ChannelID нужен рендереру, чтобы знать, куда постить вопрос.
type PublishResult struct {
	Question  *entity.QuizQuestion       `json:"question"`
	History   *entity.QuizPublishHistory `json:"history"`
	ChannelID string                     `json:"channel_id"`
}

// RevealResult — итог раскрытия ответа и расчета очков
type RevealResult struct {
	Question          *entity.QuizQuestion       `json:"question"`
	History           *entity.QuizPublishHistory `json:"history"`
	ChannelID         string                     `json:"channel_id"`
	TotalParticipants int64                      `json:"total_participants"`
	TotalCorrect      int64                      `json:"total_correct"`
	CorrectRate       float64                    `json:"correct_rate"`
	SettledAnswers    int                        `json:"settled_answers"`
	SkippedAnswers    int                        `json:"skipped_answers"`
}

// SubmitResult — итог приёма ответа пользователя
type SubmitResult struct {
	IsNew     bool `json:"is_new"`
	IsCorrect bool `json:"is_correct"`
}

// todayQuiz — кешируемая пара "вопрос + запись публикации"
type todayQuiz struct {
	Question *entity.QuizQuestion       `json:"question"`
	History  *entity.QuizPublishHistory `json:"history"`
}

// QuizService управляет дневным циклом квиза:
// выбор вопроса → публикация → приём ответов → раскрытие → расчет очков.
// Состояние дня выводится из журнала публикаций: нет строки — Idle,
// строка с explanation_revealed=false — Published, с true — Revealed.
type QuizService struct {
	questionRepo repository.QuizQuestionRepository
	historyRepo  repository.QuizPublishHistoryRepository
	answerRepo   repository.QuizAnswerRepository
	configRepo   repository.QuizConfigRepository
	cacheRepo    repository.CacheRepository
	points       PointAwarder
	loc          *time.Location
}

// NewQuizService создает новый сервис дневного квиза
func NewQuizService(
	questionRepo repository.QuizQuestionRepository,
	historyRepo repository.QuizPublishHistoryRepository,
	answerRepo repository.QuizAnswerRepository,
	configRepo repository.QuizConfigRepository,
	cacheRepo repository.CacheRepository,
	points PointAwarder,
	loc *time.Location,
) *QuizService {
	if loc == nil {
		loc = time.UTC
	}
	return &QuizService{
		questionRepo: questionRepo,
		historyRepo:  historyRepo,
		answerRepo:   answerRepo,
		configRepo:   configRepo,
		cacheRepo:    cacheRepo,
		points:       points,
		loc:          loc,
	}
}

func (s *QuizService) today() string {
	return entity.DateKey(time.Now().In(s.loc))
}

// GetQuizConfig возвращает конфигурацию цикла квиза
func (s *QuizService) GetQuizConfig() (*entity.QuizConfig, error) {
	return s.configRepo.Get()
}

// SetQuizConfig валидирует и сохраняет конфигурацию цикла квиза
func (s *QuizService) SetQuizConfig(cfg *entity.QuizConfig) error {
	if _, err := time.Parse("15:04", cfg.QuizTime); err != nil {
		return fmt.Errorf("%w: quiz_time must be HH:MM", apperrors.ErrValidation)
	}
	if _, err := time.Parse("15:04", cfg.ExplanationTime); err != nil {
		return fmt.Errorf("%w: explanation_time must be HH:MM", apperrors.ErrValidation)
	}
	if cfg.Enabled && cfg.QuizChannelID == "" {
		return fmt.Errorf("%w: quiz_channel_id is required when quiz is enabled", apperrors.ErrValidation)
	}
	return s.configRepo.Save(cfg)
}

// PublishTodayQuiz выполняет переход Idle → Published.
// Возвращает (nil, nil) во всех ожидаемых no-op случаях: квиз не настроен
// или выключен, сегодня уже опубликован, банк вопросов пуст.
// Идемпотентность при гонке двух триггеров обеспечивается уникальным
// индексом по published_date.
func (s *QuizService) PublishTodayQuiz() (*PublishResult, error) {
	cfg, err := s.configRepo.Get()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Публикация пропущена: конфигурация квиза отсутствует")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load quiz config: %w", err)
	}
	if !cfg.ReadyToPublish() {
		log.Printf("[QuizService] Публикация пропущена: квиз выключен или канал не настроен")
		return nil, nil
	}

	today := s.today()

	if _, err := s.historyRepo.GetByDate(today); err == nil {
		log.Printf("[QuizService] Публикация пропущена: квиз за %s уже опубликован", today)
		return nil, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check publish history: %w", err)
	}

	unpublished, err := s.questionRepo.GetUnpublished()
	if err != nil {
		return nil, fmt.Errorf("failed to load unpublished questions: %w", err)
	}

	// Пул исчерпан: сбрасываем журнал публикаций и начинаем цикл заново
	if len(unpublished) == 0 {
		deleted, err := s.historyRepo.DeleteAll()
		if err != nil {
			return nil, fmt.Errorf("failed to reset publish history: %w", err)
		}
		log.Printf("[QuizService] Пул вопросов исчерпан, журнал публикаций сброшен (%d записей)", deleted)

		unpublished, err = s.questionRepo.GetUnpublished()
		if err != nil {
			return nil, fmt.Errorf("failed to reload questions after reset: %w", err)
		}
		if len(unpublished) == 0 {
			log.Printf("[QuizService] Публикация пропущена: банк вопросов пуст")
			return nil, nil
		}
	}

	question := &unpublished[rand.Intn(len(unpublished))]

	history := &entity.QuizPublishHistory{
		QuestionID:    question.ID,
		PublishedDate: today,
	}
	if err := s.historyRepo.Create(history); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Проигранная гонка с параллельным триггером — штатный no-op
			log.Printf("[QuizService] Публикация за %s выполнена конкурентным триггером", today)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create publish history: %w", err)
	}

	s.cacheToday(question, history)
	log.Printf("[QuizService] Опубликован вопрос #%d за %s", question.ID, today)

	return &PublishResult{
		Question:  question,
		History:   history,
		ChannelID: cfg.QuizChannelID,
	}, nil
}

// SetTodayMessageID записывает id сообщения, которым рендерер опубликовал
// вопрос (нужен для последующего редактирования поста при раскрытии)
func (s *QuizService) SetTodayMessageID(messageID string) error {
	history, err := s.historyRepo.GetByDate(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrNoQuizToday
		}
		return err
	}
	history.MessageID = messageID
	if err := s.historyRepo.Update(history); err != nil {
		return fmt.Errorf("failed to update message id: %w", err)
	}
	s.cacheRepo.Delete(todayQuizCacheKey)
	return nil
}

// SubmitAnswer принимает (или заменяет) ответ пользователя на сегодняшний вопрос.
// Окно приёма определяется только флагом раскрытия: досрочное раскрытие
// немедленно закрывает приём.
func (s *QuizService) SubmitAnswer(userID string, selectedOption int) (*SubmitResult, error) {
	if !entity.ValidOption(selectedOption) {
		return nil, ErrInvalidOption
	}

	history, err := s.historyRepo.GetByDate(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNoQuizToday
		}
		return nil, fmt.Errorf("failed to load publish history: %w", err)
	}
	if !history.AnswerWindowOpen() {
		return nil, ErrAnswerClosed
	}

	question, err := s.questionRepo.GetByID(history.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load published question: %w", err)
	}

	isCorrect := question.IsCorrect(selectedOption)

	answer, err := s.answerRepo.GetByQuestionAndUser(question.ID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load existing answer: %w", err)
		}

		answer = &entity.QuizAnswer{
			QuestionID:     question.ID,
			UserID:         userID,
			SelectedOption: selectedOption,
			IsCorrect:      isCorrect,
		}
		if err := s.answerRepo.Create(answer); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Два одновременных первых ответа одного пользователя:
				// перечитываем и обновляем существующую строку
				answer, err = s.answerRepo.GetByQuestionAndUser(question.ID, userID)
				if err != nil {
					return nil, fmt.Errorf("failed to reload answer after conflict: %w", err)
				}
				answer.Revise(selectedOption, isCorrect)
				if err := s.answerRepo.Save(answer); err != nil {
					return nil, fmt.Errorf("failed to update answer: %w", err)
				}
				return &SubmitResult{IsNew: false, IsCorrect: isCorrect}, nil
			}
			return nil, fmt.Errorf("failed to create answer: %w", err)
		}
		return &SubmitResult{IsNew: true, IsCorrect: isCorrect}, nil
	}

	answer.Revise(selectedOption, isCorrect)
	if err := s.answerRepo.Save(answer); err != nil {
		return nil, fmt.Errorf("failed to update answer: %w", err)
	}
	return &SubmitResult{IsNew: false, IsCorrect: isCorrect}, nil
}

// RevealExplanation выполняет переход Published → Revealed и рассчитывает очки.
// Сначала атомарно выставляется флаг раскрытия (это закрывает окно приёма
// ответов до чтения списка на расчет), затем каждому нерасчитанному ответу
// начисляются очки QUIZ_CORRECT либо QUIZ_PARTICIPATE. Отказ начисления
// по одному пользователю логируется и пропускается — расчет остальных
// продолжается. Повторный вызов за тот же день — no-op.
func (s *QuizService) RevealExplanation() (*RevealResult, error) {
	history, err := s.historyRepo.GetByDate(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Раскрытие пропущено: сегодня квиз не публиковался")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load publish history: %w", err)
	}
	if history.ExplanationRevealed {
		log.Printf("[QuizService] Раскрытие пропущено: ответ уже раскрыт")
		return nil, nil
	}

	claimed, err := s.historyRepo.MarkRevealed(history.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark quiz revealed: %w", err)
	}
	if !claimed {
		// Конкурентный триггер успел раньше
		log.Printf("[QuizService] Раскрытие пропущено: выполнено конкурентным триггером")
		return nil, nil
	}
	history.ExplanationRevealed = true

	question, err := s.questionRepo.GetByID(history.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load published question: %w", err)
	}

	answers, err := s.answerRepo.GetUnawarded(question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unawarded answers: %w", err)
	}

	settled, skipped := 0, 0
	for i := range answers {
		answer := &answers[i]

		activityType := entity.ActivityTypeQuizParticipate
		if answer.IsCorrect {
			activityType = entity.ActivityTypeQuizCorrect
		}

		res, err := s.points.TryAccumulate(answer.UserID, activityType)
		if err != nil {
			log.Printf("[QuizService] Ошибка начисления %s пользователю %s: %v", activityType, answer.UserID, err)
			skipped++
			continue
		}
		if res == nil {
			log.Printf("[QuizService] Начисление %s пользователю %s отклонено воротами", activityType, answer.UserID)
			skipped++
			continue
		}

		if !answer.AwardPoints(res.PointsAdded) {
			continue
		}
		if err := s.answerRepo.Save(answer); err != nil {
			log.Printf("[QuizService] Ошибка сохранения расчета ответа #%d: %v", answer.ID, err)
			skipped++
			continue
		}
		settled++
	}

	total, correct, err := s.answerRepo.CountByQuestion(question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	rate := 0.0
	if total > 0 {
		rate = float64(correct) / float64(total)
	}

	s.cacheRepo.Delete(todayQuizCacheKey)

	channelID := ""
	if cfg, err := s.configRepo.Get(); err == nil {
		channelID = cfg.QuizChannelID
	}

	log.Printf("[QuizService] Ответ раскрыт: участников %d, правильных %d, рассчитано %d, пропущено %d",
		total, correct, settled, skipped)

	return &RevealResult{
		Question:          question,
		History:           history,
		ChannelID:         channelID,
		TotalParticipants: total,
		TotalCorrect:      correct,
		CorrectRate:       rate,
		SettledAnswers:    settled,
		SkippedAnswers:    skipped,
	}, nil
}

// GetTodayQuiz возвращает сегодняшний вопрос и запись публикации.
// Результат кешируется; ErrNoQuizToday, если публикации сегодня не было.
func (s *QuizService) GetTodayQuiz() (*entity.QuizQuestion, *entity.QuizPublishHistory, error) {
	var cached todayQuiz
	if err := s.cacheRepo.GetJSON(todayQuizCacheKey, &cached); err == nil {
		if cached.History != nil && cached.History.PublishedDate == s.today() {
			return cached.Question, cached.History, nil
		}
	}

	history, err := s.historyRepo.GetByDate(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, ErrNoQuizToday
		}
		return nil, nil, fmt.Errorf("failed to load publish history: %w", err)
	}

	question, err := s.questionRepo.GetByID(history.QuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load published question: %w", err)
	}

	s.cacheToday(question, history)
	return question, history, nil
}

// GetAnswerStats возвращает распределение ответов на сегодняшний вопрос
// по вариантам вместе с итогами
func (s *QuizService) GetAnswerStats() (map[int]int64, int64, int64, error) {
	history, err := s.historyRepo.GetByDate(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, 0, ErrNoQuizToday
		}
		return nil, 0, 0, fmt.Errorf("failed to load publish history: %w", err)
	}

	counts, err := s.answerRepo.CountByOption(history.QuestionID)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count answers by option: %w", err)
	}
	total, correct, err := s.answerRepo.CountByQuestion(history.QuestionID)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return counts, total, correct, nil
}

func (s *QuizService) cacheToday(question *entity.QuizQuestion, history *entity.QuizPublishHistory) {
	if err := s.cacheRepo.SetJSON(todayQuizCacheKey, todayQuiz{Question: question, History: history}, todayQuizCacheTTL); err != nil {
		log.Printf("[QuizService] Ошибка записи кеша сегодняшнего квиза: %v", err)
	}
}
