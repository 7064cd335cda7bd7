package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yourusername/community-api/internal/service"
)

// Scheduler запускает дневной цикл квиза по расписанию из конфигурации:
// публикация вопроса в QuizTime и раскрытие ответа в ExplanationTime.
// После изменения конфигурации нужно вызвать Reload, чтобы перечитать времена.
type Scheduler struct {
	quizService *service.QuizService
	loc         *time.Location

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

// NewScheduler создает планировщик дневного цикла квиза
func NewScheduler(quizService *service.QuizService, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		quizService: quizService,
		loc:         loc,
	}
}

// Start читает конфигурацию и запускает задания.
// Отсутствующая или выключенная конфигурация не ошибка: планировщик
// остается пустым до первого Reload.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reschedule()
}

// Reload перечитывает конфигурацию и перестраивает задания.
// Вызывается после сохранения новой конфигурации квиза.
func (s *Scheduler) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reschedule()
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}

func (s *Scheduler) reschedule() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}

	cfg, err := s.quizService.GetQuizConfig()
	if err != nil {
		log.Printf("[Scheduler] Конфигурация квиза недоступна, задания не запланированы: %v", err)
		return nil
	}
	if !cfg.Enabled {
		log.Printf("[Scheduler] Квиз выключен, задания не запланированы")
		return nil
	}

	sched := gocron.NewScheduler(s.loc)

	if _, err := sched.Every(1).Day().At(cfg.QuizTime).Do(s.runPublish); err != nil {
		return fmt.Errorf("failed to schedule quiz publish: %w", err)
	}
	if _, err := sched.Every(1).Day().At(cfg.ExplanationTime).Do(s.runReveal); err != nil {
		return fmt.Errorf("failed to schedule quiz reveal: %w", err)
	}

	sched.StartAsync()
	s.scheduler = sched

	log.Printf("[Scheduler] Задания квиза запланированы: публикация %s, раскрытие %s (%s)",
		cfg.QuizTime, cfg.ExplanationTime, s.loc)
	return nil
}

func (s *Scheduler) runPublish() {
	if _, err := s.quizService.PublishTodayQuiz(); err != nil {
		log.Printf("[Scheduler] Ошибка публикации квиза: %v", err)
	}
}

func (s *Scheduler) runReveal() {
	if _, err := s.quizService.RevealExplanation(); err != nil {
		log.Printf("[Scheduler] Ошибка раскрытия ответа: %v", err)
	}
}
