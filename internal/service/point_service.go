package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/domain/repository"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// Ключ и TTL кеша рейтинга
const (
	rankingCacheKey = "points:ranking"
	rankingCacheTTL = 1 * time.Minute
)

// AccumulateResult — результат успешного начисления очков
type AccumulateResult struct {
	ActivityType string `json:"activity_type"`
	PointsAdded  int    `json:"points_added"`
	NewPoints    int    `json:"new_points"`
}

// PointService предоставляет методы начисления и учета очков активности.
// Последовательность "проверка ворот → обновление баланса → журнал → история"
// сериализуется по ключу (пользователь, тип активности) и выполняется
// в одной транзакции БД.
type PointService struct {
	pointRepo   repository.ActivityPointRepository
	typeRepo    repository.ActivityTypeConfigRepository
	logRepo     repository.AccumulationLogRepository
	historyRepo repository.PointAwardHistoryRepository
	cacheRepo   repository.CacheRepository
	db          *gorm.DB
	loc         *time.Location
	locks       keyedMutex
}

// NewPointService создает новый сервис очков активности
func NewPointService(
	pointRepo repository.ActivityPointRepository,
	typeRepo repository.ActivityTypeConfigRepository,
	logRepo repository.AccumulationLogRepository,
	historyRepo repository.PointAwardHistoryRepository,
	cacheRepo repository.CacheRepository,
	db *gorm.DB,
	loc *time.Location,
) *PointService {
	if loc == nil {
		loc = time.UTC
	}
	return &PointService{
		pointRepo:   pointRepo,
		typeRepo:    typeRepo,
		logRepo:     logRepo,
		historyRepo: historyRepo,
		cacheRepo:   cacheRepo,
		db:          db,
		loc:         loc,
	}
}

// TryAccumulate пытается начислить очки за действие пользователя.
// Возвращает (nil, nil) для всех ожидаемых отказов: тип не настроен или
// выключен, не истек кулдаун, исчерпан дневной лимит. Это штатные исходы,
// вызывающая сторона не должна трактовать их как ошибку.
func (s *PointService) TryAccumulate(userID, activityType string) (*AccumulateResult, error) {
	cfg, err := s.typeRepo.GetByType(activityType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load activity type config: %w", err)
	}
	if !cfg.Enabled {
		return nil, nil
	}

	// Конкурентные триггеры по одной паре (пользователь, тип) не должны
	// одновременно пройти проверку кулдауна до записи lastAccumulatedAt
	unlock := s.locks.Lock(userID + ":" + activityType)
	defer unlock()

	now := time.Now().In(s.loc)
	today := entity.DateKey(now)

	logRec, err := s.logRepo.Get(userID, activityType)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load accumulation log: %w", err)
		}
		// Журнал создается лениво при первой попытке начисления
		logRec = &entity.PointAccumulationLog{UserID: userID, ActivityType: activityType}
	}

	if logRec.CooldownActive(cfg.Cooldown(), now) {
		return nil, nil
	}
	if logRec.DailyCapReached(cfg.DailyCap, today) {
		return nil, nil
	}

	point, err := s.pointRepo.GetByUserID(userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load activity point: %w", err)
		}
		point = &entity.ActivityPoint{UserID: userID}
	}

	added := point.Apply(cfg.Points, now)
	logRec.Advance(now, today)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.pointRepo.Upsert(tx, point); err != nil {
			return err
		}
		if err := s.logRepo.Upsert(tx, logRec); err != nil {
			return err
		}
		return s.historyRepo.Insert(tx, &entity.PointAwardHistory{
			UserID:       userID,
			ActivityType: activityType,
			Points:       added,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist point accumulation: %w", err)
	}

	s.invalidateRanking()

	return &AccumulateResult{
		ActivityType: activityType,
		PointsAdded:  added,
		NewPoints:    point.Points,
	}, nil
}

// AdjustPoints изменяет баланс пользователя на delta в обход ворот (админ).
// Итоговый баланс не опускается ниже нуля.
func (s *PointService) AdjustPoints(userID string, delta int) (*entity.ActivityPoint, error) {
	point, err := s.pointRepo.GetByUserID(userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load activity point: %w", err)
		}
		point = &entity.ActivityPoint{UserID: userID}
	}

	point.Apply(delta, time.Now().In(s.loc))

	if err := s.pointRepo.Upsert(nil, point); err != nil {
		return nil, fmt.Errorf("failed to save activity point: %w", err)
	}
	s.invalidateRanking()
	return point, nil
}

// SetPoints выставляет баланс пользователя напрямую (админ)
func (s *PointService) SetPoints(userID string, value int) (*entity.ActivityPoint, error) {
	point, err := s.pointRepo.GetByUserID(userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load activity point: %w", err)
		}
		point = &entity.ActivityPoint{UserID: userID}
	}

	point.SetBalance(value)

	if err := s.pointRepo.Upsert(nil, point); err != nil {
		return nil, fmt.Errorf("failed to save activity point: %w", err)
	}
	s.invalidateRanking()
	return point, nil
}

// ResetUserPoints обнуляет баланс пользователя вместе с журналами rate-limit
// и историей начислений: после сброса не должны пережить ни кулдауны,
// ни дневные счётчики
func (s *PointService) ResetUserPoints(userID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.pointRepo.ResetUser(tx, userID); err != nil {
			return err
		}
		if err := s.logRepo.ResetUser(tx, userID); err != nil {
			return err
		}
		return s.historyRepo.ResetUser(tx, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to reset user points: %w", err)
	}
	s.invalidateRanking()
	log.Printf("[PointService] Очки пользователя %s сброшены", userID)
	return nil
}

// ResetAllPoints обнуляет все балансы, журналы и историю начислений
func (s *PointService) ResetAllPoints() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.pointRepo.ResetAll(tx); err != nil {
			return err
		}
		if err := s.logRepo.ResetAll(tx); err != nil {
			return err
		}
		return s.historyRepo.ResetAll(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to reset all points: %w", err)
	}
	s.invalidateRanking()
	log.Printf("[PointService] Все очки сброшены")
	return nil
}

// GetUserPoints возвращает баланс пользователя.
// Для пользователя без начислений возвращается нулевой баланс.
func (s *PointService) GetUserPoints(userID string) (*entity.ActivityPoint, error) {
	point, err := s.pointRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &entity.ActivityPoint{UserID: userID}, nil
		}
		return nil, err
	}
	return point, nil
}

// GetRanking возвращает первые limit строк рейтинга по очкам.
// Полный отсортированный список кешируется на rankingCacheTTL.
func (s *PointService) GetRanking(limit int) ([]entity.ActivityPoint, error) {
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	var points []entity.ActivityPoint
	if err := s.cacheRepo.GetJSON(rankingCacheKey, &points); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[PointService] Ошибка чтения кеша рейтинга: %v", err)
		}
		points, err = s.pointRepo.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load ranking: %w", err)
		}
		if err := s.cacheRepo.SetJSON(rankingCacheKey, points, rankingCacheTTL); err != nil {
			log.Printf("[PointService] Ошибка записи кеша рейтинга: %v", err)
		}
	}

	if len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}

// GetPointHistory возвращает суммы начислений пользователя по типам активности.
// Нулевые границы периода означают "без ограничения".
func (s *PointService) GetPointHistory(userID string, from, to *time.Time) ([]repository.ActivityTypeTotal, error) {
	return s.historyRepo.AggregateByType(userID, from, to)
}

// GetActivityTypeConfigs возвращает все типы активности
func (s *PointService) GetActivityTypeConfigs() ([]entity.ActivityTypeConfig, error) {
	return s.typeRepo.GetAll()
}

// SetActivityTypeConfig создает или обновляет конфигурацию типа активности
func (s *PointService) SetActivityTypeConfig(cfg *entity.ActivityTypeConfig) error {
	if cfg.ActivityType == "" {
		return fmt.Errorf("%w: activity type is required", apperrors.ErrValidation)
	}
	if cfg.CooldownMinutes < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", apperrors.ErrValidation)
	}
	if cfg.DailyCap != nil && *cfg.DailyCap < 1 {
		return fmt.Errorf("%w: daily cap must be positive when set", apperrors.ErrValidation)
	}
	return s.typeRepo.Save(cfg)
}

// SeedDefaultConfigs заполняет реестр типов активности стартовыми значениями.
// Уже настроенные типы не трогаются.
func (s *PointService) SeedDefaultConfigs() error {
	for _, cfg := range entity.DefaultActivityTypeConfigs() {
		c := cfg
		created, err := s.typeRepo.CreateIfMissing(&c)
		if err != nil {
			return fmt.Errorf("failed to seed activity type %s: %w", cfg.ActivityType, err)
		}
		if created {
			log.Printf("[PointService] Зарегистрирован тип активности %s (%d очков)", cfg.ActivityType, cfg.Points)
		}
	}
	return nil
}

func (s *PointService) invalidateRanking() {
	if err := s.cacheRepo.Delete(rankingCacheKey); err != nil {
		log.Printf("[PointService] Ошибка инвалидации кеша рейтинга: %v", err)
	}
}
