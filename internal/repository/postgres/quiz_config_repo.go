package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuizConfigRepo реализует repository.QuizConfigRepository
type QuizConfigRepo struct {
	db *gorm.DB
}

// NewQuizConfigRepo создает новый репозиторий конфигурации квиза
func NewQuizConfigRepo(db *gorm.DB) *QuizConfigRepo {
	return &QuizConfigRepo{db: db}
}

// Get возвращает единственную строку конфигурации (id=1)
func (r *QuizConfigRepo) Get() (*entity.QuizConfig, error) {
	var cfg entity.QuizConfig
	err := r.db.First(&cfg, entity.QuizConfigID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Save создает или обновляет строку конфигурации, принудительно с id=1
func (r *QuizConfigRepo) Save(cfg *entity.QuizConfig) error {
	cfg.ID = entity.QuizConfigID
	return r.db.Save(cfg).Error
}
