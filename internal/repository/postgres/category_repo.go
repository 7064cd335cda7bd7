package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuizCategoryRepo реализует repository.QuizCategoryRepository
type QuizCategoryRepo struct {
	db *gorm.DB
}

// NewQuizCategoryRepo создает новый репозиторий категорий вопросов
func NewQuizCategoryRepo(db *gorm.DB) *QuizCategoryRepo {
	return &QuizCategoryRepo{db: db}
}

// Create создает новую категорию
func (r *QuizCategoryRepo) Create(category *entity.QuizCategory) error {
	return r.db.Create(category).Error
}

// GetByID возвращает категорию по ID
func (r *QuizCategoryRepo) GetByID(id uint) (*entity.QuizCategory, error) {
	var category entity.QuizCategory
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetByName возвращает категорию по имени
func (r *QuizCategoryRepo) GetByName(name string) (*entity.QuizCategory, error) {
	var category entity.QuizCategory
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAll возвращает все категории
func (r *QuizCategoryRepo) GetAll() ([]entity.QuizCategory, error) {
	var categories []entity.QuizCategory
	err := r.db.Order("name").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Delete удаляет категорию
func (r *QuizCategoryRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.QuizCategory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
