package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/community-api/internal/domain/entity"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
)

// QuizQuestionRepo реализует repository.QuizQuestionRepository
type QuizQuestionRepo struct {
	db *gorm.DB
}

// NewQuizQuestionRepo создает новый репозиторий банка вопросов
func NewQuizQuestionRepo(db *gorm.DB) *QuizQuestionRepo {
	return &QuizQuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuizQuestionRepo) Create(question *entity.QuizQuestion) error {
	return r.db.Create(question).Error
}

// GetByID возвращает вопрос по ID (с категорией)
func (r *QuizQuestionRepo) GetByID(id uint) (*entity.QuizQuestion, error) {
	var question entity.QuizQuestion
	err := r.db.Preload("Category").First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// ExistsByText проверяет наличие вопроса с точно таким же текстом
func (r *QuizQuestionRepo) ExistsByText(text string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.QuizQuestion{}).Where("question = ?", text).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List возвращает страницу вопросов и общее количество
func (r *QuizQuestionRepo) List(categoryID *uint, limit, offset int) ([]entity.QuizQuestion, int64, error) {
	query := r.db.Model(&entity.QuizQuestion{})
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []entity.QuizQuestion
	err := query.Preload("Category").Order("id").Limit(limit).Offset(offset).Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Delete удаляет вопрос
func (r *QuizQuestionRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.QuizQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetUnpublished возвращает вопросы, ещё не встречавшиеся в журнале публикаций
func (r *QuizQuestionRepo) GetUnpublished() ([]entity.QuizQuestion, error) {
	var questions []entity.QuizQuestion
	err := r.db.
		Where("id NOT IN (?)", r.db.Model(&entity.QuizPublishHistory{}).Select("question_id")).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByCategory возвращает количество вопросов в категории
func (r *QuizQuestionRepo) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.QuizQuestion{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
