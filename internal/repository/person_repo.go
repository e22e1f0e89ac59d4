package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// PersonRepository defines data operations for persons.
type PersonRepository interface {
	GetByID(ctx context.Context, id string) (models.Person, error)
	GetByUsername(ctx context.Context, username string) (models.Person, error)
	ListByDepartment(ctx context.Context, departmentID uint) ([]models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
}

type personRepository struct {
	db *gorm.DB
}

// NewPersonRepository instantiates the repository.
func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) GetByID(ctx context.Context, id string) (models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error; err != nil {
		return models.Person{}, err
	}

	return person, nil
}

func (r *personRepository) GetByUsername(ctx context.Context, username string) (models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&person).Error; err != nil {
		return models.Person{}, err
	}

	return person, nil
}

func (r *personRepository) ListByDepartment(ctx context.Context, departmentID uint) ([]models.Person, error) {
	var persons []models.Person
	if err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Find(&persons).Error; err != nil {
		return nil, err
	}

	return persons, nil
}

func (r *personRepository) Create(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *personRepository) Update(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Save(person).Error
}
