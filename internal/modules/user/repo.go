package user

import (
	"context"
	"errors"

	"github.com/althea-labs/ident/internal/models"
	"gorm.io/gorm"
)

// Repository abstracts account persistence so services and handlers
// can run against an in-memory store in tests. A missing record is
// (nil, nil), not an error.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.UserModel, error)
	FindByEmail(ctx context.Context, email string) (*models.UserModel, error)
	Create(ctx context.Context, u *models.UserModel) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type gormRepository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) FindByID(ctx context.Context, id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*models.UserModel, error) {
	var u models.UserModel
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) Create(ctx context.Context, u *models.UserModel) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).Updates(fields).Error
}
