package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
)

// Service manages the category lookup table.
type Service interface {
	Create(ctx context.Context, name string, actorRole enums.UserRole) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID, actorRole enums.UserRole) error
	List(ctx context.Context) ([]models.Category, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the category service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db}, nil
}

func (s *service) Create(ctx context.Context, name string, actorRole enums.UserRole) (*models.Category, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage categories")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	var existing models.Category
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actorRole enums.UserRole) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage categories")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete category")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}
