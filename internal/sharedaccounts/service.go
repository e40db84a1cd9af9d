package sharedaccounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
)

// CreateInput describes a new shared platform credential.
type CreateInput struct {
	Platform         string
	Username         *string
	Email            *string
	Password         string
	Notes            *string
	URL              *string
	IconURL          *string
	LoginMethod      string
	AuthorizedEmails []string
}

// UpdateInput patches an existing credential.
type UpdateInput struct {
	AccountID        uuid.UUID
	Platform         *string
	Username         *string
	Email            *string
	Password         *string
	Notes            *string
	URL              *string
	IconURL          *string
	LoginMethod      *string
	AuthorizedEmails *[]string
	IsActive         *bool
}

// Service manages shared platform credentials. Non-admins only see accounts
// that list their email in authorized_emails.
type Service interface {
	Create(ctx context.Context, input CreateInput, actorRole enums.UserRole) (*models.SharedAccount, error)
	Update(ctx context.Context, input UpdateInput, actorRole enums.UserRole) (*models.SharedAccount, error)
	Delete(ctx context.Context, id uuid.UUID, actorRole enums.UserRole) error
	ListVisible(ctx context.Context, actorEmail string, actorRole enums.UserRole) ([]models.SharedAccount, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the shared accounts service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput, actorRole enums.UserRole) (*models.SharedAccount, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage shared accounts")
	}
	if strings.TrimSpace(input.Platform) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password required")
	}

	account := &models.SharedAccount{
		ID:               uuid.New(),
		Platform:         strings.TrimSpace(input.Platform),
		Username:         input.Username,
		Email:            input.Email,
		Password:         input.Password,
		Notes:            input.Notes,
		URL:              input.URL,
		IconURL:          input.IconURL,
		LoginMethod:      "password",
		AuthorizedEmails: normalizeEmails(input.AuthorizedEmails),
		IsActive:         true,
	}
	if input.LoginMethod != "" {
		account.LoginMethod = input.LoginMethod
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shared account")
	}
	return account, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput, actorRole enums.UserRole) (*models.SharedAccount, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage shared accounts")
	}
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	var account models.SharedAccount
	if err := s.db.WithContext(ctx).First(&account, "id = ?", input.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shared account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shared account")
	}

	updates := map[string]any{}
	if input.Platform != nil {
		account.Platform = *input.Platform
		updates["platform"] = *input.Platform
	}
	if input.Username != nil {
		account.Username = input.Username
		updates["username"] = *input.Username
	}
	if input.Email != nil {
		account.Email = input.Email
		updates["email"] = *input.Email
	}
	if input.Password != nil {
		account.Password = *input.Password
		updates["password"] = *input.Password
	}
	if input.Notes != nil {
		account.Notes = input.Notes
		updates["notes"] = *input.Notes
	}
	if input.URL != nil {
		account.URL = input.URL
		updates["url"] = *input.URL
	}
	if input.IconURL != nil {
		account.IconURL = input.IconURL
		updates["icon_url"] = *input.IconURL
	}
	if input.LoginMethod != nil {
		account.LoginMethod = *input.LoginMethod
		updates["login_method"] = *input.LoginMethod
	}
	if input.AuthorizedEmails != nil {
		account.AuthorizedEmails = normalizeEmails(*input.AuthorizedEmails)
		updates["authorized_emails"] = account.AuthorizedEmails
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return &account, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.SharedAccount{}).
		Where("id = ?", account.ID).
		Updates(updates).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shared account")
	}
	return &account, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actorRole enums.UserRole) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage shared accounts")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SharedAccount{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete shared account")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shared account not found")
	}
	return nil
}

// ListVisible returns all active accounts for admins and only the rows that
// authorize the actor's email for everyone else. The filter runs in Go
// rather than SQL so the visibility rule stays portable across drivers.
func (s *service) ListVisible(ctx context.Context, actorEmail string, actorRole enums.UserRole) ([]models.SharedAccount, error) {
	var rows []models.SharedAccount
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("platform ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shared accounts")
	}
	if actorRole == enums.UserRoleAdmin {
		return rows, nil
	}

	email := strings.ToLower(strings.TrimSpace(actorEmail))
	visible := rows[:0]
	for _, account := range rows {
		for _, authorized := range account.AuthorizedEmails {
			if strings.ToLower(authorized) == email {
				visible = append(visible, account)
				break
			}
		}
	}
	return visible, nil
}

func normalizeEmails(emails []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
