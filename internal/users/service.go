package users

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
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
	"github.com/iodacademy/lendstock-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages the user directory. Sign-ins are upserted by email so an
// invited user keeps their pre-assigned role when the provider account shows
// up for the first time.
type Service interface {
	SyncIdentity(ctx context.Context, input SyncIdentityInput) (*SyncIdentityResult, error)
	Invite(ctx context.Context, input InviteInput) (*models.User, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role enums.UserRole, actorRole enums.UserRole) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID, actorRole enums.UserRole) error
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo        *Repository
	tx          txRunner
	outbox      outboxPublisher
	adminEmails map[string]struct{}
}

// NewService builds the directory service. adminEmails are promoted to admin
// on every identity sync.
func NewService(repo *Repository, tx txRunner, publisher outboxPublisher, adminEmails []string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	allowList := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowList[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &service{repo: repo, tx: tx, outbox: publisher, adminEmails: allowList}, nil
}

func (s *service) SyncIdentity(ctx context.Context, input SyncIdentityInput) (*SyncIdentityResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.ProviderUID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider uid required")
	}

	result := &SyncIdentityResult{}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			updates := map[string]any{}
			if user.HasInvitePlaceholder() {
				user.GoogleUID = input.ProviderUID
				updates["google_uid"] = input.ProviderUID
			}
			if input.DisplayName != "" && input.DisplayName != user.DisplayName {
				user.DisplayName = input.DisplayName
				updates["display_name"] = input.DisplayName
			}
			if input.PhotoURL != nil {
				user.PhotoURL = input.PhotoURL
				updates["photo_url"] = *input.PhotoURL
			}
			if _, promoted := s.adminEmails[email]; promoted && user.Role != enums.UserRoleAdmin {
				user.Role = enums.UserRoleAdmin
				updates["role"] = enums.UserRoleAdmin
			}
			if len(updates) > 0 {
				if err := repo.Update(ctx, user.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
				}
			}
			result.User = user
		case errors.Is(err, gorm.ErrRecordNotFound):
			role := enums.UserRoleViewer
			if _, promoted := s.adminEmails[email]; promoted {
				role = enums.UserRoleAdmin
			}
			user = &models.User{
				ID:          uuid.New(),
				GoogleUID:   input.ProviderUID,
				Email:       email,
				DisplayName: input.DisplayName,
				PhotoURL:    input.PhotoURL,
				Role:        role,
				ThemePref:   "light",
			}
			if user.DisplayName == "" {
				user.DisplayName = email
			}
			if err := repo.Create(ctx, user); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
			}
			result.User = user
			result.FirstSeen = true
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserSynced,
			AggregateType: enums.AggregateUser,
			AggregateID:   result.User.ID,
			Version:       1,
			Data: payloads.UserSyncedEvent{
				UserID:    result.User.ID,
				Email:     result.User.Email,
				Role:      result.User.Role,
				FirstSeen: result.FirstSeen,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Invite pre-creates a directory entry with a placeholder provider uid. The
// placeholder is replaced on the user's first real sign-in.
func (s *service) Invite(ctx context.Context, input InviteInput) (*models.User, error) {
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may invite users")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleViewer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	user := &models.User{
		ID:          uuid.New(),
		GoogleUID:   "invite_" + uuid.NewString(),
		Email:       email,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		Role:        role,
		ThemePref:   "light",
	}
	if user.DisplayName == "" {
		user.DisplayName = email
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error) {
	user, err := s.load(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
		}
		user.DisplayName = trimmed
		updates["display_name"] = trimmed
	}
	if input.Phone != nil {
		user.Phone = input.Phone
		updates["phone"] = *input.Phone
	}
	if input.PhotoURL != nil {
		user.PhotoURL = input.PhotoURL
		updates["photo_url"] = *input.PhotoURL
	}
	if input.ThemePref != nil {
		user.ThemePref = *input.ThemePref
		updates["theme_pref"] = *input.ThemePref
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return user, nil
}

func (s *service) UpdateRole(ctx context.Context, userID uuid.UUID, role enums.UserRole, actorRole enums.UserRole) (*models.User, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change roles")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.repo.Update(ctx, user.ID, map[string]any{"role": role}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	user.Role = role
	return user, nil
}

// Delete removes a directory entry. Users with transaction history cannot be
// removed, so the audit trail stays attributable.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, actorRole enums.UserRole) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete users")
	}
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}

	count, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transactions")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "user has transaction history").
			WithDetails(map[string]any{"transaction_count": count})
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.load(ctx, userID)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
