package settings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
)

// UpdateInput patches the singleton settings row.
type UpdateInput struct {
	CompanyName     *string
	CompanyWhatsapp *string
	LoginLogoURL    *string
	ReportHeader    *string
	OverdueDays     *int
}

// Service manages the single system_config row. Get creates the default row
// on first read, so callers never handle a missing-settings case.
type Service interface {
	Get(ctx context.Context) (*models.SystemSetting, error)
	Update(ctx context.Context, input UpdateInput, actorRole enums.UserRole) (*models.SystemSetting, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the settings service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db}, nil
}

func (s *service) Get(ctx context.Context) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	err := s.db.WithContext(ctx).First(&setting, "id = ?", models.SystemSettingID).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	setting = models.SystemSetting{
		ID:          models.SystemSettingID,
		OverdueDays: 3,
	}
	if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed settings")
	}
	return &setting, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput, actorRole enums.UserRole) (*models.SystemSetting, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change settings")
	}

	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CompanyName != nil {
		setting.CompanyName = *input.CompanyName
		updates["company_name"] = *input.CompanyName
	}
	if input.CompanyWhatsapp != nil {
		setting.CompanyWhatsapp = *input.CompanyWhatsapp
		updates["company_whatsapp"] = *input.CompanyWhatsapp
	}
	if input.LoginLogoURL != nil {
		setting.LoginLogoURL = input.LoginLogoURL
		updates["login_logo_url"] = *input.LoginLogoURL
	}
	if input.ReportHeader != nil {
		setting.ReportHeader = input.ReportHeader
		updates["report_header"] = *input.ReportHeader
	}
	if input.OverdueDays != nil {
		if *input.OverdueDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "overdue days must be positive")
		}
		setting.OverdueDays = *input.OverdueDays
		updates["overdue_days"] = *input.OverdueDays
	}
	if len(updates) == 0 {
		return setting, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.SystemSetting{}).
		Where("id = ?", models.SystemSettingID).
		Updates(updates).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settings")
	}
	return setting, nil
}
