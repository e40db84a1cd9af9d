package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
)

func setupSettingsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:settings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS system_settings (
  id TEXT PRIMARY KEY,
  company_name TEXT NOT NULL DEFAULT '',
  company_whatsapp TEXT NOT NULL DEFAULT '',
  login_logo_url TEXT,
  report_header TEXT,
  overdue_days INTEGER NOT NULL DEFAULT 3,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestGetSeedsDefaultRow(t *testing.T) {
	db := setupSettingsDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	setting, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.SystemSettingID, setting.ID)
	require.Equal(t, 3, setting.OverdueDays)

	var count int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// A second read reuses the seeded row.
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpdateSettings(t *testing.T) {
	db := setupSettingsDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	name := "IOD Academy"
	_, err = svc.Update(ctx, UpdateInput{CompanyName: &name}, enums.UserRoleStaff)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	days := 0
	_, err = svc.Update(ctx, UpdateInput{OverdueDays: &days}, enums.UserRoleAdmin)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	days = 7
	whatsapp := "+6281234567890"
	updated, err := svc.Update(ctx, UpdateInput{
		CompanyName:     &name,
		CompanyWhatsapp: &whatsapp,
		OverdueDays:     &days,
	}, enums.UserRoleAdmin)
	require.NoError(t, err)
	require.Equal(t, name, updated.CompanyName)
	require.Equal(t, 7, updated.OverdueDays)

	reloaded, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, whatsapp, reloaded.CompanyWhatsapp)
}
