package models

import "time"

// SystemSettingID is the fixed primary key of the singleton settings row.
const SystemSettingID = "system_config"

// SystemSetting is a single-row configuration record.
type SystemSetting struct {
	ID              string    `gorm:"column:id;type:text;primaryKey"`
	CompanyName     string    `gorm:"column:company_name;type:text;not null;default:''"`
	CompanyWhatsapp string    `gorm:"column:company_whatsapp;type:text;not null;default:''"`
	LoginLogoURL    *string   `gorm:"column:login_logo_url;type:text"`
	ReportHeader    *string   `gorm:"column:report_header;type:text"`
	OverdueDays     int       `gorm:"column:overdue_days;not null;default:3"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
