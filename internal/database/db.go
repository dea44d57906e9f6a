package database

import (
	"wabackend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM. Callers run
// Migrate explicitly so test setups can point it at another driver.
func NewConnection(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate runs auto-migration for every persisted entity
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Privilege{},
		&model.Module{},
		&model.PrivilegeRole{},
		&model.User{},
		&model.RefreshToken{},
		&model.EmailOtp{},
		&model.Device{},
		&model.CustomerService{},
		&model.Order{},
		&model.OrderMessage{},
		&model.Template{},
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.Transaction{},
		&model.CourseReminder{},
		&model.CourseFeedback{},
		&model.AuditLog{},
	)
}
