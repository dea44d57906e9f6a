package repository

import (
	"context"

	"wabackend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository interface {
	UpsertReminder(ctx context.Context, reminder *model.CourseReminder) error
	ListReminders(ctx context.Context) ([]model.CourseReminder, error)
	UpsertFeedback(ctx context.Context, feedback *model.CourseFeedback) error
	ListFeedbacks(ctx context.Context) ([]model.CourseFeedback, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) UpsertReminder(ctx context.Context, reminder *model.CourseReminder) error {
	db := GetDB(ctx, r.db)

	var existing model.CourseReminder
	if err := db.First(&existing, "day = ?", reminder.Day).Error; err != nil {
		return db.Create(reminder).Error
	}

	existing.Body = reminder.Body
	return db.Save(&existing).Error
}

func (r *courseRepository) ListReminders(ctx context.Context) ([]model.CourseReminder, error) {
	var reminders []model.CourseReminder
	if err := GetDB(ctx, r.db).Order("day asc").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *courseRepository) UpsertFeedback(ctx context.Context, feedback *model.CourseFeedback) error {
	db := GetDB(ctx, r.db)

	var existing model.CourseFeedback
	if err := db.First(&existing, "day = ?", feedback.Day).Error; err != nil {
		return db.Create(feedback).Error
	}

	existing.Body = feedback.Body
	return db.Save(&existing).Error
}

func (r *courseRepository) ListFeedbacks(ctx context.Context) ([]model.CourseFeedback, error) {
	var feedbacks []model.CourseFeedback
	if err := GetDB(ctx, r.db).Order("day asc").Find(&feedbacks).Error; err != nil {
		return nil, err
	}
	return feedbacks, nil
}
