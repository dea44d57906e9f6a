package model

import "time"

// CourseReminder is the reminder text delivered on one course day
type CourseReminder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Day       int       `gorm:"not null;uniqueIndex" json:"day"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseFeedback is the feedback-request text delivered on one course day
type CourseFeedback struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Day       int       `gorm:"not null;uniqueIndex" json:"day"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
