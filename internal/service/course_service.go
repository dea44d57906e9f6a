package service

import (
	"context"
	"fmt"
	"log"

	"wabackend/internal/model"
	"wabackend/internal/repository"
)

// Seed texts, one row per course day. These are representative defaults; the
// upsert keeps manual edits to later rows intact across reseeds of earlier days.
var defaultReminders = []model.CourseReminder{
	{Day: 1, Body: "Welcome to day 1! Today we cover connecting your first device."},
	{Day: 2, Body: "Day 2: setting up message templates and auto replies."},
	{Day: 3, Body: "Day 3: creating your first customer service sub-account."},
	{Day: 5, Body: "Day 5: order messages — notify customers at every stage."},
	{Day: 7, Body: "Day 7: reading your order analytics dashboard."},
	{Day: 14, Body: "Two weeks in! Review broadcast campaigns and group messaging."},
}

var defaultFeedbacks = []model.CourseFeedback{
	{Day: 3, Body: "How was your first setup experience? Reply 1-5."},
	{Day: 7, Body: "One week done — what feature should we improve first?"},
	{Day: 14, Body: "Would you recommend the platform to a colleague? Reply YES or NO."},
}

// CourseService serves the onboarding course reference texts
type CourseService interface {
	SeedCourseContent(ctx context.Context) error
	ListReminders(ctx context.Context) ([]model.CourseReminder, error)
	ListFeedbacks(ctx context.Context) ([]model.CourseFeedback, error)
}

type courseService struct {
	repo repository.CourseRepository
}

// NewCourseService returns a new instance of CourseService
func NewCourseService(repo repository.CourseRepository) CourseService {
	return &courseService{repo: repo}
}

// SeedCourseContent upserts the reference texts. A failing row is logged and
// skipped so one bad record never blocks the rest of the seed run.
func (s *courseService) SeedCourseContent(ctx context.Context) error {
	var failed int

	for _, r := range defaultReminders {
		reminder := model.CourseReminder{Day: r.Day, Body: r.Body}
		if err := s.repo.UpsertReminder(ctx, &reminder); err != nil {
			log.Printf("failed to seed course reminder day %d: %v", r.Day, err)
			failed++
		}
	}

	for _, f := range defaultFeedbacks {
		feedback := model.CourseFeedback{Day: f.Day, Body: f.Body}
		if err := s.repo.UpsertFeedback(ctx, &feedback); err != nil {
			log.Printf("failed to seed course feedback day %d: %v", f.Day, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("course content seed finished with %d failed records", failed)
	}
	return nil
}

func (s *courseService) ListReminders(ctx context.Context) ([]model.CourseReminder, error) {
	return s.repo.ListReminders(ctx)
}

func (s *courseService) ListFeedbacks(ctx context.Context) ([]model.CourseFeedback, error) {
	return s.repo.ListFeedbacks(ctx)
}
