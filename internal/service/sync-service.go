package service

import (
	"context"
	"errors"
	"time"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/config"
	"github.com/coursecal/coursecal/internal/courseville"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/models"
)

// CoursesAPI is the slice of the LMS client the sync pass needs.
type CoursesAPI interface {
	GetUserCourses(ctx context.Context, token string) ([]courseville.Course, error)
	GetCourseInfo(ctx context.Context, token, cvCID string) (string, error)
	GetCourseAssignments(ctx context.Context, token, cvCID string) ([]courseville.Assignment, error)
}

type SyncService interface {
	// SyncAssignments mirrors upcoming assignment deadlines of the configured
	// term into the calendar and returns the matched course names.
	SyncAssignments(ctx context.Context, token, userID, displayName string) ([]string, error)
}

type syncService struct {
	lms      CoursesAPI
	eventSvc EventService
	term     config.SyncConfig
	logger   *logger.Logger
	now      func() time.Time
}

func NewSyncService(lms CoursesAPI, eventSvc EventService, term config.SyncConfig, logger *logger.Logger) SyncService {
	return &syncService{
		lms:      lms,
		eventSvc: eventSvc,
		term:     term,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncAssignments is wholly re-driven on every call; the conditional event
// insert is what makes repeated runs idempotent. A failure aborts the pass,
// the next invocation picks up whatever is still missing.
func (s *syncService) SyncAssignments(ctx context.Context, token, userID, displayName string) ([]string, error) {
	courses, err := s.lms.GetUserCourses(ctx, token)
	if err != nil {
		return nil, err
	}

	courseNames := make([]string, 0, len(courses))
	for _, course := range courses {
		if course.Year != s.term.Year || course.Semester != s.term.Semester {
			continue
		}

		cvCID := course.CvCID.String()
		courseName, err := s.lms.GetCourseInfo(ctx, token, cvCID)
		if err != nil {
			return nil, err
		}
		courseNames = append(courseNames, courseName)

		assignments, err := s.lms.GetCourseAssignments(ctx, token, cvCID)
		if err != nil {
			return nil, err
		}

		for _, assignment := range assignments {
			if err := s.materialize(ctx, userID, displayName, courseName, assignment); err != nil {
				return nil, err
			}
		}
	}

	return courseNames, nil
}

func (s *syncService) materialize(ctx context.Context, userID, displayName, courseName string, assignment courseville.Assignment) error {
	due := time.Unix(assignment.DueTime, 0)
	if !due.After(s.now()) {
		// expired deadlines never become events
		return nil
	}

	start := models.TimeOfDay{Hour: due.Hour(), Min: due.Minute()}
	end := models.EndOfDay()

	input := &CreateEventInput{
		UserID:   userID,
		EventID:  assignment.ItemID.String(),
		Name:     assignment.Title,
		Creator:  displayName,
		Detail:   "-",
		Category: courseName,
		Date:     due.Day(),
		Month:    int(due.Month()),
		Year:     due.Year(),
		Day:      due.Weekday().String(),
		Start:    &start,
		End:      &end,
		DateISO:  due.UTC().Format(time.RFC3339),
		Member:   []string{displayName},
	}

	if _, err := s.eventSvc.CreateEvent(ctx, input); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeAlreadyExists {
			return nil
		}
		return err
	}

	s.logger.Info("assignment mirrored as event",
		"event_id", assignment.ItemID.String(),
		"course", courseName,
	)
	return nil
}
