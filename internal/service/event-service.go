package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/models"
	"github.com/coursecal/coursecal/internal/repository"
)

// Notifier publishes outbound notifications about calendar changes. Failures
// are logged by implementations and never abort the calling request.
type Notifier interface {
	EventCreated(ctx context.Context, event *models.Event)
	InvitationCreated(ctx context.Context, targetUserID string, invitation *models.Invitation)
}

// CreateEventInput carries the full field set of an event plus the optional
// member name list that drives invitations.
type CreateEventInput struct {
	UserID   string            `json:"userId"`
	EventID  string            `json:"eventId"`
	Name     string            `json:"name"`
	Creator  string            `json:"creator"`
	Detail   string            `json:"detail"`
	Category string            `json:"category"`
	Date     int               `json:"date"`
	Month    int               `json:"month"`
	Year     int               `json:"year"`
	Day      string            `json:"day"`
	Start    *models.TimeOfDay `json:"starttime"`
	End      *models.TimeOfDay `json:"endtime"`
	DateISO  string            `json:"dateISO"`
	Member   []string          `json:"member"`
}

// EventDetail is an event record enriched with its member display names.
type EventDetail struct {
	models.Event
	Member []string `json:"member"`
}

// InvitationDetail pairs a pending invitation with its resolved event.
type InvitationDetail struct {
	models.Invitation
	Event map[string]*EventDetail `json:"event"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input *CreateEventInput) (*models.Event, error)
	QueryEvent(ctx context.Context, eventID string) (map[string]*EventDetail, error)
	ListEventsForUser(ctx context.Context, userID string) (map[string][]*EventDetail, error)
	LeaveEvent(ctx context.Context, userID, eventID string) error
	Invite(ctx context.Context, targetUserID, inviterName, eventID string) (*models.Invitation, error)
	ListInvitations(ctx context.Context, userID string) ([]InvitationDetail, error)
	DeclineInvitation(ctx context.Context, invitationID, userID string) error
}

type eventService struct {
	eventRepo      repository.EventRepository
	membershipRepo repository.MembershipRepository
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	notifier       Notifier
	logger         *logger.Logger
}

func NewEventService(
	eventRepo repository.EventRepository,
	membershipRepo repository.MembershipRepository,
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	logger *logger.Logger,
) EventService {
	return &eventService{
		eventRepo:      eventRepo,
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// CreateEvent validates the full required-field set, stores the event, joins
// the creator as a member and invites every other listed member. Validation
// reports every missing field, not just the first.
func (s *eventService) CreateEvent(ctx context.Context, input *CreateEventInput) (*models.Event, error) {
	if missing := missingFields(input); len(missing) > 0 {
		return nil, apperrors.New(
			apperrors.CodeInvalidInput,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		)
	}

	eventID := input.EventID
	if eventID == "" {
		eventID = uuid.New().String()
	}

	event := &models.Event{
		EventID:  eventID,
		Name:     input.Name,
		Creator:  input.Creator,
		Detail:   input.Detail,
		Category: input.Category,
		Date:     input.Date,
		Month:    input.Month,
		Year:     input.Year,
		Day:      input.Day,
		Start:    *input.Start,
		End:      *input.End,
		DateISO:  input.DateISO,
	}
	if event.DateISO == "" {
		event.DateISO = deriveISO(input)
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeAlreadyExists {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create event")
	}

	if err := s.membershipRepo.Join(ctx, input.UserID, eventID, input.Creator, event.DateISO); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to join creator to event")
	}

	for _, name := range input.Member {
		if name == input.Creator {
			continue
		}
		targetID, err := s.userRepo.FindIDByName(ctx, name)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to resolve invited member")
		}
		if targetID == "" {
			s.logger.Warn("invited member not found, skipping", "name", name)
			continue
		}
		if _, err := s.Invite(ctx, targetID, input.Creator, eventID); err != nil {
			return nil, err
		}
	}

	if s.notifier != nil {
		s.notifier.EventCreated(ctx, event)
	}

	return event, nil
}

// QueryEvent returns a single-entry map keyed by the event's derived calendar
// date, with the record enriched by its member list. A missing event yields
// nil without error.
func (s *eventService) QueryEvent(ctx context.Context, eventID string) (map[string]*EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to query event")
	}
	if event == nil {
		return nil, nil
	}

	members, err := s.membershipRepo.MembersOf(ctx, eventID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to query event members")
	}

	return map[string]*EventDetail{
		event.DateKey(): {Event: *event, Member: members},
	}, nil
}

// ListEventsForUser resolves every membership row through QueryEvent and
// groups the results by calendar date, preserving insertion order per bucket.
func (s *eventService) ListEventsForUser(ctx context.Context, userID string) (map[string][]*EventDetail, error) {
	memberships, err := s.eventRepo.ListUserEvents(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list user events")
	}

	calendar := make(map[string][]*EventDetail)
	for _, membership := range memberships {
		eventID, err := models.ExtractEventID(membership.SK)
		if err != nil {
			s.logger.Warn("skipping malformed membership row", "sk", membership.SK)
			continue
		}

		entry, err := s.QueryEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		for date, detail := range entry {
			calendar[date] = append(calendar[date], detail)
		}
	}

	return calendar, nil
}

func (s *eventService) LeaveEvent(ctx context.Context, userID, eventID string) error {
	if userID == "" || eventID == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "user id and event id are required")
	}

	if err := s.membershipRepo.Leave(ctx, userID, eventID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTransactionError, "failed to leave event")
	}

	return nil
}

func (s *eventService) Invite(ctx context.Context, targetUserID, inviterName, eventID string) (*models.Invitation, error) {
	if targetUserID == "" || inviterName == "" || eventID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "user id, inviter and event id are required")
	}

	exists, err := s.eventRepo.Exists(ctx, eventID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check event")
	}
	if !exists {
		return nil, apperrors.New(apperrors.CodeNotFound, "event not found")
	}

	invitation := &models.Invitation{
		InvitationID: uuid.New().String(),
		Inviter:      inviterName,
		EventID:      eventID,
	}

	if err := s.invitationRepo.Create(ctx, targetUserID, invitation); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create invitation")
	}

	if s.notifier != nil {
		s.notifier.InvitationCreated(ctx, targetUserID, invitation)
	}

	return invitation, nil
}

func (s *eventService) ListInvitations(ctx context.Context, userID string) ([]InvitationDetail, error) {
	invitations, err := s.invitationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list invitations")
	}

	details := make([]InvitationDetail, 0, len(invitations))
	for _, invitation := range invitations {
		event, err := s.QueryEvent(ctx, invitation.EventID)
		if err != nil {
			return nil, err
		}
		details = append(details, InvitationDetail{Invitation: invitation, Event: event})
	}

	return details, nil
}

func (s *eventService) DeclineInvitation(ctx context.Context, invitationID, userID string) error {
	if invitationID == "" || userID == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "invitation id and user id are required")
	}

	if err := s.invitationRepo.Delete(ctx, userID, invitationID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to decline invitation")
	}

	return nil
}

var requiredEventFields = []string{
	"userId", "name", "creator", "detail", "category",
	"date", "month", "year", "day", "starttime", "endtime",
}

func missingFields(input *CreateEventInput) []string {
	present := map[string]bool{
		"userId":    input.UserID != "",
		"name":      input.Name != "",
		"creator":   input.Creator != "",
		"detail":    input.Detail != "",
		"category":  input.Category != "",
		"date":      input.Date != 0,
		"month":     input.Month != 0,
		"year":      input.Year != 0,
		"day":       input.Day != "",
		"starttime": input.Start != nil,
		"endtime":   input.End != nil,
	}

	var missing []string
	for _, field := range requiredEventFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

func deriveISO(input *CreateEventInput) string {
	t := time.Date(input.Year, time.Month(input.Month), input.Date,
		input.Start.Hour, input.Start.Min, 0, 0, time.UTC)
	return t.Format(time.RFC3339)
}
