package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/models"
)

func setupEventService() (EventService, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewEventService(
		&fakeEventRepo{store: store},
		&fakeMembershipRepo{store: store},
		&fakeInvitationRepo{store: store},
		store,
		notifier,
		logger.Default("test"),
	)
	return svc, store, notifier
}

func validInput() *CreateEventInput {
	return &CreateEventInput{
		UserID:   "1001",
		EventID:  "42",
		Name:     "HW1",
		Creator:  "Jane Doe",
		Detail:   "-",
		Category: "CS101",
		Date:     5,
		Month:    3,
		Year:     2023,
		Day:      "Sunday",
		Start:    &models.TimeOfDay{Hour: 23, Min: 59},
		End:      &models.TimeOfDay{Hour: 24, Min: 60},
	}
}

func TestCreateEventThenQueryUsesPaddedDateKey(t *testing.T) {
	svc, _, _ := setupEventService()
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, validInput())
	assert.NoError(t, err)
	assert.Equal(t, "42", event.EventID)

	entry, err := svc.QueryEvent(ctx, "42")
	assert.NoError(t, err)
	assert.Len(t, entry, 1)

	detail, ok := entry["2023-03-05"]
	assert.True(t, ok, "date key must be zero-padded year-month-day")
	assert.Equal(t, "HW1", detail.Name)
	assert.Equal(t, []string{"Jane Doe"}, detail.Member)
}

func TestCreateEventGeneratesIDWhenMissing(t *testing.T) {
	svc, _, _ := setupEventService()

	input := validInput()
	input.EventID = ""

	event, err := svc.CreateEvent(context.Background(), input)
	assert.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
}

func TestCreateEventReportsEveryMissingField(t *testing.T) {
	svc, _, _ := setupEventService()

	input := validInput()
	input.Name = ""
	input.Detail = ""
	input.Start = nil

	_, err := svc.CreateEvent(context.Background(), input)
	assert.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
	assert.Contains(t, appErr.Message, "name")
	assert.Contains(t, appErr.Message, "detail")
	assert.Contains(t, appErr.Message, "starttime")
}

func TestCreateEventRequiresUserID(t *testing.T) {
	svc, store, _ := setupEventService()

	input := validInput()
	input.UserID = ""

	_, err := svc.CreateEvent(context.Background(), input)
	assert.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
	assert.Contains(t, appErr.Message, "userId")

	// nothing may be written: no event, no ownerless membership pair
	assert.Empty(t, store.events)
	assert.Empty(t, store.userEvents)
	assert.Empty(t, store.eventMembers)
}

func TestCreateEventIsIdempotentPerEventID(t *testing.T) {
	svc, store, _ := setupEventService()
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, validInput())
	assert.NoError(t, err)

	_, err = svc.CreateEvent(ctx, validInput())
	assert.Error(t, err)
	appErr := err.(*apperrors.AppError)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
	assert.Len(t, store.events, 1)
}

func TestCreateEventInvitesOtherMembers(t *testing.T) {
	svc, store, notifier := setupEventService()
	ctx := context.Background()

	// the invited member must already be resolvable by name
	err := store.Create(ctx, &models.User{UserID: "2002", DisplayName: "John Smith"})
	assert.NoError(t, err)

	input := validInput()
	input.Member = []string{"Jane Doe", "John Smith", "Nobody Known"}

	_, err = svc.CreateEvent(ctx, input)
	assert.NoError(t, err)

	// the creator is joined, not invited; the unknown name is skipped
	invitations, err := svc.ListInvitations(ctx, "2002")
	assert.NoError(t, err)
	assert.Len(t, invitations, 1)
	assert.Equal(t, "Jane Doe", invitations[0].Inviter)
	assert.Equal(t, "42", invitations[0].EventID)

	assert.Len(t, notifier.eventsCreated, 1)
	assert.Len(t, notifier.invitationsCreated, 1)
}

func TestLeaveEventRemovesBothSides(t *testing.T) {
	svc, _, _ := setupEventService()
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, validInput())
	assert.NoError(t, err)

	entry, _ := svc.QueryEvent(ctx, "42")
	assert.Equal(t, []string{"Jane Doe"}, entry["2023-03-05"].Member)

	err = svc.LeaveEvent(ctx, "1001", "42")
	assert.NoError(t, err)

	entry, _ = svc.QueryEvent(ctx, "42")
	assert.Empty(t, entry["2023-03-05"].Member)

	calendar, err := svc.ListEventsForUser(ctx, "1001")
	assert.NoError(t, err)
	assert.Empty(t, calendar)
}

func TestListEventsForUserGroupsByDate(t *testing.T) {
	svc, _, _ := setupEventService()
	ctx := context.Background()

	first := validInput()
	_, err := svc.CreateEvent(ctx, first)
	assert.NoError(t, err)

	second := validInput()
	second.EventID = "43"
	second.Name = "HW2"
	_, err = svc.CreateEvent(ctx, second)
	assert.NoError(t, err)

	third := validInput()
	third.EventID = "44"
	third.Name = "Quiz"
	third.Date = 6
	_, err = svc.CreateEvent(ctx, third)
	assert.NoError(t, err)

	calendar, err := svc.ListEventsForUser(ctx, "1001")
	assert.NoError(t, err)
	assert.Len(t, calendar, 2)
	assert.Len(t, calendar["2023-03-05"], 2)
	assert.Equal(t, "HW1", calendar["2023-03-05"][0].Name)
	assert.Equal(t, "HW2", calendar["2023-03-05"][1].Name)
	assert.Len(t, calendar["2023-03-06"], 1)
}

func TestQueryEventMissingReturnsNilNotError(t *testing.T) {
	svc, _, _ := setupEventService()

	entry, err := svc.QueryEvent(context.Background(), "no-such-event")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestInviteListDeclineRoundTrip(t *testing.T) {
	svc, _, _ := setupEventService()
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, validInput())
	assert.NoError(t, err)

	invitation, err := svc.Invite(ctx, "2002", "Jane Doe", "42")
	assert.NoError(t, err)

	listed, err := svc.ListInvitations(ctx, "2002")
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	expected, err := svc.QueryEvent(ctx, "42")
	assert.NoError(t, err)
	assert.Equal(t, expected, listed[0].Event)

	err = svc.DeclineInvitation(ctx, invitation.InvitationID, "2002")
	assert.NoError(t, err)

	listed, err = svc.ListInvitations(ctx, "2002")
	assert.NoError(t, err)
	assert.Empty(t, listed)
}

func TestInviteValidatesRequiredAttributes(t *testing.T) {
	svc, _, _ := setupEventService()

	_, err := svc.Invite(context.Background(), "", "Jane Doe", "42")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, err.(*apperrors.AppError).Code)
}

func TestInviteUnknownEventIsNotFound(t *testing.T) {
	svc, store, _ := setupEventService()

	_, err := svc.Invite(context.Background(), "2002", "Jane Doe", "no-such-event")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, err.(*apperrors.AppError).Code)
	assert.Empty(t, store.invitations)
}

func TestDeclineRequiresBothIDs(t *testing.T) {
	svc, _, _ := setupEventService()

	err := svc.DeclineInvitation(context.Background(), "", "2002")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, err.(*apperrors.AppError).Code)

	err = svc.DeclineInvitation(context.Background(), "inv-1", "")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, err.(*apperrors.AppError).Code)
}
