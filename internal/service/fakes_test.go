package service

import (
	"context"
	"sync"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/models"
)

// fakeStore is an in-memory stand-in for the DynamoDB-backed repositories,
// implementing all four repository interfaces over shared state so the
// paired membership rows behave like they do in the real table.
type fakeStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	nameIndex    map[string][]string
	events       map[string]*models.Event
	userEvents   []models.UserEvent
	eventMembers map[string][]models.EventMember
	invitations  map[string][]models.Invitation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string]*models.User),
		nameIndex:    make(map[string][]string),
		events:       make(map[string]*models.Event),
		eventMembers: make(map[string][]models.EventMember),
		invitations:  make(map[string][]models.Invitation),
	}
}

// UserRepository

func (f *fakeStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UserID]; ok {
		return apperrors.New(apperrors.CodeAlreadyExists, "user already exists")
	}
	user.PK = models.UserPK(user.UserID)
	user.SK = models.UserPK(user.UserID)
	f.users[user.UserID] = user
	f.nameIndex[user.DisplayName] = append(f.nameIndex[user.DisplayName], user.UserID)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[userID]
	return ok, nil
}

func (f *fakeStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID], nil
}

func (f *fakeStore) FindIDByName(ctx context.Context, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.nameIndex[displayName]
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// EventRepository lives on a separate type because Create/Exists/GetByID
// collide with the user methods.
type fakeEventRepo struct {
	store *fakeStore
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.events[event.EventID]; ok {
		return apperrors.New(apperrors.CodeAlreadyExists, "event already exists")
	}
	event.PK = models.EventPK(event.EventID)
	event.SK = models.EventPK(event.EventID)
	copied := *event
	f.store.events[event.EventID] = &copied
	return nil
}

func (f *fakeEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	_, ok := f.store.events[eventID]
	return ok, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	event, ok := f.store.events[eventID]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) ListUserEvents(ctx context.Context, userID string) ([]models.UserEvent, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []models.UserEvent
	for _, ue := range f.store.userEvents {
		if ue.PK == models.UserPK(userID) {
			out = append(out, ue)
		}
	}
	return out, nil
}

// MembershipRepository

type fakeMembershipRepo struct {
	store *fakeStore
}

func (f *fakeMembershipRepo) Join(ctx context.Context, userID, eventID, displayName, dateISO string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.userEvents = append(f.store.userEvents, models.UserEvent{
		PK:    models.UserPK(userID),
		SK:    models.EventPK(eventID),
		Dates: dateISO,
	})
	f.store.eventMembers[eventID] = append(f.store.eventMembers[eventID], models.EventMember{
		PK:   models.EventPK(eventID),
		SK:   models.UserPK(userID),
		Name: displayName,
	})
	return nil
}

func (f *fakeMembershipRepo) Leave(ctx context.Context, userID, eventID string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	kept := f.store.userEvents[:0]
	for _, ue := range f.store.userEvents {
		if !(ue.PK == models.UserPK(userID) && ue.SK == models.EventPK(eventID)) {
			kept = append(kept, ue)
		}
	}
	f.store.userEvents = kept

	members := f.store.eventMembers[eventID][:0]
	for _, m := range f.store.eventMembers[eventID] {
		if m.SK != models.UserPK(userID) {
			members = append(members, m)
		}
	}
	f.store.eventMembers[eventID] = members
	return nil
}

func (f *fakeMembershipRepo) MembersOf(ctx context.Context, eventID string) ([]string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	names := make([]string, 0, len(f.store.eventMembers[eventID]))
	for _, m := range f.store.eventMembers[eventID] {
		names = append(names, m.Name)
	}
	return names, nil
}

// InvitationRepository

type fakeInvitationRepo struct {
	store *fakeStore
}

func (f *fakeInvitationRepo) Create(ctx context.Context, targetUserID string, invitation *models.Invitation) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	invitation.PK = models.UserPK(targetUserID)
	invitation.SK = models.InviteSK(invitation.InvitationID)
	f.store.invitations[targetUserID] = append(f.store.invitations[targetUserID], *invitation)
	return nil
}

func (f *fakeInvitationRepo) ListByUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return append([]models.Invitation(nil), f.store.invitations[userID]...), nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, userID, invitationID string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	kept := f.store.invitations[userID][:0]
	for _, inv := range f.store.invitations[userID] {
		if inv.InvitationID != invitationID {
			kept = append(kept, inv)
		}
	}
	f.store.invitations[userID] = kept
	return nil
}

// Notifier

type fakeNotifier struct {
	eventsCreated      []string
	invitationsCreated []string
}

func (f *fakeNotifier) EventCreated(ctx context.Context, event *models.Event) {
	f.eventsCreated = append(f.eventsCreated, event.EventID)
}

func (f *fakeNotifier) InvitationCreated(ctx context.Context, targetUserID string, invitation *models.Invitation) {
	f.invitationsCreated = append(f.invitationsCreated, invitation.InvitationID)
}
