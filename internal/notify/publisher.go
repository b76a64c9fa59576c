package notify

import (
	"context"
	"encoding/json"

	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/models"
)

// Publisher emits calendar notifications to JetStream. Publishing is
// fire-and-forget: a broker outage must not fail the user's request.
type Publisher struct {
	client *Client
	logger *logger.Logger
}

func NewPublisher(client *Client, logger *logger.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

type eventCreatedMessage struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	Creator  string `json:"creator"`
	Category string `json:"category"`
	DateISO  string `json:"date_iso"`
}

type invitationCreatedMessage struct {
	InvitationID string `json:"invitation_id"`
	TargetUserID string `json:"target_user_id"`
	Inviter      string `json:"inviter"`
	EventID      string `json:"event_id"`
}

func (p *Publisher) EventCreated(ctx context.Context, event *models.Event) {
	p.publish(ctx, SubjectEventCreated, eventCreatedMessage{
		EventID:  event.EventID,
		Name:     event.Name,
		Creator:  event.Creator,
		Category: event.Category,
		DateISO:  event.DateISO,
	})
}

func (p *Publisher) InvitationCreated(ctx context.Context, targetUserID string, invitation *models.Invitation) {
	p.publish(ctx, SubjectInvitationCreated, invitationCreatedMessage{
		InvitationID: invitation.InvitationID,
		TargetUserID: targetUserID,
		Inviter:      invitation.Inviter,
		EventID:      invitation.EventID,
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to marshal notification", "subject", subject, "error", err)
		return
	}

	if _, err := p.client.js.Publish(ctx, subject, data); err != nil {
		p.logger.Error("failed to publish notification", "subject", subject, "error", err)
	}
}
