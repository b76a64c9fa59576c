package models

import (
	"fmt"
	"strings"
)

// Invitation is a pending offer for a user to join an event. It lives under
// the invited user's partition and is deleted on decline.
type Invitation struct {
	InvitationID string `dynamodbav:"invitation_id"`
	Inviter      string `dynamodbav:"inviter"`
	EventID      string `dynamodbav:"event_id"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// Key handlers
func InviteSK(invitationID string) string {
	return fmt.Sprintf("Invite#%s", invitationID)
}

func InviteSKPrefix() string {
	return "Invite#"
}

func ExtractInvitationID(key string) (string, error) {
	if !strings.HasPrefix(key, "Invite#") || len(key) <= 7 {
		return "", fmt.Errorf("invalid invitation key format: %s", key)
	}
	return key[7:], nil
}
