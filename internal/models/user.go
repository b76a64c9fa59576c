package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	UserID      string    `dynamodbav:"user_id"`
	StudentID   string    `dynamodbav:"student_id"`
	DisplayName string    `dynamodbav:"display_name"`
	CreatedAt   time.Time `dynamodbav:"created_at"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// NameIndex is the denormalized display-name row enabling name->id lookup.
// Display names are not unique; the index may hold several rows per name.
type NameIndex struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// Key handlers
func UserPK(userID string) string {
	return fmt.Sprintf("User#%s", userID)
}

func UserSKPrefix() string {
	return "User#"
}

func NamePK(displayName string) string {
	return fmt.Sprintf("Name#%s", displayName)
}

func ExtractUserID(key string) (string, error) {
	if !strings.HasPrefix(key, "User#") || len(key) <= 5 {
		return "", fmt.Errorf("invalid user key format: %s", key)
	}
	return key[5:], nil
}
