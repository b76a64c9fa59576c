package models

import (
	"fmt"
	"strings"
)

// TimeOfDay is an hour/minute pair. The end-of-day sentinel {24, 60} marks
// events that run until the end of their calendar day.
type TimeOfDay struct {
	Hour int `dynamodbav:"hour" json:"hour"`
	Min  int `dynamodbav:"min" json:"min"`
}

func EndOfDay() TimeOfDay {
	return TimeOfDay{Hour: 24, Min: 60}
}

type Event struct {
	EventID  string    `dynamodbav:"event_id"`
	Name     string    `dynamodbav:"name"`
	Creator  string    `dynamodbav:"creator"`
	Detail   string    `dynamodbav:"detail"`
	Category string    `dynamodbav:"category"`
	Date     int       `dynamodbav:"date"`
	Month    int       `dynamodbav:"month"`
	Year     int       `dynamodbav:"year"`
	Day      string    `dynamodbav:"day"`
	Start    TimeOfDay `dynamodbav:"starttime"`
	End      TimeOfDay `dynamodbav:"endtime"`
	DateISO  string    `dynamodbav:"date_iso"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// DateKey derives the calendar-date string events are grouped under.
func (e *Event) DateKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", e.Year, e.Month, e.Date)
}

// Key handlers
func EventPK(eventID string) string {
	return fmt.Sprintf("Event#%s", eventID)
}

func EventSKPrefix() string {
	return "Event#"
}

func ExtractEventID(key string) (string, error) {
	if !strings.HasPrefix(key, "Event#") || len(key) <= 6 {
		return "", fmt.Errorf("invalid event key format: %s", key)
	}
	return key[6:], nil
}
