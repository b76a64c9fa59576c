package models

// UserEvent is the user->event side of a membership. Its existence means the
// user is a member (or the creator) of the event.
type UserEvent struct {
	Dates string `dynamodbav:"dates"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// EventMember is the event->user inverse row. The two sides are only ever
// written and deleted together.
type EventMember struct {
	Name string `dynamodbav:"name"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}
