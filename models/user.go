package models

import "time"

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

const DefaultUserName = "Anonymous"

type User struct {
	DID       string    `bson:"did" json:"did"`
	Role      Role      `bson:"role" json:"role"`
	Name      string    `bson:"name" json:"name"`
	// Email is only known when the identity provider vouched for it.
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
