package team

import (
	"time"
)

// AdminRole is the team role that allows a member to manage the team.
const AdminRole = "Admin"

// Team is an administrative grouping of users within an organisation.
type Team struct {
	Code              string    `dynamodbav:"code" json:"code"`
	Name              string    `dynamodbav:"name" json:"name"`
	Description       string    `dynamodbav:"description" json:"description"`
	Organisation      string    `dynamodbav:"organisation" json:"organisation"`
	ResponsiblePeople []string  `dynamodbav:"responsiblePeople" json:"responsiblePeople"`
	Archived          bool      `dynamodbav:"archived" json:"archived"`
	CreatedAt         time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Role assigns a user a role within a team for a period of time.
type Role struct {
	TeamCode  string     `dynamodbav:"teamcode" json:"teamcode"`
	ID        string     `dynamodbav:"id" json:"id"`
	Username  string     `dynamodbav:"username" json:"username"`
	Role      string     `dynamodbav:"role" json:"role"`
	StartDate time.Time  `dynamodbav:"startDate" json:"startDate"`
	EndDate   *time.Time `dynamodbav:"endDate,omitempty" json:"endDate,omitempty"`
	Archived  bool       `dynamodbav:"archived" json:"archived"`
	CreatedAt time.Time  `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ActiveAt reports whether the role is in effect at t.
func (r Role) ActiveAt(t time.Time) bool {
	if r.Archived || t.Before(r.StartDate) {
		return false
	}
	return r.EndDate == nil || !t.After(*r.EndDate)
}
