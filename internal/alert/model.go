// Package alert manages platform-wide system alerts shown to every user.
package alert

import "time"

// Alert is a banner message displayed between StartDate and EndDate.
type Alert struct {
	ID        string    `dynamodbav:"id" json:"id"`
	Name      string    `dynamodbav:"name" json:"name"`
	Message   string    `dynamodbav:"message" json:"message"`
	Icon      string    `dynamodbav:"icon" json:"icon"`
	Status    string    `dynamodbav:"status" json:"status"`
	StartDate time.Time `dynamodbav:"startDate" json:"startDate"`
	EndDate   time.Time `dynamodbav:"endDate" json:"endDate"`
	Author    string    `dynamodbav:"author" json:"author"`
	Archived  bool      `dynamodbav:"archived" json:"archived"`
	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ActiveAt reports whether the alert should be displayed at t. A zero
// EndDate leaves the window open.
func (a Alert) ActiveAt(t time.Time) bool {
	return !a.Archived && !t.Before(a.StartDate) && (a.EndDate.IsZero() || !t.After(a.EndDate))
}

// ExpiredAt reports whether the alert's display window closed before t.
func (a Alert) ExpiredAt(t time.Time) bool {
	return !a.Archived && !a.EndDate.IsZero() && t.After(a.EndDate)
}
