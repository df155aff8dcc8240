// Package notification stores per-user notifications and optionally emails
// them to the recipient.
package notification

import "time"

// Notification is a message addressed to one user.
type Notification struct {
	Username   string    `dynamodbav:"username" json:"username"`
	ID         string    `dynamodbav:"id" json:"id"`
	Title      string    `dynamodbav:"title" json:"title"`
	Message    string    `dynamodbav:"message" json:"message"`
	Type       string    `dynamodbav:"type" json:"type"`
	Importance string    `dynamodbav:"importance" json:"importance"`
	Read       bool      `dynamodbav:"read" json:"read"`
	Archived   bool      `dynamodbav:"archived" json:"archived"`
	Author     string    `dynamodbav:"author" json:"author"`
	CreatedAt  time.Time `dynamodbav:"createdAt" json:"createdAt"`
}
