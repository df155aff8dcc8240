// Package atomic stores free-form JSON documents grouped into collections.
package atomic

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collections that may be stored.
const (
	CollectionFormData = "formdata"
	CollectionPayloads = "payloads"
)

// Record is one stored document.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	Collection string          `json:"collection"`
	Reference  string          `json:"reference"`
	Data       json.RawMessage `json:"data"`
	CreatedBy  string          `json:"createdBy"`
	Archived   bool            `json:"archived"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ValidCollection reports whether name is a known collection.
func ValidCollection(name string) bool {
	return name == CollectionFormData || name == CollectionPayloads
}
