package models

import "time"

// CaseNote - a free-form note attached to a student conversation.
// The store keeps at most the 1000 most recent notes and evicts the
// oldest first.
type CaseNote struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	StudentEmail string    `json:"studentEmail" bson:"studentEmail"`
	Subject      string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Body         string    `json:"body" bson:"body"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

type CreateCaseNoteRequest struct {
	StudentEmail string `json:"studentEmail" binding:"required,email"`
	Subject      string `json:"subject"`
	Body         string `json:"body" binding:"required"`
}
