package models

import "time"

// FileCategory classifies documents and drives reference id generation.
// The optional designation link feeds the approved-repository visibility
// policy (categories reserved to executive offices).
type FileCategory struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Prefix        string    `db:"prefix" json:"prefix"`
	DesignationID *string   `db:"designation_id" json:"designation_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Designation is an organizational department or office.
type Designation struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
