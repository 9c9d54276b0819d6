package models

import "time"

// CloudDocument is one mirrored collection of one teacher.
type CloudDocument struct {
	OwnerEmail  string    `db:"owner_email" json:"owner_email"`
	Collection  string    `db:"collection" json:"collection"`
	Payload     []byte    `db:"payload" json:"-"`
	PayloadHash string    `db:"payload_hash" json:"payload_hash"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
