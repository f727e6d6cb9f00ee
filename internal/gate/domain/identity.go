package domain

import (
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// Identity is the verified caller handed to downstream request handling.
// It is built fresh per request and never persisted.
type Identity struct {
	UserID      idx.ID
	Username    string
	DisplayName string
	Created     time.Time
	LoginID     idx.ID
	Grants      GrantSet
}

// Account carries the profile fields joined onto every credential lookup.
type Account struct {
	ID          idx.ID
	Username    string
	DisplayName string
	Created     time.Time
}
