package corevalue

import "github.com/google/uuid"

// Uuid is a 128-bit identifier, wrapping google/uuid's array form so it
// stays a plain comparable value (usable as a map key) instead of the
// slice-backed form.
type Uuid uuid.UUID

// NilUuid is the all-zero identifier, used as the unset/unassigned sentinel.
var NilUuid = Uuid(uuid.Nil)

// NewUuid generates a random (version 4) identifier.
func NewUuid() Uuid { return Uuid(uuid.New()) }

// ParseUuid parses the canonical 8-4-4-4-12 hex form.
func ParseUuid(s string) (Uuid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilUuid, err
	}
	return Uuid(u), nil
}

// String renders the canonical 8-4-4-4-12 hex form.
func (u Uuid) String() string { return uuid.UUID(u).String() }

func (u Uuid) IsNil() bool { return u == NilUuid }
