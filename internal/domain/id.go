package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies users and posts. All ownership comparisons use == on ID.
type ID uuid.UUID

// NilID is the zero ID. It never identifies a stored record.
var NilID ID

// NewID returns a random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, fmt.Errorf("%w: malformed id %q", ErrInvalidInput, s)
	}
	return ID(u), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == NilID
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src any) error {
	return (*uuid.UUID)(id).Scan(src)
}

// Value implements driver.Valuer. IDs are stored in canonical string form.
func (id ID) Value() (driver.Value, error) {
	return uuid.UUID(id).String(), nil
}
