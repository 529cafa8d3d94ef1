package models

// List is a named collection of athletes, e.g. "U12 Kızlar".
type List struct {
	// ID is the unique identifier for the list (UUID format).
	ID string

	// OwnerID is the user that owns the list. Empty for lists kept in the
	// local cache.
	OwnerID string

	// Name is the display name of the list.
	Name string

	// CreatedAt is the Unix timestamp when the list was created.
	CreatedAt int64
}

// DefaultListName is used for the list created automatically when an owner
// has none.
const DefaultListName = "Listem"
