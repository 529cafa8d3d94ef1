package models

// PaymentState maps a calendar month key (e.g. "2026-02") to whether the
// month has been paid.
type PaymentState map[string]bool

// Clone returns an independent copy of p.
func (p PaymentState) Clone() PaymentState {
	out := make(PaymentState, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Athlete is a member of a list whose monthly payments are tracked.
type Athlete struct {
	// ID is the unique identifier for the athlete (UUID format).
	ID string

	// ListID is the owning list. It always references an existing list.
	ListID string

	// Name is the display name as typed when the athlete was added.
	Name string

	// Payments holds one entry per calendar month.
	Payments PaymentState

	CreatedAt int64
	UpdatedAt int64
}

// Clone returns a copy of a that shares no maps with it.
func (a Athlete) Clone() Athlete {
	a.Payments = a.Payments.Clone()
	return a
}
