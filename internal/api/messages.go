package api

import (
	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/models"
)

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

type List struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type ListListsRequest struct{}

type ListListsResponse struct {
	Lists []List `json:"lists"`
}

type CreateListRequest struct {
	Name string `json:"name"`
}

type RenameListRequest struct {
	ListID string `json:"listId"`
	Name   string `json:"name"`
}

type ListResponse struct {
	List List `json:"list"`
}

type DeleteListRequest struct {
	ListID string `json:"listId"`
}

type DeleteListResponse struct{}

// Month is one column of the payment table.
type Month struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Athlete struct {
	ID        string          `json:"id"`
	ListID    string          `json:"listId"`
	Name      string          `json:"name"`
	Payments  map[string]bool `json:"payments"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

type ListAthletesRequest struct {
	ListID string `json:"listId"`
	Search string `json:"search,omitempty"`
}

// MonthTotal counts the visible athletes that paid, or still owe, a month.
type MonthTotal struct {
	Key    string `json:"key"`
	Paid   int    `json:"paid"`
	Unpaid int    `json:"unpaid"`
}

// ListAthletesResponse carries the table: the month header, the rows
// visible under the search text and their column totals. Total counts the
// whole list; Settled counts visible athletes that owe nothing.
type ListAthletesResponse struct {
	Months   []Month      `json:"months"`
	Athletes []Athlete    `json:"athletes"`
	Totals   []MonthTotal `json:"totals"`
	Settled  int          `json:"settled"`
	Total    int          `json:"total"`
}

type AddAthleteRequest struct {
	ListID string `json:"listId"`
	Name   string `json:"name"`
}

type RenameAthleteRequest struct {
	AthleteID string `json:"athleteId"`
	Name      string `json:"name"`
}

type AthleteResponse struct {
	Athlete Athlete `json:"athlete"`
}

type DeleteAthleteRequest struct {
	AthleteID string `json:"athleteId"`
}

type DeleteAthleteResponse struct{}

// UpdatePaymentsRequest replaces the given months. Months not present keep
// their state.
type UpdatePaymentsRequest struct {
	AthleteID string          `json:"athleteId"`
	Payments  map[string]bool `json:"payments"`
}

type TogglePaymentRequest struct {
	AthleteID string `json:"athleteId"`
	Month     string `json:"month"`
}

type InterpretRequest struct {
	Text string `json:"text"`
}

// Intent is the structured reading of a command.
type Intent struct {
	IsPaid       bool     `json:"isPaid"`
	IsUnpaid     bool     `json:"isUnpaid"`
	Wildcard     bool     `json:"wildcard"`
	Months       []string `json:"months"`
	NameFragment string   `json:"nameFragment"`
}

type InterpretResponse struct {
	Intent Intent `json:"intent"`
	// Message is set when the command cannot be applied as written.
	Message string `json:"message,omitempty"`
}

type ApplyCommandRequest struct {
	ListID string `json:"listId"`
	Text   string `json:"text"`
	Search string `json:"search,omitempty"`
	DryRun bool   `json:"dryRun,omitempty"`
}

// Command outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomePreview  = "preview"
	OutcomeNoAction = "no_action"
	OutcomeNoMonth  = "no_month"
	OutcomeNoMatch  = "no_match"
	OutcomeFailed   = "failed"
)

// ApplyCommandResponse reports what a command did. Athletes holds the new
// state of every athlete written (or, for a dry run, that would be).
// Failed lists athletes whose write did not go through.
type ApplyCommandResponse struct {
	Outcome  string    `json:"outcome"`
	Message  string    `json:"message"`
	Intent   Intent    `json:"intent"`
	Athletes []Athlete `json:"athletes"`
	Failed   []string  `json:"failed,omitempty"`
}

type SubscribeRequest struct {
	ListID string `json:"listId"`
}

// RosterEvent is one change pushed to subscribers.
type RosterEvent struct {
	Type    string  `json:"type"`
	ListID  string  `json:"listId"`
	Athlete Athlete `json:"athlete"`
	At      int64   `json:"at"`
}

func FromUser(u *models.User) User {
	return User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

func FromList(l *models.List) List {
	return List{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}

func FromAthlete(a models.Athlete) Athlete {
	return Athlete{
		ID:        a.ID,
		ListID:    a.ListID,
		Name:      a.Name,
		Payments:  calendar.Complete(a.Payments),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (a Athlete) Model() models.Athlete {
	return models.Athlete{
		ID:        a.ID,
		ListID:    a.ListID,
		Name:      a.Name,
		Payments:  calendar.Complete(a.Payments),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func FromIntent(i command.Intent) Intent {
	return Intent{
		IsPaid:       i.IsPaid,
		IsUnpaid:     i.IsUnpaid,
		Wildcard:     i.Wildcard,
		Months:       i.Months,
		NameFragment: i.NameFragment,
	}
}

func FromEvent(ev models.RosterEvent) RosterEvent {
	return RosterEvent{
		Type:    string(ev.Type),
		ListID:  ev.ListID,
		Athlete: FromAthlete(ev.Athlete),
		At:      ev.At,
	}
}

func (e RosterEvent) Model() models.RosterEvent {
	ev := models.RosterEvent{
		Type:    models.EventType(e.Type),
		ListID:  e.ListID,
		Athlete: e.Athlete.Model(),
		At:      e.At,
	}
	if ev.Athlete.ListID == "" {
		ev.Athlete.ListID = e.ListID
	}
	return ev
}

// CalendarMonths returns the table header.
func CalendarMonths() []Month {
	months := calendar.Months()
	out := make([]Month, len(months))
	for i, m := range months {
		out[i] = Month{Key: m.Key, Label: m.Label}
	}
	return out
}
