package command

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActionKeyword means neither "ödendi" nor "ödenmedi" was found.
	// Nothing may be updated.
	ErrNoActionKeyword = errors.New("command has no paid/unpaid keyword")

	// ErrNoMonth means an action was found but no month and no "tüm".
	ErrNoMonth = errors.New("command names no month")

	// ErrNoMatch means the name fragment selected no athlete.
	ErrNoMatch = errors.New("no athlete matched the command")
)

// User-facing messages.
const (
	MsgNoActionKeyword = `Komutta "ödendi" ya da "ödenmedi" bulunamadı.`
	MsgNoMonth         = `Komutta ay bulunamadı. Örnek: "Ali ekim ayı ödendi" ya da "Ali tüm ödendi".`
	MsgNoMatch         = "Eşleşen sporcu bulunamadı."
	MsgFailed          = "Komut uygulanamadı."
)

// Message returns the message shown to the user for a rejected command.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoActionKeyword):
		return MsgNoActionKeyword
	case errors.Is(err, ErrNoMonth):
		return MsgNoMonth
	case errors.Is(err, ErrNoMatch):
		return MsgNoMatch
	default:
		return MsgFailed
	}
}

// Summary describes a successful command, e.g.
// "2 sporcu, 3 ay: ödendi".
func Summary(intent Intent, athletes int) string {
	state := "ödendi"
	if intent.IsUnpaid {
		state = "ödenmedi"
	}
	return fmt.Sprintf("%d sporcu, %d ay: %s", athletes, len(intent.Months), state)
}
