// Package export reads and writes a list's payment table as CSV.
//
// The layout is one row per athlete: the name under "Sporcu" followed by
// one column per calendar month, labelled as in the table header. A paid
// month holds "✓" and an unpaid one is left empty.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
)

// NameHeader is the title of the first column.
const NameHeader = "Sporcu"

// PaidMark is written in paid cells.
const PaidMark = "✓"

// Mark is one month cell.
type Mark bool

// MarshalCSV implements gocsv.TypeMarshaller.
func (m Mark) MarshalCSV() (string, error) {
	if m {
		return PaidMark, nil
	}
	return "", nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller. Besides the mark it
// accepts the spellings people type into spreadsheets by hand.
func (m *Mark) UnmarshalCSV(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case PaidMark, "✔", "x", "1", "evet", "true":
		*m = true
	case "", "0", "-", "hayır", "false":
		*m = false
	default:
		return fmt.Errorf("unrecognized payment cell %q", s)
	}
	return nil
}

// Row is one CSV line. Column titles must stay equal to calendar.Labels.
type Row struct {
	Name    string `csv:"Sporcu"`
	Sep25   Mark   `csv:"Eyl 25"`
	Oct25   Mark   `csv:"Eki 25"`
	Nov25   Mark   `csv:"Kas 25"`
	Dec25   Mark   `csv:"Ara 25"`
	Jan26   Mark   `csv:"Oca 26"`
	Feb26   Mark   `csv:"Şub 26"`
	Mar26   Mark   `csv:"Mar 26"`
	Apr26   Mark   `csv:"Nis 26"`
	May26   Mark   `csv:"May 26"`
	Jun26   Mark   `csv:"Haz 26"`
	Jul26   Mark   `csv:"Tem 26"`
	Aug26   Mark   `csv:"Ağu 26"`
	Sep26   Mark   `csv:"Eyl 26"`
}

// cells returns pointers to the month cells in calendar order.
func (r *Row) cells() []*Mark {
	return []*Mark{
		&r.Sep25, &r.Oct25, &r.Nov25, &r.Dec25,
		&r.Jan26, &r.Feb26, &r.Mar26, &r.Apr26,
		&r.May26, &r.Jun26, &r.Jul26, &r.Aug26,
		&r.Sep26,
	}
}

// RowFor converts an athlete into a CSV row.
func RowFor(a models.Athlete) *Row {
	r := &Row{Name: a.Name}
	for i, key := range calendar.Keys() {
		*r.cells()[i] = Mark(a.Payments[key])
	}
	return r
}

// Payments returns the full payment state held by the row.
func (r *Row) Payments() models.PaymentState {
	p := calendar.BlankPayments()
	cells := r.cells()
	for i, key := range calendar.Keys() {
		p[key] = bool(*cells[i])
	}
	return p
}

// Write encodes athletes as CSV, header first.
func Write(w io.Writer, athletes []models.Athlete) error {
	rows := make([]*Row, 0, len(athletes))
	for _, a := range athletes {
		rows = append(rows, RowFor(a))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Read decodes rows written by Write. Rows without a name are skipped.
func Read(r io.Reader) ([]*Row, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	out := rows[:0]
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		if row.Name != "" {
			out = append(out, row)
		}
	}
	return out, nil
}
