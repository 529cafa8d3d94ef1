package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
	"github.com/mmynk/odemetakip/internal/tally"
)

// AthleteService implements the Connect AthleteService: the rows of the
// payment table and manual edits to them.
type AthleteService struct {
	store     storage.Store
	publisher Publisher
}

// NewAthleteService creates a new AthleteService.
func NewAthleteService(store storage.Store, publisher Publisher) *AthleteService {
	return &AthleteService{store: store, publisher: publisher}
}

// ListAthletes returns the month header, the athletes of a list that
// match the search text and their totals.
func (s *AthleteService) ListAthletes(ctx context.Context, req *connect.Request[api.ListAthletesRequest]) (*connect.Response[api.ListAthletesResponse], error) {
	slog.Info("ListAthletes request received", "list_id", req.Msg.ListID, "search", req.Msg.Search)

	if _, err := ownedList(ctx, s.store, req.Msg.ListID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListAthletes(ctx, req.Msg.ListID)
	if err != nil {
		slog.Error("ListAthletes failed", "list_id", req.Msg.ListID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	all := athletes(rows)
	visible := command.Filter(all, req.Msg.Search)
	summary := tally.Calculate(visible)

	totals := make([]api.MonthTotal, len(summary.Months))
	for i, m := range summary.Months {
		totals[i] = api.MonthTotal{Key: m.Key, Paid: m.Paid, Unpaid: m.Unpaid}
	}

	return connect.NewResponse(&api.ListAthletesResponse{
		Months:   api.CalendarMonths(),
		Athletes: toAPI(visible),
		Totals:   totals,
		Settled:  summary.Settled,
		Total:    len(all),
	}), nil
}

// AddAthlete appends an athlete with every month unpaid. Names are unique
// within a list, ignoring case, diacritics and spacing.
func (s *AthleteService) AddAthlete(ctx context.Context, req *connect.Request[api.AddAthleteRequest]) (*connect.Response[api.AthleteResponse], error) {
	slog.Info("AddAthlete request received", "list_id", req.Msg.ListID, "name", req.Msg.Name)

	name := strings.Join(strings.Fields(req.Msg.Name), " ")
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyName)
	}
	if _, err := ownedList(ctx, s.store, req.Msg.ListID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, req.Msg.ListID, "", name); err != nil {
		return nil, err
	}

	athlete := &models.Athlete{ListID: req.Msg.ListID, Name: name}
	if err := s.store.AddAthlete(ctx, athlete); err != nil {
		slog.Error("AddAthlete failed", "error", err)
		return nil, storeError(err)
	}
	publish(s.publisher, models.EventInsert, *athlete)

	slog.Info("Athlete added", "athlete_id", athlete.ID, "list_id", athlete.ListID)
	return connect.NewResponse(&api.AthleteResponse{Athlete: api.FromAthlete(*athlete)}), nil
}

// RenameAthlete changes an athlete's display name.
func (s *AthleteService) RenameAthlete(ctx context.Context, req *connect.Request[api.RenameAthleteRequest]) (*connect.Response[api.AthleteResponse], error) {
	slog.Info("RenameAthlete request received", "athlete_id", req.Msg.AthleteID, "name", req.Msg.Name)

	name := strings.Join(strings.Fields(req.Msg.Name), " ")
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyName)
	}
	athlete, err := ownedAthlete(ctx, s.store, req.Msg.AthleteID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, athlete.ListID, athlete.ID, name); err != nil {
		return nil, err
	}

	if err := s.store.RenameAthlete(ctx, athlete.ID, name); err != nil {
		slog.Error("RenameAthlete failed", "athlete_id", athlete.ID, "error", err)
		return nil, storeError(err)
	}
	athlete.Name = name
	athlete.UpdatedAt = time.Now().Unix()
	publish(s.publisher, models.EventUpdate, *athlete)

	return connect.NewResponse(&api.AthleteResponse{Athlete: api.FromAthlete(*athlete)}), nil
}

// DeleteAthlete removes an athlete from its list.
func (s *AthleteService) DeleteAthlete(ctx context.Context, req *connect.Request[api.DeleteAthleteRequest]) (*connect.Response[api.DeleteAthleteResponse], error) {
	slog.Info("DeleteAthlete request received", "athlete_id", req.Msg.AthleteID)

	athlete, err := ownedAthlete(ctx, s.store, req.Msg.AthleteID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteAthlete(ctx, athlete.ID); err != nil {
		slog.Error("DeleteAthlete failed", "athlete_id", athlete.ID, "error", err)
		return nil, storeError(err)
	}
	publish(s.publisher, models.EventDelete, models.Athlete{ID: athlete.ID, ListID: athlete.ListID})

	slog.Info("Athlete deleted", "athlete_id", athlete.ID)
	return connect.NewResponse(&api.DeleteAthleteResponse{}), nil
}

// UpdatePayments sets the given months. Other months keep their state.
func (s *AthleteService) UpdatePayments(ctx context.Context, req *connect.Request[api.UpdatePaymentsRequest]) (*connect.Response[api.AthleteResponse], error) {
	slog.Info("UpdatePayments request received", "athlete_id", req.Msg.AthleteID, "months", len(req.Msg.Payments))

	for key := range req.Msg.Payments {
		if !calendar.IsKey(key) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrUnknownMonth, key))
		}
	}
	athlete, err := ownedAthlete(ctx, s.store, req.Msg.AthleteID)
	if err != nil {
		return nil, err
	}

	payments := calendar.Complete(athlete.Payments)
	for key, paid := range req.Msg.Payments {
		payments[key] = paid
	}
	return s.writePayments(ctx, athlete, payments)
}

// TogglePayment flips one month, as a click on a table cell does.
func (s *AthleteService) TogglePayment(ctx context.Context, req *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.AthleteResponse], error) {
	slog.Info("TogglePayment request received", "athlete_id", req.Msg.AthleteID, "month", req.Msg.Month)

	if !calendar.IsKey(req.Msg.Month) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrUnknownMonth, req.Msg.Month))
	}
	athlete, err := ownedAthlete(ctx, s.store, req.Msg.AthleteID)
	if err != nil {
		return nil, err
	}

	payments := calendar.Complete(athlete.Payments)
	payments[req.Msg.Month] = !payments[req.Msg.Month]
	return s.writePayments(ctx, athlete, payments)
}

func (s *AthleteService) writePayments(ctx context.Context, athlete *models.Athlete, payments models.PaymentState) (*connect.Response[api.AthleteResponse], error) {
	if err := s.store.UpdateAthletePayments(ctx, athlete.ID, payments); err != nil {
		slog.Error("Payment update failed", "athlete_id", athlete.ID, "error", err)
		return nil, storeError(err)
	}
	athlete.Payments = payments
	athlete.UpdatedAt = time.Now().Unix()
	publish(s.publisher, models.EventUpdate, *athlete)

	slog.Info("Payments updated", "athlete_id", athlete.ID)
	return connect.NewResponse(&api.AthleteResponse{Athlete: api.FromAthlete(*athlete)}), nil
}

// checkUnique rejects name when another athlete of the list (other than
// exceptID) already carries it.
func (s *AthleteService) checkUnique(ctx context.Context, listID, exceptID, name string) error {
	rows, err := s.store.ListAthletes(ctx, listID)
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	if other, ok := command.FindByName(athletes(rows), name); ok && other.ID != exceptID {
		return connect.NewError(connect.CodeAlreadyExists, ErrDuplicateName)
	}
	return nil
}
