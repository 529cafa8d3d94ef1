package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/dispatch"
	"github.com/mmynk/odemetakip/internal/metrics"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

// CommandService implements the Connect CommandService: free-text payment
// commands typed into the command box.
type CommandService struct {
	store         storage.Store
	publisher     Publisher
	dispatchLimit int
}

// NewCommandService creates a new CommandService. dispatchLimit bounds the
// payment writes in flight for one command; zero uses dispatch.DefaultLimit.
func NewCommandService(store storage.Store, publisher Publisher, dispatchLimit int) *CommandService {
	return &CommandService{store: store, publisher: publisher, dispatchLimit: dispatchLimit}
}

// Interpret reads a command without touching any list.
func (s *CommandService) Interpret(ctx context.Context, req *connect.Request[api.InterpretRequest]) (*connect.Response[api.InterpretResponse], error) {
	slog.Info("Interpret request received", "text", req.Msg.Text)

	intent := command.Interpret(req.Msg.Text)
	resp := &api.InterpretResponse{Intent: api.FromIntent(intent)}

	err := intent.Err()
	if err == nil && len(intent.Months) == 0 {
		err = command.ErrNoMonth
	}
	if err != nil {
		resp.Message = command.Message(err)
	}
	return connect.NewResponse(resp), nil
}

// Apply interprets a command and writes the result to every matching
// athlete of the list visible under the search text. Rejected commands are
// not RPC errors: the outcome and message say what happened.
func (s *CommandService) Apply(ctx context.Context, req *connect.Request[api.ApplyCommandRequest]) (*connect.Response[api.ApplyCommandResponse], error) {
	slog.Info("Apply request received",
		"list_id", req.Msg.ListID,
		"text", req.Msg.Text,
		"search", req.Msg.Search,
		"dry_run", req.Msg.DryRun,
	)

	if _, err := ownedList(ctx, s.store, req.Msg.ListID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListAthletes(ctx, req.Msg.ListID)
	if err != nil {
		slog.Error("Apply failed", "list_id", req.Msg.ListID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	scope := command.Filter(athletes(rows), req.Msg.Search)

	intent := command.Interpret(req.Msg.Text)
	resp := &api.ApplyCommandResponse{Intent: api.FromIntent(intent), Athletes: []api.Athlete{}}

	updates, err := command.Plan(intent, scope)
	if err != nil {
		resp.Outcome = rejectedOutcome(err)
		resp.Message = command.Message(err)
		metrics.Commands.WithLabelValues(resp.Outcome).Inc()
		slog.Info("Command rejected", "outcome", resp.Outcome, "error", err)
		return connect.NewResponse(resp), nil
	}

	byID := make(map[string]models.Athlete, len(scope))
	for _, a := range scope {
		byID[a.ID] = a
	}
	withPayments := func(u command.Update) models.Athlete {
		a := byID[u.AthleteID]
		a.Payments = u.Payments
		return a
	}

	if req.Msg.DryRun {
		for _, u := range updates {
			resp.Athletes = append(resp.Athletes, api.FromAthlete(withPayments(u)))
		}
		resp.Outcome = api.OutcomePreview
		resp.Message = command.Summary(intent, len(updates))
		metrics.Commands.WithLabelValues(resp.Outcome).Inc()
		return connect.NewResponse(resp), nil
	}

	result := dispatch.Run(ctx, s.store, updates, s.dispatchLimit)

	now := time.Now().Unix()
	for _, u := range result.Applied {
		a := withPayments(u)
		a.UpdatedAt = now
		publish(s.publisher, models.EventUpdate, a)
		resp.Athletes = append(resp.Athletes, api.FromAthlete(a))
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, f.AthleteID)
	}

	switch {
	case len(result.Applied) == 0:
		resp.Outcome = api.OutcomeFailed
		resp.Message = command.MsgFailed
	case len(result.Failed) > 0:
		resp.Outcome = api.OutcomeApplied
		resp.Message = fmt.Sprintf("%s (%d sporcu güncellenemedi)", command.Summary(intent, len(result.Applied)), len(result.Failed))
	default:
		resp.Outcome = api.OutcomeApplied
		resp.Message = command.Summary(intent, len(result.Applied))
	}
	metrics.Commands.WithLabelValues(resp.Outcome).Inc()

	slog.Info("Command applied",
		"list_id", req.Msg.ListID,
		"applied", len(result.Applied),
		"failed", len(result.Failed),
		"months", len(intent.Months),
	)
	return connect.NewResponse(resp), nil
}

func rejectedOutcome(err error) string {
	switch {
	case errors.Is(err, command.ErrNoActionKeyword):
		return api.OutcomeNoAction
	case errors.Is(err, command.ErrNoMonth):
		return api.OutcomeNoMonth
	case errors.Is(err, command.ErrNoMatch):
		return api.OutcomeNoMatch
	default:
		return api.OutcomeFailed
	}
}
