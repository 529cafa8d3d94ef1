package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

// ListService implements the Connect ListService.
type ListService struct {
	store     storage.Store
	publisher Publisher
}

// NewListService creates a new ListService with the given storage backend.
// Deleting a list publishes a delete event for each of its athletes.
func NewListService(store storage.Store, publisher Publisher) *ListService {
	return &ListService{store: store, publisher: publisher}
}

// ListLists returns the caller's lists, oldest first. A user with no list
// gets a default one so the table always has somewhere to live.
func (s *ListService) ListLists(ctx context.Context, req *connect.Request[api.ListListsRequest]) (*connect.Response[api.ListListsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListLists request received", "user_id", userID)

	lists, err := s.store.ListLists(ctx, userID)
	if err != nil {
		slog.Error("ListLists failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if len(lists) == 0 {
		list := &models.List{OwnerID: userID, Name: models.DefaultListName}
		if err := s.store.CreateList(ctx, list); err != nil {
			slog.Error("Failed to create default list", "user_id", userID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		slog.Info("Default list created", "user_id", userID, "list_id", list.ID)
		lists = append(lists, list)
	}

	resp := &api.ListListsResponse{Lists: make([]api.List, len(lists))}
	for i, l := range lists {
		resp.Lists[i] = api.FromList(l)
	}
	return connect.NewResponse(resp), nil
}

// CreateList creates a new, empty list.
func (s *ListService) CreateList(ctx context.Context, req *connect.Request[api.CreateListRequest]) (*connect.Response[api.ListResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateList request received", "user_id", userID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyName)
	}

	list := &models.List{OwnerID: userID, Name: name}
	if err := s.store.CreateList(ctx, list); err != nil {
		slog.Error("CreateList failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("List created", "list_id", list.ID)
	return connect.NewResponse(&api.ListResponse{List: api.FromList(list)}), nil
}

// RenameList changes the display name of a list.
func (s *ListService) RenameList(ctx context.Context, req *connect.Request[api.RenameListRequest]) (*connect.Response[api.ListResponse], error) {
	slog.Info("RenameList request received", "list_id", req.Msg.ListID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyName)
	}

	list, err := ownedList(ctx, s.store, req.Msg.ListID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RenameList(ctx, list.ID, name); err != nil {
		slog.Error("RenameList failed", "list_id", list.ID, "error", err)
		return nil, storeError(err)
	}
	list.Name = name

	slog.Info("List renamed", "list_id", list.ID)
	return connect.NewResponse(&api.ListResponse{List: api.FromList(list)}), nil
}

// DeleteList removes a list and its athletes. The caller's last list cannot
// be deleted.
func (s *ListService) DeleteList(ctx context.Context, req *connect.Request[api.DeleteListRequest]) (*connect.Response[api.DeleteListResponse], error) {
	slog.Info("DeleteList request received", "list_id", req.Msg.ListID)

	list, err := ownedList(ctx, s.store, req.Msg.ListID)
	if err != nil {
		return nil, err
	}

	lists, err := s.store.ListLists(ctx, list.OwnerID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if len(lists) <= 1 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrLastList)
	}

	rows, err := s.store.ListAthletes(ctx, list.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if err := s.store.DeleteList(ctx, list.ID); err != nil {
		slog.Error("DeleteList failed", "list_id", list.ID, "error", err)
		return nil, storeError(err)
	}
	// Athletes go with the list; subscribers still need to drop them.
	for _, a := range rows {
		publish(s.publisher, models.EventDelete, models.Athlete{ID: a.ID, ListID: list.ID})
	}

	slog.Info("List deleted", "list_id", list.ID, "athletes", len(rows))
	return connect.NewResponse(&api.DeleteListResponse{}), nil
}
