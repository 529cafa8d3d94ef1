package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/auth"
	"github.com/mmynk/odemetakip/internal/middleware"
	"github.com/mmynk/odemetakip/internal/realtime"
	"github.com/mmynk/odemetakip/internal/storage/sqlite"
)

// testEnv is a running server backed by a fresh database.
type testEnv struct {
	url    string
	store  *sqlite.SQLiteStore
	broker *realtime.Broker
	anon   *api.Client
}

// setupTestServer mounts every service behind the auth and logging
// interceptors, as the server binary does.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	broker := realtime.NewBroker(realtime.DefaultBuffer)

	opts := []connect.HandlerOption{
		connect.WithInterceptors(
			middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...),
			middleware.LoggingInterceptor{},
		),
	}

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger), opts...))
	mux.Handle(NewListServiceHandler(NewListService(store, broker), opts...))
	mux.Handle(NewAthleteServiceHandler(NewAthleteService(store, broker), opts...))
	mux.Handle(NewCommandServiceHandler(NewCommandService(store, broker, 4), opts...))
	mux.Handle(NewRosterServiceHandler(NewRosterService(store, broker), opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		url:    server.URL,
		store:  store,
		broker: broker,
		anon:   api.NewClient(http.DefaultClient, server.URL),
	}
}

// signUp registers email and returns a client carrying its token.
func (e *testEnv) signUp(t *testing.T, email string) *api.Client {
	t.Helper()
	resp, err := e.anon.Register.CallUnary(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return api.NewClient(http.DefaultClient, e.url, connect.WithInterceptors(middleware.ClientToken(resp.Msg.Token)))
}

// defaultList returns the ID of the caller's first list.
func defaultList(t *testing.T, c *api.Client) string {
	t.Helper()
	resp, err := c.ListLists.CallUnary(context.Background(), connect.NewRequest(&api.ListListsRequest{}))
	if err != nil {
		t.Fatalf("ListLists failed: %v", err)
	}
	if len(resp.Msg.Lists) == 0 {
		t.Fatal("expected at least one list")
	}
	return resp.Msg.Lists[0].ID
}

func addAthlete(t *testing.T, c *api.Client, listID, name string) api.Athlete {
	t.Helper()
	resp, err := c.AddAthlete.CallUnary(context.Background(), connect.NewRequest(&api.AddAthleteRequest{ListID: listID, Name: name}))
	if err != nil {
		t.Fatalf("AddAthlete(%q) failed: %v", name, err)
	}
	return resp.Msg.Athlete
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%v)", want, connectErr.Code(), err)
	}
}
