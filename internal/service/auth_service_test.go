package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.anon.Register.CallUnary(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "coach@example.com",
		DisplayName: "Coach",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Error("expected a token")
	}
	if reg.Msg.User.DisplayName != "Coach" {
		t.Errorf("expected display name Coach, got %q", reg.Msg.User.DisplayName)
	}

	login, err := env.anon.Login.CallUnary(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "COACH@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("expected user %s, got %s", reg.Msg.User.ID, login.Msg.User.ID)
	}
}

func TestRegisterRejects(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.signUp(t, "taken@example.com")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "taken@example.com", Password: "password123"}, connect.CodeAlreadyExists},
		{"short password", &api.RegisterRequest{Email: "new@example.com", Password: "short"}, connect.CodeInvalidArgument},
		{"bad email", &api.RegisterRequest{Email: "not-an-email", Password: "password123"}, connect.CodeInvalidArgument},
		{"empty email", &api.RegisterRequest{Password: "password123"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.anon.Register.CallUnary(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestServer(t)
	env.signUp(t, "coach@example.com")

	_, err := env.anon.Login.CallUnary(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email:    "coach@example.com",
		Password: "wrong-password",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestGetCurrentUser(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")

	resp, err := client.GetCurrentUser.CallUnary(context.Background(), connect.NewRequest(&api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.Email != "coach@example.com" {
		t.Errorf("expected coach@example.com, got %q", resp.Msg.User.Email)
	}
	if resp.Msg.User.DisplayName != "coach" {
		t.Errorf("expected display name from email, got %q", resp.Msg.User.DisplayName)
	}
}

func TestProtectedWithoutToken(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.anon.GetCurrentUser.CallUnary(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.anon.ListLists.CallUnary(ctx, connect.NewRequest(&api.ListListsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}
