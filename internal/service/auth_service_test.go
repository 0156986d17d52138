package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:          "  Alice@Example.com ",
		Name:           "Alice",
		Password:       testPassword,
		ProfilePicture: "https://example.com/alice.png",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Error("expected token")
	}
	if reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", reg.Msg.User.Email)
	}
	if reg.Msg.User.ProfilePicture != "https://example.com/alice.png" {
		t.Errorf("profile picture = %q", reg.Msg.User.ProfilePicture)
	}

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: testPassword,
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("login user = %s, want %s", login.Msg.User.ID, reg.Msg.User.ID)
	}
	if login.Msg.Token == "" {
		t.Error("expected token")
	}
}

func TestRegister_Errors(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "Alice")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "ALICE@example.com", Name: "Other", Password: testPassword}, connect.CodeAlreadyExists},
		{"weak password", &api.RegisterRequest{Email: "bob@example.com", Name: "Bob", Password: "short"}, connect.CodeInvalidArgument},
		{"invalid email", &api.RegisterRequest{Email: "not-an-email", Name: "Bob", Password: testPassword}, connect.CodeInvalidArgument},
		{"missing name", &api.RegisterRequest{Email: "bob@example.com", Name: "  ", Password: testPassword}, connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), connect.NewRequest(tt.req))
			wantCode(t, err, tt.code)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "Alice")

	for _, req := range []*api.LoginRequest{
		{Email: "alice@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: testPassword},
	} {
		_, err := env.auth.Login(context.Background(), connect.NewRequest(req))
		wantCode(t, err, connect.CodeUnauthenticated)
	}
}

func TestProfile(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")
	env.register(t, "Bob")

	_, err := env.auth.GetProfile(ctx, connect.NewRequest(&api.GetProfileRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)

	profile, err := env.auth.GetProfile(ctx, authed(alice, &api.GetProfileRequest{}))
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Msg.User.ID != alice.ID || profile.Msg.User.Name != "Alice" {
		t.Errorf("profile = %+v", profile.Msg.User)
	}

	name, email, password := "Alicia", "Alicia@Example.com", "new-password-1"
	updated, err := env.auth.UpdateProfile(ctx, authed(alice, &api.UpdateProfileRequest{
		Name:     &name,
		Email:    &email,
		Password: &password,
	}))
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Msg.User.Name != "Alicia" || updated.Msg.User.Email != "alicia@example.com" {
		t.Errorf("updated profile = %+v", updated.Msg.User)
	}

	if _, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alicia@example.com", Password: password})); err != nil {
		t.Errorf("Login with new credentials failed: %v", err)
	}
	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alicia@example.com", Password: testPassword}))
	wantCode(t, err, connect.CodeUnauthenticated)

	taken := "bob@example.com"
	_, err = env.auth.UpdateProfile(ctx, authed(alice, &api.UpdateProfileRequest{Email: &taken}))
	wantCode(t, err, connect.CodeAlreadyExists)

	empty := " "
	_, err = env.auth.UpdateProfile(ctx, authed(alice, &api.UpdateProfileRequest{Name: &empty}))
	wantCode(t, err, connect.CodeInvalidArgument)

	weak := "short"
	_, err = env.auth.UpdateProfile(ctx, authed(alice, &api.UpdateProfileRequest{Password: &weak}))
	wantCode(t, err, connect.CodeInvalidArgument)
}
