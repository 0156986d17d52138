package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		CORSOrigin:    "https://app.example.com",
		JWTSecret:     "test-secret-0123456789",
		TokenDuration: time.Hour,
	}
	server := httptest.NewServer(newHandler(cfg, store, events.NopPublisher{}))
	t.Cleanup(server.Close)
	return server
}

func TestHealthz(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupServer(t)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+apiconnect.LedgerServiceSettleUpProcedure, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("allow headers = %q, want Authorization", got)
	}
}

func TestAuthRequiredExceptRegisterAndLogin(t *testing.T) {
	server := setupServer(t)
	ctx := context.Background()

	groups := apiconnect.NewGroupServiceClient(server.Client(), server.URL)
	_, err := groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("ListGroups without token: err = %v, want Unauthenticated", err)
	}

	authClient := apiconnect.NewAuthServiceClient(server.Client(), server.URL)
	reg, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := connect.NewRequest(&api.ListGroupsRequest{})
	req.Header().Set("Authorization", "Bearer "+reg.Msg.Token)
	if _, err := groups.ListGroups(ctx, req); err != nil {
		t.Errorf("ListGroups with token failed: %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupServer(t)

	groups := apiconnect.NewGroupServiceClient(server.Client(), server.URL)
	_, _ = groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "splitledger_rpc_requests_total") {
		t.Error("metrics output missing splitledger_rpc_requests_total")
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output missing Go runtime collector")
	}
}
