package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// whoAmI reports the caller identity seen by the handler through the profile RPCs.
type whoAmI struct {
	apiconnect.UnimplementedAuthServiceHandler
}

func (whoAmI) GetProfile(ctx context.Context, _ *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	return connect.NewResponse(&api.GetProfileResponse{
		User: &api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)},
	}), nil
}

func (whoAmI) Login(ctx context.Context, _ *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return connect.NewResponse(&api.LoginResponse{User: &api.User{ID: GetUserID(ctx)}}), nil
}

func newClient(t *testing.T, interceptors ...connect.Interceptor) apiconnect.AuthServiceClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(whoAmI{}, connect.WithInterceptors(interceptors...)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return apiconnect.NewAuthServiceClient(server.Client(), server.URL)
}

func withToken[T any](msg *T, header string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	client := newClient(t, RequireAuth(jwtManager, apiconnect.AuthServiceLoginProcedure))
	ctx := context.Background()

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{"valid token", "Bearer " + token, 0},
		{"lower-case scheme", "bearer " + token, 0},
		{"missing header", "", connect.CodeUnauthenticated},
		{"wrong scheme", "Basic " + token, connect.CodeUnauthenticated},
		{"bad token", "Bearer nope", connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.GetProfile(ctx, withToken(&api.GetProfileRequest{}, tt.header))
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("GetProfile error = %v, want %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetProfile failed: %v", err)
			}
			if resp.Msg.User.ID != "user-1" || resp.Msg.User.Email != "alice@example.com" {
				t.Errorf("identity = %+v", resp.Msg.User)
			}
		})
	}

	t.Run("public procedure skips auth", func(t *testing.T) {
		resp, err := client.Login(ctx, withToken(&api.LoginRequest{}, ""))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.User.ID != "" {
			t.Errorf("unexpected identity %q on public procedure", resp.Msg.User.ID)
		}
	})
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := newClient(t, metrics.Interceptor())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.GetProfile(ctx, connect.NewRequest(&api.GetProfileRequest{})); err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
	}
	if _, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{})); err == nil {
		t.Fatal("Register on unimplemented handler succeeded")
	}

	if got := testutil.ToFloat64(metrics.requests.WithLabelValues(apiconnect.AuthServiceGetProfileProcedure, "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.requests.WithLabelValues(apiconnect.AuthServiceRegisterProcedure, "unimplemented")); got != 1 {
		t.Errorf("unimplemented count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(metrics.duration); n != 2 {
		t.Errorf("histogram series = %d, want 2", n)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	client := newClient(t, LoggingInterceptor(logger))
	ctx := context.Background()

	if _, err := client.GetProfile(ctx, connect.NewRequest(&api.GetProfileRequest{})); err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{}))
	if err == nil {
		t.Fatal("Register on unimplemented handler succeeded")
	}

	out := buf.String()
	if !strings.Contains(out, "level=INFO msg=\"RPC ok\"") || !strings.Contains(out, apiconnect.AuthServiceGetProfileProcedure) {
		t.Errorf("missing success line:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN msg=\"RPC error\"") || !strings.Contains(out, "code=unimplemented") {
		t.Errorf("missing warning line:\n%s", out)
	}
}

func TestIsServerFault(t *testing.T) {
	for _, code := range []connect.Code{connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable} {
		if !isServerFault(code) {
			t.Errorf("isServerFault(%v) = false", code)
		}
	}
	for _, code := range []connect.Code{connect.CodeNotFound, connect.CodeInvalidArgument, connect.CodePermissionDenied} {
		if isServerFault(code) {
			t.Errorf("isServerFault(%v) = true", code)
		}
	}
}
