package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/pkg/auth"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

func newRegisterTestServer(svc Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func decodeError(t *testing.T, body []byte) (string, int) {
	t.Helper()

	var got struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got.Error, got.Code
}

func TestRegisterHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	handler := newRegisterTestServer(&MockService{})

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	msg, code := decodeError(t, rec.Body.Bytes())
	if msg != "invalid JSON" {
		t.Fatalf("expected error %q, got %q", "invalid JSON", msg)
	}
	if code != http.StatusBadRequest {
		t.Fatalf("expected code %d, got %d", http.StatusBadRequest, code)
	}
}

func TestRegisterHTTP_MissingTelegramID_ReturnsBadRequest(t *testing.T) {
	handler := newRegisterTestServer(&MockService{})

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRegisterHTTP_NewUser_ReturnsCreated(t *testing.T) {
	svc := &MockService{
		RegisterFunc: func(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error) {
			return &user.RegisterResponse{
				UserID:       42,
				ReferralCode: "CODE4242",
				APIKey:       "key-42",
				Created:      true,
			}, nil
		},
	}
	handler := newRegisterTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"telegram_id":1001,"username":"alice"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var resp user.RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp.UserID != 42 || !resp.Created {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRegisterHTTP_ExistingUser_ReturnsOK(t *testing.T) {
	svc := &MockService{
		RegisterFunc: func(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error) {
			return &user.RegisterResponse{UserID: 42, ReferralCode: "CODE4242", APIKey: "key-42"}, nil
		},
	}
	handler := newRegisterTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"telegram_id":1001}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestProfileHTTP_Me(t *testing.T) {
	r := chi.NewRouter()
	u := &user.User{ID: 7, TelegramID: 1001, Username: "alice", ReferralCode: "CODE0007", Balance: 75}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), u)))
		})
	})
	RegisterUserRoutes(r, &MockService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp.Balance != 75 || resp.ReferralCode != "CODE0007" {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestProfileHTTP_LinkWallet(t *testing.T) {
	addr := "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	svc := &MockService{
		LinkWalletFunc: func(ctx context.Context, userID int64, address string) (*user.User, error) {
			return &user.User{ID: userID, WalletAddress: addr}, nil
		},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), &user.User{ID: 7})))
		})
	})
	RegisterUserRoutes(r, svc, zap.NewNop())

	body := bytes.NewBufferString(`{"address":"` + addr + `"}`)
	req := httptest.NewRequest(http.MethodPut, "/users/me/wallet", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp.WalletAddress != addr {
		t.Fatalf("expected wallet %s, got %s", addr, resp.WalletAddress)
	}
}

func TestProfileHTTP_Unauthenticated(t *testing.T) {
	r := chi.NewRouter()
	RegisterUserRoutes(r, &MockService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
