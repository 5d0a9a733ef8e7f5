package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/mf-tracker-be/internal/accounts"
	"github.com/hongminglow/mf-tracker-be/internal/auth"
	"github.com/hongminglow/mf-tracker-be/internal/models/dto"
	"github.com/hongminglow/mf-tracker-be/internal/saved"
	"github.com/hongminglow/mf-tracker-be/internal/storage/postgres"
)

// TestAuthIntegration exercises register/login and the saved list against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), "mf-tracker-integration")
	logger := slog.New(slog.DiscardHandler)

	mux := http.NewServeMux()
	NewAuthHandler(accounts.NewService(store), tokens, logger).Register(mux)
	NewSavedHandler(saved.NewManager(store), tokens, logger).Register(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	registered := postAuth(t, ts.URL+"/api/auth/register", map[string]string{
		"name":     "API Test",
		"email":    email,
		"password": password,
	})
	if registered.User.Email != email || registered.User.Name != "API Test" {
		t.Fatalf("register mismatch: got %+v", registered.User)
	}

	loggedIn := postAuth(t, ts.URL+"/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", registered.User.ID, loggedIn.User.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	for _, code := range []int{100, 101, 100} {
		sendSaved(t, http.MethodPost, ts.URL+"/api/saved", loggedIn.Token, map[string]int{"schemeCode": code})
	}
	got := sendSaved(t, http.MethodDelete, ts.URL+"/api/saved/100", loggedIn.Token, nil)
	if len(got.SavedSchemes) != 1 || got.SavedSchemes[0] != 101 {
		t.Fatalf("saved schemes = %v, want [101]", got.SavedSchemes)
	}

	t.Logf("created user %s (id=%d), logged in and edited saved schemes", email, registered.User.ID)
}

func postAuth(t *testing.T, url string, payload map[string]string) dto.AuthResponse {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s status = %d", url, resp.StatusCode)
	}
	var out dto.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func sendSaved(t *testing.T, method, url, token string, payload any) dto.SavedSchemesResponse {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s status = %d", method, url, resp.StatusCode)
	}
	var out dto.SavedSchemesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode saved response: %v", err)
	}
	return out
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
