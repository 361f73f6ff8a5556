// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/campus-ballot/auth"
)

const testSecret = "test-jwt-secret"

func issueTestToken(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, "voter-1", "STU001", isAdmin, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "", http.StatusOK}, // header filled in below
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if tt.name == "valid token" {
				header = "Bearer " + issueTestToken(t, false)
			}

			var gotClaims *auth.Claims
			handler := RequireAuth(testSecret, func(w http.ResponseWriter, r *http.Request) {
				gotClaims = ClaimsFrom(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/voting/ballot", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK {
				if gotClaims == nil || gotClaims.VoterID != "voter-1" {
					t.Errorf("claims not propagated: %+v", gotClaims)
				}
			}
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	token, err := auth.IssueToken(testSecret, "voter-1", "STU001", false, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	handler := RequireAuth(testSecret, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with an expired token")
	})

	req := httptest.NewRequest("GET", "/voting/ballot", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(testSecret, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Voter token is rejected
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, false))
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("voter token: status = %d, want 403", w.Code)
	}

	// Admin token passes
	req = httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, true))
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin token: status = %d, want 200", w.Code)
	}
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusCreated, map[string]string{"hello": "world"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestParseJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"alice"}`))
	var p payload
	if err := ParseJSONBody(req, &p); err != nil {
		t.Fatalf("ParseJSONBody() error = %v", err)
	}
	if p.Name != "alice" {
		t.Errorf("Name = %q, want alice", p.Name)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	if err := ParseJSONBody(req, &p); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "10.0.0.1:12345",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
