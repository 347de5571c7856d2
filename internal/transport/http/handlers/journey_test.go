package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"timekeeper/internal/app/server"
	"timekeeper/internal/domain/attendance"
	"timekeeper/internal/domain/auth"
	"timekeeper/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func TestAttendanceCorrectionJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		MigrationsDir:      "../../../../migrations",
		RunMigrations:      true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	tenantID := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	admin := issueToken(t, cfg.JWTSecret, tenantID, auth.RoleAdmin)
	viewer := issueToken(t, cfg.JWTSecret, tenantID, auth.RoleViewer)

	postJSON(t, client, ts.URL+"/api/v1/attendance/policies", admin, map[string]any{
		"effectiveDate":     "2025-01-01",
		"standardStartTime": "09:00",
		"standardEndTime":   "18:00",
	})

	postJSON(t, client, ts.URL+"/api/v1/attendance/punches", admin, map[string]any{
		"punches": []map[string]any{
			{"employeeId": "e1", "employeeName": "Ana", "date": "2025-03-03", "clockIn": "08:55", "clockOut": "18:05"},
			{"employeeId": "e1", "employeeName": "Ana", "date": "2025-03-04", "clockIn": "09:00", "clockOut": "21:00"},
		},
	})

	resp := postJSON(t, client, ts.URL+"/api/v1/attendance/corrections", admin, map[string]any{
		"from": "2025-03-03",
		"to":   "2025-03-04",
	})
	var report attendance.CorrectionReport
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("failed to decode correction report: %v", err)
	}
	if report.Stats.Records != 2 {
		t.Fatalf("expected 2 corrected records, got %+v", report.Stats)
	}

	resp = getJSON(t, client, ts.URL+"/api/v1/attendance/records?from=2025-03-03&to=2025-03-04", viewer)
	var records []attendance.Record
	if err := json.Unmarshal(resp.Data, &records); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	recordID := attendance.RecordID("e1", "2025-03-04")
	patchJSON(t, client, ts.URL+"/api/v1/attendance/records/"+recordID, admin, map[string]any{
		"note": "approved late stay",
	})

	resp = getJSON(t, client, ts.URL+"/api/v1/attendance/records/"+recordID+"/changes", viewer)
	var history []map[string]any
	if err := json.Unmarshal(resp.Data, &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("expected change history for edited record")
	}

	resp = getJSON(t, client, ts.URL+"/api/v1/attendance/summaries?period=week&from=2025-03-03&to=2025-03-04", viewer)
	var summaries []attendance.Summary
	if err := json.Unmarshal(resp.Data, &summaries); err != nil {
		t.Fatalf("failed to decode summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one weekly summary, got %d", len(summaries))
	}

	getJSON(t, client, ts.URL+"/metrics", admin)
}

func TestViewerCannotRunCorrections(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	viewer := issueToken(t, cfg.JWTSecret, "journey-viewer", auth.RoleViewer)
	raw, _ := json.Marshal(map[string]any{"from": "2025-03-03", "to": "2025-03-04"})
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/attendance/corrections", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+viewer)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func issueToken(t *testing.T, secret, tenantID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "journey-" + role, TenantID: tenantID, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func patchJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPatch, url, token, body)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}
