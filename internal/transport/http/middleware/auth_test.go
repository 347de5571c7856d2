package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timekeeper/internal/domain/auth"
)

func TestAuthMiddlewareSetsActor(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", TenantID: "t1", Role: auth.RoleEditor}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		actor, ok := GetActor(r.Context())
		if !ok {
			t.Fatal("expected actor in context")
		}
		if actor.UserID != "u1" || actor.TenantID != "t1" || actor.Role != auth.RoleEditor {
			t.Fatalf("unexpected actor: %+v", actor)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareIgnoresBadTokens(t *testing.T) {
	tests := []string{"", "Basic abc", "Bearer not-a-jwt", "Bearer"}
	for _, header := range tests {
		handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetActor(r.Context()); ok {
				t.Fatalf("did not expect actor for %q", header)
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func TestRequirePermission(t *testing.T) {
	secret := "test-secret"
	viewer, _ := auth.GenerateToken(secret, auth.Claims{UserID: "u1", TenantID: "t1", Role: auth.RoleViewer}, time.Hour)
	editor, _ := auth.GenerateToken(secret, auth.Claims{UserID: "u2", TenantID: "t1", Role: auth.RoleEditor}, time.Hour)

	protected := Auth(secret)(RequirePermission(auth.PermAttendanceCorrect, auth.StaticPermissions{})(http.HandlerFunc(noContent)))
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"viewer", viewer, http.StatusForbidden},
		{"editor", editor, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/corrections", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
