package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeResolver serves a single account, or a fixed error
type fakeResolver struct {
	principal *Principal
	err       error
}

func (f *fakeResolver) Resolve(_ context.Context, id primitive.ObjectID, role string) (*Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.principal == nil || f.principal.ID != id || f.principal.Role != role {
		return nil, ErrAccountNotFound
	}
	return f.principal, nil
}

func okHandler(t *testing.T, wantID primitive.ObjectID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			t.Error("principal missing from context")
		} else if principal.ID != wantID {
			t.Errorf("principal id = %s, want %s", principal.ID.Hex(), wantID.Hex())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorValidToken(t *testing.T) {
	id := primitive.NewObjectID()
	resolver := &fakeResolver{principal: &Principal{ID: id, Role: "student", Name: "Asha"}}

	tokenString, err := SignToken(testSecret, id, "student", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	Authenticator(testSecret, resolver)(okHandler(t, id)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthenticatorRejections(t *testing.T) {
	id := primitive.NewObjectID()
	valid, err := SignToken(testSecret, id, "student", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	expired, err := SignToken(testSecret, id, "student", -time.Minute)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		resolver Resolver
		want     int
	}{
		{"missing header", "", &fakeResolver{}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", &fakeResolver{}, http.StatusUnauthorized},
		{"malformed token", "Bearer not.a.token", &fakeResolver{}, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, &fakeResolver{}, http.StatusUnauthorized},
		{"account not found", "Bearer " + valid, &fakeResolver{err: ErrAccountNotFound}, http.StatusUnauthorized},
		{"account deactivated", "Bearer " + valid, &fakeResolver{err: ErrAccountInactive}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached despite rejection")
			})
			Authenticator(testSecret, tt.resolver)(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"allowed role", "admin", []string{"admin"}, http.StatusOK},
		{"one of several", "organizer", []string{"organizer", "admin"}, http.StatusOK},
		{"wrong role", "student", []string{"admin"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := &Principal{ID: primitive.NewObjectID(), Role: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), PrincipalKey, principal))
			rec := httptest.NewRecorder()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			RequireRole(tt.allowed...)(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a principal")
	})
	RequireRole("admin")(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
