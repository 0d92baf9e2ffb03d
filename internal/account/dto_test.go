package account

import (
	"strings"
	"testing"
)

func validStudentRequest() *RegisterRequest {
	return &RegisterRequest{
		Name:       "Asha Verma",
		Email:      "asha@college.edu",
		Password:   "secret123",
		RollNumber: "CS2024001",
		Phone:      "9876543210",
		Role:       RoleStudent,
		Branch:     "CSE",
		Semester:   4,
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		wantErr bool
	}{
		{"valid student", func(r *RegisterRequest) {}, false},
		{"empty role defaults to student", func(r *RegisterRequest) { r.Role = "" }, false},
		{"unknown role", func(r *RegisterRequest) { r.Role = "superuser" }, true},
		{"missing name", func(r *RegisterRequest) { r.Name = "" }, true},
		{"name too long", func(r *RegisterRequest) { r.Name = strings.Repeat("a", 51) }, true},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, true},
		{"short password", func(r *RegisterRequest) { r.Password = "abc" }, true},
		{"missing roll number", func(r *RegisterRequest) { r.RollNumber = "" }, true},
		{"bad phone", func(r *RegisterRequest) { r.Phone = "12345" }, true},
		{"phone optional", func(r *RegisterRequest) { r.Phone = "" }, false},
		{"student missing branch", func(r *RegisterRequest) { r.Branch = "" }, true},
		{"student bad semester", func(r *RegisterRequest) { r.Semester = 9 }, true},
		{"student zero semester", func(r *RegisterRequest) { r.Semester = 0 }, true},
		{"organizer needs no semester", func(r *RegisterRequest) {
			r.Role = RoleOrganizer
			r.Semester = 0
		}, false},
		{"organizer still needs branch", func(r *RegisterRequest) {
			r.Role = RoleOrganizer
			r.Branch = ""
		}, true},
		{"admin needs neither", func(r *RegisterRequest) {
			r.Role = RoleAdmin
			r.Branch = ""
			r.Semester = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validStudentRequest()
			tt.mutate(req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterRequestDefaultsRole(t *testing.T) {
	req := validStudentRequest()
	req.Role = ""
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.Role != RoleStudent {
		t.Errorf("role = %q, want %q", req.Role, RoleStudent)
	}
}

func TestLoginRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr bool
	}{
		{"valid", LoginRequest{Email: "a@b.edu", Password: "secret", Role: RoleStudent}, false},
		{"missing email", LoginRequest{Password: "secret", Role: RoleStudent}, true},
		{"missing password", LoginRequest{Email: "a@b.edu", Role: RoleStudent}, true},
		{"missing role", LoginRequest{Email: "a@b.edu", Password: "secret"}, true},
		{"unknown role", LoginRequest{Email: "a@b.edu", Password: "secret", Role: "root"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
