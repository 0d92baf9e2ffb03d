package account

import (
	"errors"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RollNumber string `json:"roll_number"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Semester   int    `json:"semester,omitempty"`
}

// Validate checks required fields and role-specific constraints
func (r *RegisterRequest) Validate() error {
	if r.Role == "" {
		r.Role = RoleStudent
	}
	if !ValidRole(r.Role) {
		return errors.New("invalid role")
	}
	if r.Name == "" || len(r.Name) > 50 {
		return errors.New("please provide a name of at most 50 characters")
	}
	if !emailPattern.MatchString(r.Email) {
		return errors.New("please provide a valid email")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if r.RollNumber == "" {
		return errors.New("please provide a roll number")
	}
	if r.Phone != "" && !phonePattern.MatchString(r.Phone) {
		return errors.New("please provide a valid phone number")
	}
	if r.Role == RoleStudent || r.Role == RoleOrganizer {
		if !ValidBranch(r.Branch) {
			return errors.New("please provide a valid branch")
		}
	}
	if r.Role == RoleStudent {
		if r.Semester < 1 || r.Semester > 8 {
			return errors.New("semester must be between 1 and 8")
		}
	}
	return nil
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate checks the login credentials are present
func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("please provide email and password")
	}
	if r.Role == "" {
		return errors.New("please select a role")
	}
	if !ValidRole(r.Role) {
		return errors.New("invalid role")
	}
	return nil
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Validate checks optional field constraints
func (r *UpdateProfileRequest) Validate() error {
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > 50) {
		return errors.New("name must be between 1 and 50 characters")
	}
	if r.Phone != nil && *r.Phone != "" && !phonePattern.MatchString(*r.Phone) {
		return errors.New("please provide a valid phone number")
	}
	if r.Bio != nil && len(*r.Bio) > 500 {
		return errors.New("bio cannot exceed 500 characters")
	}
	return nil
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks the new password meets the minimum length
func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return errors.New("please provide the old password")
	}
	if len(r.NewPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// AccountResponse represents the response for a single account
type AccountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	RollNumber   string `json:"roll_number"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	Branch       string `json:"branch,omitempty"`
	Semester     int    `json:"semester,omitempty"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// AuthResponse bundles a signed token with the account it identifies
type AuthResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// ToResponse converts an Account model to an AccountResponse DTO
func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:           a.ID.Hex(),
		Name:         a.Name,
		Email:        a.Email,
		RollNumber:   a.RollNumber,
		Phone:        a.Phone,
		Role:         a.Role,
		Branch:       a.Branch,
		Semester:     a.Semester,
		Bio:          a.Bio,
		ProfileImage: a.ProfileImage,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
