package account

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/averma/campus-events/pkg/middleware"
)

// Common errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists with this email or roll number")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongOldPassword   = errors.New("old password is incorrect")
	ErrInvalidRole        = errors.New("invalid role")
)

// Service handles account business logic and session issuing
type Service struct {
	repo      *Repository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewService creates a new account service
func NewService(repo *Repository, jwtSecret []byte, jwtExpiry time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Register creates an account in the role-scoped record set named by the
// request and issues a token for it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Account, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	account := &Account{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hash),
		RollNumber: req.RollNumber,
		Phone:      req.Phone,
		Role:       req.Role,
	}
	switch req.Role {
	case RoleStudent:
		account.Branch = req.Branch
		account.Semester = req.Semester
	case RoleOrganizer:
		account.Branch = req.Branch
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrAccountExists
		}
		return nil, "", err
	}

	token, err := middleware.SignToken(s.jwtSecret, created.ID, created.Role, s.jwtExpiry)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login verifies credentials against the role-scoped store and issues a token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Account, string, error) {
	account, err := s.repo.GetByEmailRole(ctx, req.Email, req.Role)
	if err != nil {
		return nil, "", err
	}
	if account == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := middleware.SignToken(s.jwtSecret, account.ID, account.Role, s.jwtExpiry)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// GetByIDRole retrieves an account within one role-scoped record set
func (s *Service) GetByIDRole(ctx context.Context, id primitive.ObjectID, role string) (*Account, error) {
	account, err := s.repo.GetByIDRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateProfile modifies the caller's profile fields
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *UpdateProfileRequest) (*Account, error) {
	account, err := s.repo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// ChangePassword verifies the old password before storing a new hash
func (s *Service) ChangePassword(ctx context.Context, id primitive.ObjectID, req *ChangePasswordRequest) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// UpdateRole changes an account's role tag (admin action)
func (s *Service) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*Account, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	account, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Deactivate soft-deletes an account (admin action)
func (s *Service) Deactivate(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	account, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// List retrieves accounts for the admin user listing
func (s *Service) List(ctx context.Context, role, search string, page, perPage int) ([]*Account, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, role, search, perPage, offset)
}

// Resolve implements middleware.Resolver: it re-fetches the account named in
// a verified token from its role-scoped store and enforces the active flag.
func (s *Service) Resolve(ctx context.Context, id primitive.ObjectID, role string) (*middleware.Principal, error) {
	account, err := s.repo.GetByIDRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, middleware.ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, middleware.ErrAccountInactive
	}
	return &middleware.Principal{
		ID:    account.ID,
		Role:  account.Role,
		Name:  account.Name,
		Email: account.Email,
	}, nil
}
