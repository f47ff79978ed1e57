package service

import (
	"context"
	"errors"
	"fmt"
	"travelgram/internal/common"
	"travelgram/internal/common/security"
	"travelgram/internal/domain/model"
	"travelgram/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.FirstName == "" || req.LastName == "" || req.Username == "" || req.Email == "" ||
		req.Password == "" || req.SecurityQuestion == "" || req.SecurityAnswer == "" {
		return nil, common.Errorf("all fields are required: %w", common.ErrValidation)
	}

	// The unique indexes are the real guard; these lookups exist so the two
	// duplicate cases produce distinct messages, as the client expects.
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.Errorf("username already taken: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.Errorf("user already exists: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:               uuid.NewString(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Username:         req.Username,
		Email:            req.Email,
		HashedPassword:   hashedPassword,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
		Bio:              model.DefaultBio,
		ProfileImage:     model.DefaultProfileImage,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo might return common.ErrConflict on a lost race
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{
		Message: "User created successfully",
		Token:   token,
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Identifier == "" || req.Password == "" {
		return nil, common.Errorf("identifier and password are required: %w", common.ErrValidation)
	}

	user, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("no user found with the given username or email: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.Errorf("incorrect password: %w", common.ErrInvalidCredentials)
	}

	token, err := security.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{
		Message: "Login successful",
		Token:   token,
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	}, nil
}

// CheckUsernameAvailable is a pure existence lookup with no side effects.
func (s *AuthService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, common.Errorf("username is required: %w", common.ErrValidation)
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return !exists, nil
}

// findByIdentifier resolves a login identifier that may be either an email
// address or a username. Email is tried first, matching the reference lookup.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, identifier)
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, identifier)
	}
	return user, err
}
