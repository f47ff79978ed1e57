package service

import (
	"context"
	"errors"
	"fmt"
	"travelgram/internal/common"
	"travelgram/internal/common/security"
	"travelgram/internal/domain/model"
	"travelgram/internal/domain/repository"
)

// RecoveryService implements the three-step password recovery flow:
//
//	RequestReset -> VerifyAnswer -> CompleteReset
//
// The server holds no state between steps; the client carries the user id
// obtained from RequestReset. CompleteReset does not re-check the security
// answer, so step ordering is enforced client side.
type RecoveryService struct {
	userRepo repository.UserRepository
}

func NewRecoveryService(userRepo repository.UserRepository) *RecoveryService {
	return &RecoveryService{userRepo: userRepo}
}

type ResetChallenge struct {
	SecurityQuestion string `json:"securityQuestion"`
	UserID           string `json:"userId"`
}

// RequestReset reveals the stored security question for the account matching
// the identifier (username or email).
func (s *RecoveryService) RequestReset(ctx context.Context, identifier string) (*ResetChallenge, error) {
	if identifier == "" {
		return nil, common.Errorf("username or email is required: %w", common.ErrValidation)
	}
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &ResetChallenge{SecurityQuestion: user.SecurityQuestion, UserID: user.ID}, nil
}

// VerifyAnswer compares the supplied answer with the stored one. Answers are
// stored and compared as plain strings; the match must be exact.
func (s *RecoveryService) VerifyAnswer(ctx context.Context, identifier, answer string) (bool, error) {
	if identifier == "" {
		return false, common.Errorf("username or email is required: %w", common.ErrValidation)
	}
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, common.Errorf("invalid username or email: %w", common.ErrNotFound)
		}
		return false, fmt.Errorf("failed to find user: %w", err)
	}
	return user.SecurityAnswer == answer, nil
}

// CompleteReset overwrites the password for the given user id. No session
// token is issued; the user must log in again with the new password.
func (s *RecoveryService) CompleteReset(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return common.Errorf("new password is required: %w", common.ErrValidation)
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.Errorf("user not found: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// AuthenticatedReset is the parallel flow for logged-in users: the current
// password stands in for the security answer.
func (s *RecoveryService) AuthenticatedReset(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return common.Errorf("old and new passwords are required: %w", common.ErrValidation)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.Errorf("user not found: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(oldPassword, user.HashedPassword) {
		return common.Errorf("incorrect old password: %w", common.ErrInvalidCredentials)
	}
	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *RecoveryService) findByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, identifier)
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, identifier)
	}
	return user, err
}
