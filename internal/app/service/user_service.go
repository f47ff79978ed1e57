package service

import (
	"context"
	"database/sql"
	"log"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"
	"travelgram/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	db       *sql.DB       // For transactions
	rdb      *redis.Client // Feed cache invalidation on cascading deletes
	baseURL  string
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	db *sql.DB,
	rdb *redis.Client,
	baseURL string,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		db:       db,
		rdb:      rdb,
		baseURL:  baseURL,
	}
}

func (s *UserService) GetAll(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) PostsOf(ctx context.Context, userID string) ([]*model.Post, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByUser(ctx, userID)
}

func (s *UserService) Favorites(ctx context.Context, userID string) ([]*model.Post, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListFavoritedBy(ctx, userID)
}

// ToggleFavorite flips the (user, post) favorite reference and returns the
// resulting favorite id set. Toggling twice restores the original state.
// The read-then-write pair is last-writer-wins; an acceptable race here.
func (s *UserService) ToggleFavorite(ctx context.Context, userID, postID string) ([]string, error) {
	if userID == "" || postID == "" {
		return nil, common.Errorf("userId and postId are required: %w", common.ErrValidation)
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	isFavorite, err := s.userRepo.IsFavorite(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if isFavorite {
		err = s.userRepo.RemoveFavorite(ctx, userID, postID)
	} else {
		err = s.userRepo.AddFavorite(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	return s.userRepo.FavoriteIDs(ctx, userID)
}

type UpdateProfileRequest struct {
	FirstName string
	LastName  string
	Username  string
	Bio       string
	ImagePath string // stored upload filename, optional
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.ImagePath != "" {
		user.ProfileImage = s.baseURL + "/uploads/" + req.ImagePath
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetAdmin(ctx context.Context, userID string, isAdmin bool) (*model.User, error) {
	if err := s.userRepo.SetAdmin(ctx, userID, isAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, userID)
}

// Delete removes the user and every post referencing them as one transaction,
// so no post can be left pointing at a deleted owner. A missing user aborts
// before any deletion happens.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.DeleteTx(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteByUserTx(ctx, tx, userID); err != nil {
		return common.Errorf("failed to delete user's posts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, postsCacheKey).Err(); err != nil {
			log.Printf("posts cache invalidation failed: %v", err)
		}
	}
	return nil
}
