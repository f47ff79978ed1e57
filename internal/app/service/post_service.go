package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"
	"travelgram/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const postsCacheKey = "posts:all"

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	db       *sql.DB       // For transactions
	rdb      *redis.Client // Optional feed cache; nil disables caching
	cacheTTL time.Duration
	baseURL  string // Used to build absolute image URLs
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	db *sql.DB,
	rdb *redis.Client,
	cacheTTL time.Duration,
	baseURL string,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		db:       db,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		baseURL:  baseURL,
	}
}

type CreatePostRequest struct {
	Location    string
	SubLocation string
	Description string
	LocationURL string
	Date        string
	ImagePaths  []string // stored upload filenames, 1..3
}

type UpdatePostRequest struct {
	Location    string
	SubLocation string
	Description string
	LocationURL string
	ImagePath   string // optional replacement for the primary image
}

// Create inserts the post and updates the owning user inside one transaction.
// Both writes commit together; any failure aborts the whole thing and no
// partial state becomes visible.
func (s *PostService) Create(ctx context.Context, userID string, req CreatePostRequest) (*model.Post, error) {
	if req.Location == "" || req.SubLocation == "" || req.Description == "" || req.Date == "" {
		return nil, common.Errorf("missing required post fields: %w", common.ErrValidation)
	}
	if len(req.ImagePaths) < 1 || len(req.ImagePaths) > 3 {
		return nil, common.Errorf("a post requires between 1 and 3 images: %w", common.ErrValidation)
	}

	date, err := parsePostDate(req.Date)
	if err != nil {
		return nil, common.Errorf("invalid date %q: %w", req.Date, common.ErrValidation)
	}

	post := &model.Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Location:    req.Location,
		SubLocation: req.SubLocation,
		Description: req.Description,
		LocationURL: req.LocationURL,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	for i, p := range req.ImagePaths {
		post.Images = append(post.Images, model.PostImage{
			ID:       uuid.NewString(),
			URL:      s.baseURL + "/uploads/" + p,
			Position: i,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	// Locks the owner row, so a concurrent account deletion either sees this
	// post or prevents it; an orphaned post is never visible.
	if err := s.userRepo.LockTx(ctx, tx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("post owner not found: %w", common.ErrNotFound)
		}
		return nil, common.Errorf("failed to lock owner: %w", err)
	}
	if err := s.postRepo.CreateTx(ctx, tx, post); err != nil {
		return nil, common.Errorf("failed to create post: %w", err)
	}
	if err := s.userRepo.AdjustPostCountTx(ctx, tx, userID, 1); err != nil {
		return nil, common.Errorf("failed to update owner post count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateFeed(ctx)
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

// List returns every post, newest first. Results are served from the Redis
// feed cache when available; writes invalidate the cached feed.
func (s *PostService) List(ctx context.Context) ([]*model.Post, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, postsCacheKey).Bytes(); err == nil {
			var posts []*model.Post
			if err := json.Unmarshal(cached, &posts); err == nil {
				return posts, nil
			}
			// Corrupt entry; fall through to the store and rewrite it.
		}
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(posts); err == nil {
			if err := s.rdb.Set(ctx, postsCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Printf("posts cache set failed: %v", err)
			}
		}
	}
	return posts, nil
}

func (s *PostService) Update(ctx context.Context, callerID string, callerIsAdmin bool, postID string, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID && !callerIsAdmin {
		return nil, common.Errorf("only the owner may edit this post: %w", common.ErrForbidden)
	}

	if req.Location != "" {
		post.Location = req.Location
	}
	if req.SubLocation != "" {
		post.SubLocation = req.SubLocation
	}
	if req.Description != "" {
		post.Description = req.Description
	}
	if req.LocationURL != "" {
		post.LocationURL = req.LocationURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if req.ImagePath != "" {
		if err := s.postRepo.SetPrimaryImage(ctx, postID, s.baseURL+"/uploads/"+req.ImagePath); err != nil {
			return nil, err
		}
	}

	s.invalidateFeed(ctx)
	return s.postRepo.FindByID(ctx, postID)
}

func (s *PostService) Delete(ctx context.Context, callerID string, callerIsAdmin bool, postID string) error {
	owner, err := s.postRepo.OwnerOf(ctx, postID)
	if err != nil {
		return err
	}
	if owner != callerID && !callerIsAdmin {
		return common.Errorf("only the owner may delete this post: %w", common.ErrForbidden)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.DeleteTx(ctx, tx, postID); err != nil {
		return err
	}
	if err := s.userRepo.AdjustPostCountTx(ctx, tx, owner, -1); err != nil {
		return common.Errorf("failed to update owner post count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateFeed(ctx)
	return nil
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, postsCacheKey).Err(); err != nil {
		log.Printf("posts cache invalidation failed: %v", err)
	}
}

func parsePostDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
