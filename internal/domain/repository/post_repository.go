package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"
)

type PostRepository interface {
	// CreateTx inserts the post and its images inside the caller's transaction.
	CreateTx(ctx context.Context, tx *sql.Tx, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Post, error)
	ListFavoritedBy(ctx context.Context, userID string) ([]*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	SetPrimaryImage(ctx context.Context, postID, url string) error
	OwnerOf(ctx context.Context, id string) (string, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id string) error
	DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID string) error
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

func (r *pgPostRepository) CreateTx(ctx context.Context, tx *sql.Tx, post *model.Post) error {
	query := `INSERT INTO posts (id, user_id, location, sub_location, description, location_url, taken_at)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`
	_, err := tx.ExecContext(ctx, query,
		post.ID, post.UserID, post.Location, post.SubLocation, post.Description,
		post.LocationURL, post.Date,
	)
	if err != nil {
		return fmt.Errorf("pgPostRepository.CreateTx: %w", err)
	}

	imgQuery := `INSERT INTO post_images (id, post_id, url, position) VALUES ($1, $2, $3, $4)`
	for _, img := range post.Images {
		if _, err := tx.ExecContext(ctx, imgQuery, img.ID, post.ID, img.URL, img.Position); err != nil {
			return fmt.Errorf("pgPostRepository.CreateTx image: %w", err)
		}
	}
	return nil
}

const postSelect = `SELECT p.id, p.user_id, p.location, p.sub_location, p.description,
	COALESCE(p.location_url, ''), p.taken_at, p.created_at,
	i.id, i.url, i.position
	FROM posts p
	LEFT JOIN post_images i ON i.post_id = p.id`

// collectPosts groups joined post/image rows back into posts, preserving the
// row order of the outer query.
func collectPosts(rows *sql.Rows) ([]*model.Post, error) {
	var (
		ordered []*model.Post
		byID    = map[string]*model.Post{}
	)
	for rows.Next() {
		var (
			p        model.Post
			imgID    sql.NullString
			imgURL   sql.NullString
			position sql.NullInt64
		)
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Location, &p.SubLocation, &p.Description,
			&p.LocationURL, &p.Date, &p.CreatedAt,
			&imgID, &imgURL, &position,
		)
		if err != nil {
			return nil, err
		}
		post, seen := byID[p.ID]
		if !seen {
			p.Images = []model.PostImage{}
			post = &p
			byID[p.ID] = post
			ordered = append(ordered, post)
		}
		if imgID.Valid {
			post.Images = append(post.Images, model.PostImage{
				ID:       imgID.String,
				URL:      imgURL.String,
				Position: int(position.Int64),
			})
		}
	}
	if ordered == nil {
		ordered = []*model.Post{}
	}
	return ordered, rows.Err()
}

func (r *pgPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := postSelect + ` WHERE p.id = $1 ORDER BY i.position`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.FindByID: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.FindByID scan: %w", err)
	}
	if len(posts) == 0 {
		return nil, common.ErrNotFound
	}
	return posts[0], nil
}

func (r *pgPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	query := postSelect + ` ORDER BY p.created_at DESC, i.position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List scan: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	query := postSelect + ` WHERE p.user_id = $1 ORDER BY p.created_at DESC, i.position`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.ListByUser scan: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) ListFavoritedBy(ctx context.Context, userID string) ([]*model.Post, error) {
	query := postSelect + `
	JOIN user_favorites f ON f.post_id = p.id
	WHERE f.user_id = $1 ORDER BY f.created_at DESC, i.position`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.ListFavoritedBy: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.ListFavoritedBy scan: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts SET location = $1, sub_location = $2, description = $3,
	          location_url = NULLIF($4, '')
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query,
		post.Location, post.SubLocation, post.Description, post.LocationURL, post.ID)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgPostRepository) SetPrimaryImage(ctx context.Context, postID, url string) error {
	query := `UPDATE post_images SET url = $1 WHERE post_id = $2 AND position = 0`
	if _, err := r.db.ExecContext(ctx, query, url, postID); err != nil {
		return fmt.Errorf("pgPostRepository.SetPrimaryImage: %w", err)
	}
	return nil
}

func (r *pgPostRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("pgPostRepository.OwnerOf: %w", err)
	}
	return owner, nil
}

func (r *pgPostRepository) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.DeleteTx: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgPostRepository) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("pgPostRepository.DeleteByUserTx: %w", err)
	}
	return nil
}
