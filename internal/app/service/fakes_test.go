package service

import (
	"context"
	"database/sql"
	"testing"
	"time"
	"travelgram/internal/common"
	"travelgram/internal/common/security"
	"travelgram/internal/domain/model"
	"travelgram/internal/platform/config"

	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

// initTestConfig wires up a minimal config and JWT signer for service tests.
// MinCost keeps bcrypt fast; the hashes are still real.
func initTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:     []byte("test-secret"),
		JWTExp:     time.Hour,
		BcryptCost: bcrypt.MinCost,
		BaseURL:    "http://localhost:8080",
	}
	security.InitJWT()
}

// userFixture returns a minimal stored user for seeding fakes directly.
func userFixture(id string) *model.User {
	return &model.User{
		ID:               id,
		FirstName:        "Test",
		LastName:         "User",
		Username:         id,
		Email:            id + "@x.com",
		HashedPassword:   "$2a$04$notarealhash",
		SecurityQuestion: "First pet?",
		SecurityAnswer:   "rex",
	}
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users     map[string]*model.User     // by id
	favorites map[string]map[string]bool // userID -> postID set
	favOrder  map[string][]string        // userID -> postIDs in toggle order
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     map[string]*model.User{},
		favorites: map[string]map[string]bool{},
		favOrder:  map[string][]string{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (f *fakeUserRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (f *fakeUserRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := f.users[id]; !ok {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeUserRepo) AdjustPostCountTx(ctx context.Context, tx *sql.Tx, id string, delta int) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PostCount += delta
	return nil
}

func (f *fakeUserRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := f.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) IsFavorite(ctx context.Context, userID, postID string) (bool, error) {
	return f.favorites[userID][postID], nil
}

func (f *fakeUserRepo) AddFavorite(ctx context.Context, userID, postID string) error {
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[string]bool{}
	}
	if !f.favorites[userID][postID] {
		f.favorites[userID][postID] = true
		f.favOrder[userID] = append(f.favOrder[userID], postID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveFavorite(ctx context.Context, userID, postID string) error {
	delete(f.favorites[userID], postID)
	order := f.favOrder[userID][:0]
	for _, id := range f.favOrder[userID] {
		if id != postID {
			order = append(order, id)
		}
	}
	f.favOrder[userID] = order
	return nil
}

func (f *fakeUserRepo) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	out := []string{}
	out = append(out, f.favOrder[userID]...)
	return out, nil
}

// fakePostRepo covers the few read paths user-service tests touch.
type fakePostRepo struct {
	posts map[string]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*model.Post{}}
}

func (f *fakePostRepo) CreateTx(ctx context.Context, tx *sql.Tx, post *model.Post) error {
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepo) List(ctx context.Context) ([]*model.Post, error) {
	out := []*model.Post{}
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePostRepo) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	out := []*model.Post{}
	for _, p := range f.posts {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListFavoritedBy(ctx context.Context, userID string) ([]*model.Post, error) {
	return []*model.Post{}, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	if _, ok := f.posts[post.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostRepo) SetPrimaryImage(ctx context.Context, postID, url string) error {
	p, ok := f.posts[postID]
	if !ok {
		return common.ErrNotFound
	}
	if len(p.Images) > 0 {
		p.Images[0].URL = url
	}
	return nil
}

func (f *fakePostRepo) OwnerOf(ctx context.Context, id string) (string, error) {
	p, ok := f.posts[id]
	if !ok {
		return "", common.ErrNotFound
	}
	return p.UserID, nil
}

func (f *fakePostRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := f.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID string) error {
	for id, p := range f.posts {
		if p.UserID == userID {
			delete(f.posts, id)
		}
	}
	return nil
}
