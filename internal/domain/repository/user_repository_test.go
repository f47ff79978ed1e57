package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPgUserRepository(db), mock, db
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "username", "email", "hashed_password",
		"security_question", "security_answer", "bio", "profile_image",
		"is_admin", "post_count", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.HashedPassword,
		u.SecurityQuestion, u.SecurityAnswer, u.Bio, u.ProfileImage,
		u.IsAdmin, u.PostCount, time.Now(), time.Now(),
	)
}

func TestCreate_UniqueViolationMapsToConflict(t *testing.T) {
	repo, mock, db := newMockUserRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.User{ID: "u1", Username: "alice"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newMockUserRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindByUsername_ScansAllFields(t *testing.T) {
	repo, mock, db := newMockUserRepo(t)
	defer db.Close()

	want := &model.User{
		ID: "u1", FirstName: "Alice", LastName: "Traveler",
		Username: "alice", Email: "alice@x.com", HashedPassword: "hash",
		SecurityQuestion: "First pet?", SecurityAnswer: "rex",
		Bio: "hello", ProfileImage: "img", IsAdmin: true, PostCount: 2,
	}
	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(userRows(want))

	got, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.SecurityAnswer, got.SecurityAnswer)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, 2, got.PostCount)
}

func TestUpdatePassword_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newMockUserRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "missing", "newhash")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
