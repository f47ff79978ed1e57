package service

import (
	"context"
	"regexp"
	"testing"
	"travelgram/internal/common"
	"travelgram/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavorite_Idempotent(t *testing.T) {
	initTestConfig(t)
	users := newFakeUserRepo()
	users.users["u1"] = userFixture("u1")
	s := NewUserService(users, newFakePostRepo(), nil, nil, "http://localhost:8080")

	// First toggle favorites the post.
	favorites, err := s.ToggleFavorite(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, favorites)

	// Second toggle returns to the original state.
	favorites, err = s.ToggleFavorite(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestToggleFavorite_UnknownUser(t *testing.T) {
	initTestConfig(t)
	s := NewUserService(newFakeUserRepo(), newFakePostRepo(), nil, nil, "http://localhost:8080")

	_, err := s.ToggleFavorite(context.Background(), "ghost", "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUser_CascadesInOneTransaction(t *testing.T) {
	initTestConfig(t)
	db, mock := newSQLMockDB(t)
	defer db.Close()
	s := NewUserService(
		repository.NewPgUserRepository(db), repository.NewPgPostRepository(db), db, nil, "http://localhost:8080")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3)) // three owned posts gone
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_NotFound_AbortsBeforeAnyDeletion(t *testing.T) {
	initTestConfig(t)
	db, mock := newSQLMockDB(t)
	defer db.Close()
	s := NewUserService(
		repository.NewPgUserRepository(db), repository.NewPgPostRepository(db), db, nil, "http://localhost:8080")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	// The posts delete was never issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	initTestConfig(t)
	users := newFakeUserRepo()
	users.users["u1"] = userFixture("u1")
	s := NewUserService(users, newFakePostRepo(), nil, nil, "http://localhost:8080")

	updated, err := s.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		Bio:       "Chasing waterfalls",
		ImagePath: "me.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chasing waterfalls", updated.Bio)
	assert.Equal(t, "http://localhost:8080/uploads/me.png", updated.ProfileImage)
	assert.Equal(t, "Test", updated.FirstName) // untouched
}

func TestSetAdmin(t *testing.T) {
	initTestConfig(t)
	users := newFakeUserRepo()
	users.users["u1"] = userFixture("u1")
	s := NewUserService(users, newFakePostRepo(), nil, nil, "http://localhost:8080")

	updated, err := s.SetAdmin(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	_, err = s.SetAdmin(context.Background(), "nobody", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
