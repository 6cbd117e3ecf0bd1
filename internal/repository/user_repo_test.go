package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"auth_service/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "phone_number", "first_name", "last_name", "password_hash", "created_at"}
var roleCols = []string{"id", "name", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@example.com", "+100", "Ann", "Lee", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(5, now))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(5, model.RoleUser).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user := &model.User{Email: "a@example.com", PhoneNumber: "+100", FirstName: "Ann", LastName: "Lee", PasswordHash: "hash"}
	err := repo.Create(context.Background(), user, model.RoleUser)

	require.NoError(t, err)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{Email: "a@example.com"})

	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{Email: "a@example.com"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(5, "a@example.com", "+100", "Ann", "Lee", "hash", now))
	mock.ExpectQuery(`FROM roles r JOIN user_roles ur`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(roleCols).AddRow(2, model.RoleAdmin, now).AddRow(1, model.RoleUser, now))

	user, err := repo.FindByEmail(context.Background(), "a@example.com")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.True(t, user.HasRole(model.RoleAdmin))
	assert.Len(t, user.Roles, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByPhone_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE phone_number = \$1`).
		WithArgs("+100").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByPhone(context.Background(), "+100")

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(9).
		WillReturnError(errors.New("boom"))

	user, err := repo.FindByID(context.Background(), 9)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindAll(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM users ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(1, "a@example.com", "+1", "", "", "h1", now).
			AddRow(2, "b@example.com", "+2", "", "", "h2", now))
	mock.ExpectQuery(`FROM user_roles ur JOIN roles r`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "id", "name", "created_at"}).
			AddRow(1, 2, model.RoleAdmin, now).
			AddRow(1, 1, model.RoleUser, now).
			AddRow(2, 1, model.RoleUser, now))

	users, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []string{model.RoleAdmin, model.RoleUser}, users[0].Profile().Roles)
	assert.Equal(t, []string{model.RoleUser}, users[1].Profile().Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
