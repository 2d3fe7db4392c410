package auth

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, ok := NewAuthService(db, 10, 60, 10).(*AuthService)
	require.True(t, ok)
	return svc, mock
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials create a session", func(t *testing.T) {
		svc, mock := newTestService(t)
		rows := sqlmock.NewRows([]string{"user_id", "employee_name", "email", "role_name"}).
			AddRow("u-1", "Ava Chen", "ava@example.com", "admin")
		mock.ExpectQuery("SELECT").WithArgs("ava@example.com", "secret").WillReturnRows(rows)

		session, err := svc.Login("ava@example.com", "secret", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", session.UserID)
		assert.Equal(t, "Ava Chen", session.Name)
		assert.True(t, session.IsLoggedIn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad credentials rejected", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery("SELECT").WithArgs("ava@example.com", "wrong").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "employee_name", "email", "role_name"}))

		_, err := svc.Login("ava@example.com", "wrong", "10.0.0.1")
		assert.Error(t, err)
	})

	t.Run("re-login returns the existing session", func(t *testing.T) {
		svc, mock := newTestService(t)
		rows := sqlmock.NewRows([]string{"user_id", "employee_name", "email", "role_name"}).
			AddRow("u-1", "Ava Chen", "ava@example.com", "admin")
		mock.ExpectQuery("SELECT").WillReturnRows(rows)

		first, err := svc.Login("ava@example.com", "secret", "10.0.0.1")
		require.NoError(t, err)
		second, err := svc.Login("ava@example.com", "secret", "10.0.0.2")
		require.NoError(t, err)
		assert.Equal(t, first.SessionID, second.SessionID)
		assert.Len(t, svc.GetActiveSessions(), 1)
	})

	t.Run("logout removes the session", func(t *testing.T) {
		svc, mock := newTestService(t)
		rows := sqlmock.NewRows([]string{"user_id", "employee_name", "email", "role_name"}).
			AddRow("u-1", "Ava Chen", "ava@example.com", "admin")
		mock.ExpectQuery("SELECT").WillReturnRows(rows)

		session, err := svc.Login("ava@example.com", "secret", "10.0.0.1")
		require.NoError(t, err)
		require.NoError(t, svc.Logout(session.SessionID))
		assert.Empty(t, svc.GetActiveSessions())
		assert.Error(t, svc.Logout(session.SessionID))
	})
}
