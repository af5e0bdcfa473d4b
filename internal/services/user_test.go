package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"calmerge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokenIssuer struct {
	issued string
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	f.issued = "token-for-" + userID
	return f.issued, nil
}

func newUserFixture() (*fakeUserRepo, *fakeEmailService, domain.UserService) {
	users := newFakeUserRepo()
	emails := &fakeEmailService{}
	svc := NewUserService(users, fakeHasher{}, &fakeTokenIssuer{}, time.Hour, emails)
	return users, emails, svc
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		_, emails, svc := newUserFixture()
		user, err := svc.SignUp(ctx, "Ada@Example.com", "hunter2hunter2", "Ada", "Lovelace")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, 1, emails.welcomeCount)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, err := svc.SignUp(ctx, "not-an-email", "hunter2hunter2", "Ada", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("short password", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, err := svc.SignUp(ctx, "ada@example.com", "short", "Ada", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada", "")
		require.NoError(t, err)
		_, err = svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada", "")
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		_, _, svc := newUserFixture()
		created, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada", "")
		require.NoError(t, err)

		token, user, err := svc.Login(ctx, "ada@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "token-for-"+created.ID, token)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, _, err := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, domain.ErrBadCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada", "")
		require.NoError(t, err)
		_, _, err = svc.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, domain.ErrBadCredentials)
	})
}
