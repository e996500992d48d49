package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/parley-server/internal/mocks"
	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/testutil"
)

func newTestAuth(t *testing.T) (*Auth, *mocks.UserStore, *mocks.PasswordHasher, *mocks.TokenManager) {
	t.Helper()
	userStore := mocks.NewUserStore(t)
	hasher := mocks.NewPasswordHasher(t)
	tokens := mocks.NewTokenManager(t)

	a := NewAuth(userStore, hasher, tokens, testutil.MakeNoopLogger())
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 678901234, time.UTC) }
	return a, userStore, hasher, tokens
}

func TestAuth_Signup(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, _ := newTestAuth(t)
	ctx := context.Background()

	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	hasher.On("Hash", "secret").Return("hashed", nil)
	userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "a@b.co" && u.PasswordHash == "hashed" && u.ID != uuid.Nil &&
			u.CreatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 678000000, time.UTC))
	})).Return(func(_ context.Context, u model.User) (model.User, error) { return u, nil })

	user, err := a.Signup(ctx, Credentials{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestAuth_Signup_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Credentials
	}{
		{name: "missing email", params: Credentials{Password: "secret"}},
		{name: "missing password", params: Credentials{Email: "a@b.co"}},
		{name: "malformed email", params: Credentials{Email: "not-an-email", Password: "secret"}},
		{name: "password over 72 bytes", params: Credentials{Email: "a@b.co", Password: strings.Repeat("é", 40)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _, _, _ := newTestAuth(t)
			_, err := a.Signup(context.Background(), tt.params)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestAuth_Signup_EmailTaken(t *testing.T) {
	t.Parallel()

	a, userStore, _, _ := newTestAuth(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{ID: uuid.New(), Email: "a@b.co"}, nil)

	_, err := a.Signup(context.Background(), Credentials{Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrDuplicateResource)
	userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Signup_ConcurrentDuplicate(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, _ := newTestAuth(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	hasher.On("Hash", "secret").Return("hashed", nil)
	userStore.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrDuplicateResource)

	_, err := a.Signup(context.Background(), Credentials{Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrDuplicateResource)
}

func TestAuth_Signup_StoreFailure(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, _ := newTestAuth(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	hasher.On("Hash", "secret").Return("hashed", nil)
	userStore.On("Create", mock.Anything, mock.Anything).Return(model.User{}, assert.AnError)

	_, err := a.Signup(context.Background(), Credentials{Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, tokens := newTestAuth(t)
	user := model.User{ID: uuid.New(), Email: "a@b.co", PasswordHash: "hashed"}

	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(user, nil)
	hasher.On("Compare", "hashed", "secret").Return(nil)
	tokens.On("Issue", model.Identity{UserID: user.ID, Email: user.Email}).Return("jwt", nil)

	res, err := a.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		a, userStore, _, _ := newTestAuth(t)
		userStore.On("GetByEmail", mock.Anything, "x@b.co").Return(model.User{}, model.ErrNotFound)

		_, err := a.Login(context.Background(), Credentials{Email: "x@b.co", Password: "secret"})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		a, userStore, hasher, _ := newTestAuth(t)
		userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{ID: uuid.New(), PasswordHash: "hashed"}, nil)
		hasher.On("Compare", "hashed", "wrong").Return(model.ErrInvalidCredentials)

		_, err := a.Login(context.Background(), Credentials{Email: "a@b.co", Password: "wrong"})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestAuth_Verify(t *testing.T) {
	t.Parallel()

	a, _, _, tokens := newTestAuth(t)
	identity := model.Identity{UserID: uuid.New(), Email: "a@b.co"}
	tokens.On("Verify", "good").Return(identity, nil)

	got, err := a.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	_, err = a.Verify("")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuth_Signup_MultiBytePasswordAtLimit(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, _ := newTestAuth(t)
	password := strings.Repeat("é", 36)

	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	hasher.On("Hash", password).Return("hashed", nil)
	userStore.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, u model.User) (model.User, error) { return u, nil })

	_, err := a.Signup(context.Background(), Credentials{Email: "a@b.co", Password: password})
	require.NoError(t, err)
}

func TestAuth_Signup_HasherRejectsPassword(t *testing.T) {
	t.Parallel()

	a, userStore, hasher, _ := newTestAuth(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	hasher.On("Hash", "secret").Return("", model.ErrValidation)

	_, err := a.Signup(context.Background(), Credentials{Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrValidation)
}
