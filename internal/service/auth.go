package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

// Credentials are the fields accepted by signup and login.
type Credentials struct {
	Email string `validate:"required,email,max=254"`
	// bcrypt rejects input beyond 72 bytes.
	Password string `validate:"required,maxbytes=72"`
}

type LoginResult struct {
	Token string
	User  model.User
}

type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenManager model.TokenManager
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenManager: tokenManager,
		logger:       logger,
		now:          time.Now,
	}
}

// Signup creates a user with a hashed password. The store enforces email
// uniqueness, so a concurrent duplicate still fails with
// model.ErrDuplicateResource.
func (a *Auth) Signup(ctx context.Context, params Credentials) (model.User, error) {
	a.logger.Debug("Auth service: starting signup",
		"email", params.Email)

	if err := validateParams(params); err != nil {
		return model.User{}, err
	}

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: email already registered",
			"email", params.Email)
		return model.User{}, fmt.Errorf("%w: email already registered", model.ErrDuplicateResource)
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("%w: failed to get user by email: %w", model.ErrPersistence, err)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    a.now().UTC().Truncate(time.Millisecond),
	}

	saved, err := a.userStore.Create(ctx, user)
	if errors.Is(err, model.ErrDuplicateResource) {
		a.logger.Info("Auth service: email registered concurrently",
			"email", params.Email)
		return model.User{}, fmt.Errorf("%w: email already registered", model.ErrDuplicateResource)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("%w: failed to create user: %w", model.ErrPersistence, err)
	}

	a.logger.Info("Auth service: signup completed",
		"email", saved.Email,
		"user_id", saved.ID)

	return saved, nil
}

// Login checks the password and issues a token. Unknown email and wrong
// password both yield model.ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, params Credentials) (LoginResult, error) {
	a.logger.Debug("Auth service: starting login",
		"email", params.Email)

	if err := validateParams(params); err != nil {
		return LoginResult{}, err
	}

	user, err := a.userStore.GetByEmail(ctx, params.Email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown email",
			"email", params.Email)
		return LoginResult{}, fmt.Errorf("%w: invalid email or password", model.ErrInvalidCredentials)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("%w: failed to get user by email: %w", model.ErrPersistence, err)
	}

	if err := a.hasher.Compare(user.PasswordHash, params.Password); err != nil {
		a.logger.Info("Auth service: password mismatch",
			"email", params.Email)
		return LoginResult{}, fmt.Errorf("%w: invalid email or password", model.ErrInvalidCredentials)
	}

	token, err := a.tokenManager.Issue(model.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed",
		"user_id", user.ID)

	return LoginResult{Token: token, User: user}, nil
}

// Verify resolves a bearer token into the identity it was issued for.
func (a *Auth) Verify(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, fmt.Errorf("%w: missing token", model.ErrInvalidCredentials)
	}
	return a.tokenManager.Verify(token)
}
