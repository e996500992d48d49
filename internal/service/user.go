package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

type User struct {
	userStore model.UserStore
	logger    *logger.Logger
}

func NewUser(userStore model.UserStore, logger *logger.Logger) *User {
	return &User{
		userStore: userStore,
		logger:    logger,
	}
}

// ListOthers returns every registered user except callerID.
func (s *User) ListOthers(ctx context.Context, callerID uuid.UUID) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("User service: failed to list users",
			"user_id", callerID,
			"error", err.Error())
		return nil, fmt.Errorf("%w: failed to list users: %w", model.ErrPersistence, err)
	}

	return lo.Filter(users, func(u model.User, _ int) bool {
		return u.ID != callerID
	}), nil
}
