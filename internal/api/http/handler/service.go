package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/service"
)

// AuthService defines signup and login operations.
type AuthService interface {
	Signup(ctx context.Context, params service.Credentials) (model.User, error)
	Login(ctx context.Context, params service.Credentials) (service.LoginResult, error)
}

// UserService lists users a caller can talk to.
type UserService interface {
	ListOthers(ctx context.Context, callerID uuid.UUID) ([]model.User, error)
}

// MessageService defines message send, history and archive operations.
type MessageService interface {
	Send(ctx context.Context, params service.SendParams) (model.Message, error)
	Conversation(ctx context.Context, params service.ConversationParams) ([]model.Message, error)
	Archive(ctx context.Context, userID uuid.UUID, peerID string) (string, error)
}

// Notifier pushes a persisted message to its recipient's live connection.
type Notifier interface {
	NotifyRecipient(message model.Message)
}
