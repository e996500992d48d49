// Package dto holds the JSON shapes shared by the REST and WebSocket
// surfaces.
package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/dtroode/parley-server/internal/model"
)

// Message is the normalized message record sent to clients.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a user as listed to other users.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Account is the caller's own account, as returned by signup and login.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

type SendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type ArchiveResponse struct {
	Key string `json:"key"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewMessage(m model.Message) Message {
	return Message{
		ID:        m.ID.String(),
		From:      m.From.String(),
		To:        m.To.String(),
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func NewMessages(messages []model.Message) []Message {
	return lo.Map(messages, func(m model.Message, _ int) Message {
		return NewMessage(m)
	})
}

func NewUsers(users []model.User) []User {
	return lo.Map(users, func(u model.User, _ int) User {
		return User{ID: u.ID.String(), Email: u.Email}
	})
}

func NewAccount(u model.User) Account {
	return Account{ID: u.ID.String(), Email: u.Email}
}
