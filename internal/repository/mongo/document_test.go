package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/parley-server/internal/model"
)

func TestMessageDocument_ConversationKeyIsSymmetric(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	at := time.Now().UTC().Truncate(time.Millisecond)

	ab := newMessageDocument(model.Message{ID: uuid.New(), From: a, To: b, Text: "x", CreatedAt: at})
	ba := newMessageDocument(model.Message{ID: uuid.New(), From: b, To: a, Text: "y", CreatedAt: at})

	assert.Equal(t, ab.Conversation, ba.Conversation)
}

func TestMessageDocument_ToModel(t *testing.T) {
	msg := model.Message{
		ID:        uuid.New(),
		From:      uuid.New(),
		To:        uuid.New(),
		Text:      "hello",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	got, err := newMessageDocument(msg).toModel()
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	_, err = messageDocument{ID: "nope"}.toModel()
	assert.Error(t, err)
}

func TestUserDocument_ToModel(t *testing.T) {
	user := model.User{
		ID:           uuid.New(),
		Email:        "a@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	got, err := newUserDocument(user).toModel()
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = userDocument{ID: "bad"}.toModel()
	assert.Error(t, err)
}
