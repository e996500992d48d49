package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

const transcriptContentType = "application/json"

type SendParams struct {
	From uuid.UUID
	To   string `validate:"required,uuid"`
	Text string `validate:"required,max=4096"`
}

type ConversationParams struct {
	UserID uuid.UUID
	PeerID string `validate:"required,uuid"`
	// Limit <= 0 returns the whole conversation.
	Limit int
}

type Message struct {
	messageStore model.MessageStore
	userStore    model.UserStore
	storage      model.Storage
	logger       *logger.Logger
	now          func() time.Time
}

// NewMessage builds the messaging service. storage may be nil, in which
// case Archive reports model.ErrArchiveDisabled.
func NewMessage(messageStore model.MessageStore, userStore model.UserStore, storage model.Storage, logger *logger.Logger) *Message {
	return &Message{
		messageStore: messageStore,
		userStore:    userStore,
		storage:      storage,
		logger:       logger,
		now:          time.Now,
	}
}

// Send persists a message to an existing recipient. An unknown recipient
// yields model.ErrNotFound.
func (s *Message) Send(ctx context.Context, params SendParams) (model.Message, error) {
	if err := validateParams(params); err != nil {
		return model.Message{}, err
	}
	to := uuid.MustParse(params.To)

	if _, err := s.userStore.GetByID(ctx, to); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("Message service: unknown recipient",
				"from", params.From,
				"to", to)
			return model.Message{}, fmt.Errorf("%w: recipient %s does not exist", model.ErrNotFound, to)
		}
		s.logger.Error("Message service: failed to look up recipient",
			"to", to,
			"error", err.Error())
		return model.Message{}, fmt.Errorf("%w: failed to look up recipient: %w", model.ErrPersistence, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to generate message id: %w", err)
	}

	message := model.Message{
		ID:        id,
		From:      params.From,
		To:        to,
		Text:      params.Text,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	saved, err := s.messageStore.Create(ctx, message)
	if err != nil {
		s.logger.Error("Message service: failed to persist message",
			"from", params.From,
			"to", to,
			"error", err.Error())
		return model.Message{}, fmt.Errorf("%w: failed to save message: %w", model.ErrPersistence, err)
	}

	s.logger.Debug("Message service: message persisted",
		"message_id", saved.ID,
		"from", saved.From,
		"to", saved.To)

	return saved, nil
}

// Conversation returns messages exchanged between params.UserID and
// params.PeerID in ascending (createdAt, id) order, truncated to the
// oldest params.Limit entries when Limit is positive.
func (s *Message) Conversation(ctx context.Context, params ConversationParams) ([]model.Message, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	peer := uuid.MustParse(params.PeerID)

	messages, err := s.messageStore.GetConversation(ctx, params.UserID, peer, params.Limit)
	if err != nil {
		s.logger.Error("Message service: failed to load conversation",
			"user_id", params.UserID,
			"peer_id", peer,
			"error", err.Error())
		return nil, fmt.Errorf("%w: failed to load conversation: %w", model.ErrPersistence, err)
	}

	return messages, nil
}

type transcript struct {
	Participants [2]string           `json:"participants"`
	ExportedAt   time.Time           `json:"exportedAt"`
	Messages     []transcriptMessage `json:"messages"`
}

type transcriptMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Archive writes the full conversation between userID and peerID to
// object storage as a JSON transcript and returns the object key.
func (s *Message) Archive(ctx context.Context, userID uuid.UUID, peerID string) (string, error) {
	if s.storage == nil {
		return "", model.ErrArchiveDisabled
	}

	messages, err := s.Conversation(ctx, ConversationParams{UserID: userID, PeerID: peerID})
	if err != nil {
		return "", err
	}

	exportedAt := s.now().UTC().Truncate(time.Millisecond)
	key := fmt.Sprintf("conversations/%s/%d.json",
		model.ConversationKey(userID, uuid.MustParse(peerID)),
		exportedAt.UnixMilli())

	body, err := json.Marshal(transcript{
		Participants: [2]string{userID.String(), peerID},
		ExportedAt:   exportedAt,
		Messages: lo.Map(messages, func(m model.Message, _ int) transcriptMessage {
			return transcriptMessage{
				ID:        m.ID.String(),
				From:      m.From.String(),
				To:        m.To.String(),
				Text:      m.Text,
				CreatedAt: m.CreatedAt,
			}
		}),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), transcriptContentType); err != nil {
		s.logger.Error("Message service: failed to upload transcript",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return "", fmt.Errorf("%w: failed to upload transcript: %w", model.ErrPersistence, err)
	}

	s.logger.Info("Message service: conversation archived",
		"user_id", userID,
		"key", key,
		"messages", len(messages))

	return key, nil
}
