package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type messageRecord struct {
	ID        string `cbor:"id"`
	From      string `cbor:"from"`
	To        string `cbor:"to"`
	Text      string `cbor:"text"`
	CreatedAt int64  `cbor:"created_at"`
}

func (r messageRecord) toModel() (model.Message, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid message id %q: %w", r.ID, err)
	}
	from, err := uuid.Parse(r.From)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid sender id %q: %w", r.From, err)
	}
	to, err := uuid.Parse(r.To)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid recipient id %q: %w", r.To, err)
	}
	return model.Message{
		ID:        id,
		From:      from,
		To:        to,
		Text:      r.Text,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}

type MessageRepository struct {
	db *badger.DB
}

func NewMessageRepository(conn *Connection) *MessageRepository {
	return &MessageRepository{db: conn.db}
}

func conversationPrefix(a, b uuid.UUID) string {
	return "msg:" + model.ConversationKey(a, b) + ":"
}

// messageKey is "msg:{conversation}:{millis padded to 19 digits}:{id}",
// so a forward prefix scan yields messages ordered by time then id.
func messageKey(m model.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		conversationPrefix(m.From, m.To),
		m.CreatedAt.UnixMilli(),
		m.ID,
	))
}

func (r *MessageRepository) Create(_ context.Context, message model.Message) (model.Message, error) {
	data, err := marshal(messageRecord{
		ID:        message.ID.String(),
		From:      message.From.String(),
		To:        message.To.String(),
		Text:      message.Text,
		CreatedAt: message.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to encode message: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), data)
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}

func (r *MessageRepository) GetConversation(_ context.Context, a, b uuid.UUID, limit int) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(a, b))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			var rec messageRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			m, err := rec.toModel()
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	return messages, nil
}
