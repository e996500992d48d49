package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dtroode/parley-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type messageDocument struct {
	ID           string    `bson:"_id"`
	Conversation string    `bson:"conversation"`
	From         string    `bson:"from"`
	To           string    `bson:"to"`
	Text         string    `bson:"text"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func newMessageDocument(m model.Message) messageDocument {
	return messageDocument{
		ID:           m.ID.String(),
		Conversation: model.ConversationKey(m.From, m.To),
		From:         m.From.String(),
		To:           m.To.String(),
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}

func (d messageDocument) toModel() (model.Message, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid message id %q: %w", d.ID, err)
	}
	from, err := uuid.Parse(d.From)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid sender id %q: %w", d.From, err)
	}
	to, err := uuid.Parse(d.To)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid recipient id %q: %w", d.To, err)
	}
	return model.Message{
		ID:        id,
		From:      from,
		To:        to,
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(conn *Connection) *MessageRepository {
	return &MessageRepository{
		coll: conn.db.Collection(messagesCollection),
	}
}

func (r *MessageRepository) Create(ctx context.Context, message model.Message) (model.Message, error) {
	if _, err := r.coll.InsertOne(ctx, newMessageDocument(message)); err != nil {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

func (r *MessageRepository) GetConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"conversation": model.ConversationKey(a, b)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]model.Message, 0)
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		m, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	return messages, nil
}
