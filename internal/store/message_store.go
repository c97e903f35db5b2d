package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rently/internal/models"
	"rently/internal/providers"
)

type MessageStoreInterface interface {
	Insert(ctx context.Context, m *models.Message) error
	Page(ctx context.Context, chatID string, page, size int) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID, messageID string) error
}

type MessageStore struct {
	col    *mongo.Collection
	logger providers.Logger
}

func NewMessageStore(db *mongo.Database, logger providers.Logger) MessageStoreInterface {
	return &MessageStore{
		col:    db.Collection(CollMessages),
		logger: logger,
	}
}

func (s *MessageStore) Insert(ctx context.Context, m *models.Message) error {
	_, err := s.col.InsertOne(ctx, m)
	return err
}

// Page returns one page of chat history, newest first. Page numbering
// starts at zero.
func (s *MessageStore) Page(ctx context.Context, chatID string, page, size int) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))
	cursor, err := s.col.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, chatID, messageID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": messageID, "chatId": chatID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
