package services

import (
	"context"

	"rently/internal/cache"
	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/store"
	"rently/internal/structures"
)

const defaultChatPageSize = 25

type ChatServiceInterface interface {
	Messages(ctx context.Context, chatID string, page int) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID, messageID string) error
}

// ChatService serves paginated chat history through the message cache.
type ChatService struct {
	store    store.MessageStoreInterface
	cache    *cache.MessageCache
	logger   providers.Logger
	pageSize int
}

func NewChatService(conf *structures.Config, messageStore store.MessageStoreInterface, messageCache *cache.MessageCache, logger providers.Logger) ChatServiceInterface {
	pageSize := conf.Chat.PageSize
	if pageSize <= 0 {
		pageSize = defaultChatPageSize
	}
	return &ChatService{
		store:    messageStore,
		cache:    messageCache,
		logger:   logger,
		pageSize: pageSize,
	}
}

func (s *ChatService) Messages(ctx context.Context, chatID string, page int) ([]models.Message, error) {
	if page < 0 {
		page = 0
	}
	if msgs, ok := s.cache.Page(chatID, page); ok {
		return msgs, nil
	}

	msgs, err := s.store.Page(ctx, chatID, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	s.cache.SetPage(chatID, page, msgs)
	return msgs, nil
}

// MarkRead persists the read flag and patches the cached pages in place,
// avoiding a full page refetch.
func (s *ChatService) MarkRead(ctx context.Context, chatID, messageID string) error {
	if err := s.store.MarkRead(ctx, chatID, messageID); err != nil {
		return err
	}
	s.cache.MarkRead(chatID, messageID)
	return nil
}
