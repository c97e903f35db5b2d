package cache

import (
	"strconv"
	"sync"

	json "github.com/goccy/go-json"

	"rently/internal/models"
)

// MessageCache caches pages of chat history on top of Cache and remembers
// which page indices are cached per chat, so a read-status change can be
// applied in place without refetching the page.
type MessageCache struct {
	cache *Cache
	mu    sync.Mutex
	pages map[string]map[int]struct{}
}

func NewMessageCache(cache *Cache) *MessageCache {
	return &MessageCache{
		cache: cache,
		pages: make(map[string]map[int]struct{}),
	}
}

func pageKey(chatID string, page int) string {
	return "chat:" + chatID + ":page:" + strconv.Itoa(page)
}

func (mc *MessageCache) Page(chatID string, page int) ([]models.Message, bool) {
	data, ok := mc.cache.Get(pageKey(chatID, page))
	if !ok {
		return nil, false
	}
	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		mc.cache.Invalidate(pageKey(chatID, page))
		return nil, false
	}
	return msgs, true
}

func (mc *MessageCache) SetPage(chatID string, page int, msgs []models.Message) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	mc.cache.Set(pageKey(chatID, page), data)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.pages[chatID] == nil {
		mc.pages[chatID] = make(map[int]struct{})
	}
	mc.pages[chatID][page] = struct{}{}
}

// MarkRead flips the read flag on the cached copy of a message wherever it
// appears, leaving page expiry untouched.
func (mc *MessageCache) MarkRead(chatID, messageID string) {
	mc.mu.Lock()
	indices := make([]int, 0, len(mc.pages[chatID]))
	for page := range mc.pages[chatID] {
		indices = append(indices, page)
	}
	mc.mu.Unlock()

	for _, page := range indices {
		msgs, ok := mc.Page(chatID, page)
		if !ok {
			continue
		}
		changed := false
		for i := range msgs {
			if msgs[i].ID == messageID && !msgs[i].Read {
				msgs[i].Read = true
				changed = true
			}
		}
		if !changed {
			continue
		}
		if data, err := json.Marshal(msgs); err == nil {
			key := pageKey(chatID, page)
			if e, ok := mc.cache.entry(key); ok {
				// keep the original expiry; this is a mutation, not a refresh
				e.Data = data
				mc.cache.put(key, e)
			}
		}
	}
}

// InvalidateChat drops every cached page of one chat.
func (mc *MessageCache) InvalidateChat(chatID string) {
	mc.mu.Lock()
	indices := mc.pages[chatID]
	delete(mc.pages, chatID)
	mc.mu.Unlock()

	for page := range indices {
		mc.cache.Invalidate(pageKey(chatID, page))
	}
}
