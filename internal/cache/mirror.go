package cache

import (
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"rently/internal/providers"
	"rently/internal/structures"
)

// MirrorInterface is the optional durable tier behind the in-memory cache.
type MirrorInterface interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry) error
	Delete(key string)
	Load() error
	Flush() error
}

// FileMirror keeps a durable copy of cache entries in a single compressed
// file. Writes go to an in-memory map and reach disk on Flush; files are
// replaced atomically via tmp-then-rename.
type FileMirror struct {
	mu         sync.RWMutex
	path       string
	entries    map[string]Entry
	dirty      bool
	compressor CompressorInterface
	logger     providers.Logger
}

func NewFileMirror(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) MirrorInterface {
	if conf.EntityCache.MirrorPath == "" {
		logger.Infof(providers.TypeApp, "Cache mirror disabled")
		return &noopMirror{}
	}
	return &FileMirror{
		path:       conf.EntityCache.MirrorPath,
		entries:    make(map[string]Entry),
		compressor: compressor,
		logger:     logger,
	}
}

type noopMirror struct{}

func (n *noopMirror) Get(_ string) (Entry, bool)  { return Entry{}, false }
func (n *noopMirror) Set(_ string, _ Entry) error { return nil }
func (n *noopMirror) Delete(_ string)             {}
func (n *noopMirror) Load() error                 { return nil }
func (n *noopMirror) Flush() error                { return nil }

func (m *FileMirror) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *FileMirror) Set(key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	m.dirty = true
	return nil
}

func (m *FileMirror) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		m.dirty = true
	}
}

// Load reads the mirror file, dropping entries that expired while the
// process was down. A missing file is not an error.
func (m *FileMirror) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := m.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var entries map[string]Entry
	if err := json.Unmarshal(decompressed, &entries); err != nil {
		return err
	}

	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry, len(entries))
	for k, e := range entries {
		if now.Before(e.ExpiresAt) {
			m.entries[k] = e
		}
	}
	return nil
}

// Flush persists the current entries if anything changed since the last
// successful flush.
func (m *FileMirror) Flush() error {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return nil
	}
	snapshot := make(map[string]Entry, len(m.entries))
	for k, e := range m.entries {
		snapshot[k] = e
	}
	m.mu.Unlock()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := m.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := m.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	if err = os.Rename(tmpFile, m.path); err != nil {
		return err
	}

	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	return nil
}
