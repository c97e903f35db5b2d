package testutil

import (
	"sync"
	"time"

	"rently/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// LogCount returns the number of recorded entries at the given level.
func (m *MockLogger) LogCount(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	CacheHits     int
	CacheMisses   int
	MetricWrites  map[string]int
	Recalls       int
	Notifications map[string]int
	Lockouts      int
	Pending       int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		MetricWrites:  make(map[string]int),
		Notifications: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncMetricWrites(metric string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetricWrites[metric]++
}

func (m *MockMetrics) IncRecalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recalls++
}

func (m *MockMetrics) IncNotifications(notificationType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[notificationType]++
}

func (m *MockMetrics) SetActiveLockouts(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lockouts = count
}

func (m *MockMetrics) SetPendingEvents(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pending = count
}

func (m *MockMetrics) MetricWriteCount(metric string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MetricWrites[metric]
}

func (m *MockMetrics) RecallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Recalls
}

func (m *MockMetrics) NotificationCount(notificationType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Notifications[notificationType]
}
