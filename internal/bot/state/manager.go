package state

import (
	"sync"

	"github.com/vladimiradmaev/fluid-helper/internal/domain"
)

// Chat states
const (
	None            = "none"
	WaitingForLimit = "waiting_for_limit"
)

// StateManager keeps per-chat conversation state and the last logged batch
type StateManager interface {
	SetUserState(chatID int64, state string)
	GetUserState(chatID int64) string
	ClearUserState(chatID int64)

	SetLastBatch(chatID int64, refs []domain.RecordRef)
	GetLastBatch(chatID int64) ([]domain.RecordRef, bool)
	ClearLastBatch(chatID int64)
}

// Manager keeps state in process memory
type Manager struct {
	userStates  map[int64]string
	lastBatches map[int64][]domain.RecordRef
	mu          sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates:  make(map[int64]string),
		lastBatches: make(map[int64][]domain.RecordRef),
	}
}

// SetUserState sets the state for a chat
func (m *Manager) SetUserState(chatID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[chatID] = state
}

// GetUserState gets the state for a chat
func (m *Manager) GetUserState(chatID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[chatID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a chat
func (m *Manager) ClearUserState(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, chatID)
}

// SetLastBatch remembers the records created by the last message
func (m *Manager) SetLastBatch(chatID int64, refs []domain.RecordRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBatches[chatID] = append([]domain.RecordRef(nil), refs...)
}

// GetLastBatch returns the records created by the last message
func (m *Manager) GetLastBatch(chatID int64) ([]domain.RecordRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs, exists := m.lastBatches[chatID]
	if !exists || len(refs) == 0 {
		return nil, false
	}
	return append([]domain.RecordRef(nil), refs...), true
}

// ClearLastBatch forgets the last batch
func (m *Manager) ClearLastBatch(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastBatches, chatID)
}
