package session

import (
	"sync"

	"github.com/run-bigpig/nexus/internal/agent"
	"github.com/run-bigpig/nexus/internal/feedback"
	"github.com/run-bigpig/nexus/internal/models"
)

// Session 单个研究会话：对外视图 + 专家注册表 + 驱动它的反馈循环
type Session struct {
	mu      sync.Mutex
	info    models.SessionInfo
	agents  *agent.Container
	manager *feedback.LoopManager
}

// Info 会话视图快照
func (s *Session) Info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Agents 会话的专家注册表
func (s *Session) Agents() *agent.Container {
	return s.agents
}

// Manager 会话的反馈循环
func (s *Session) Manager() *feedback.LoopManager {
	return s.manager
}

// Store 会话存取接口
type Store interface {
	Put(s *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string) bool
	Len() int
}

// memoryStore 内存实现
// 会话与其反馈历史只存在于进程内，进程退出即丢失
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Store = &memoryStore{}

// NewMemoryStore 创建内存会话仓库
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*Session)}
}

func (m *memoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.info.SessionID] = s
}

func (m *memoryStore) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *memoryStore) Delete(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return false
	}
	delete(m.sessions, sessionID)
	return true
}

func (m *memoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
