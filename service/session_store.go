package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-advisor/logger"
	"loan-advisor/metrics"
)

const minSessionCleanupInterval = time.Second

// SessionStore keeps conversations by session ID and evicts those idle for
// longer than the configured TTL.
type SessionStore struct {
	narrator    Narrator
	dataContext DataContextProvider
	logger      logger.Logger
	idleTTL     time.Duration

	mu          sync.Mutex
	sessions    map[string]*Conversation
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewSessionStore(narrator Narrator, dataContext DataContextProvider, idleTTL time.Duration, log logger.Logger) *SessionStore {
	s := &SessionStore{
		narrator:    narrator,
		dataContext: dataContext,
		logger:      log,
		idleTTL:     idleTTL,
		sessions:    make(map[string]*Conversation),
		stopCleanup: make(chan struct{}),
	}
	if idleTTL > 0 {
		go s.cleanupLoop()
	}
	return s
}

// Open returns the conversation for id, starting a new one under a fresh ID
// when id is empty or unknown.
func (s *SessionStore) Open(id string) (string, *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.sessions[id]; ok {
		return id, conv
	}

	id = uuid.NewString()
	conv := NewConversation(s.narrator, s.dataContext, s.logger.With(map[string]interface{}{"session_id": id}))
	s.sessions[id] = conv
	metrics.ChatSessionsActive.Inc()
	return id, conv
}

func (s *SessionStore) Get(id string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.sessions[id]
	return conv, ok
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(max(s.idleTTL/2, minSessionCleanupInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictIdle(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *SessionStore) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, conv := range s.sessions {
		if now.Sub(conv.LastActive()) > s.idleTTL {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.ChatSessionsActive.Sub(float64(evicted))
		s.logger.Debug("Evicted idle chat sessions", map[string]interface{}{"count": evicted})
	}
	return evicted
}
