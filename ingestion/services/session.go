package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// UploadSession holds everything one wizard run needs between HTTP calls, so
// going back to the mapping step never re-decodes the file. A session is
// single-flow: one upload is driven through its stages by one caller.
type UploadSession struct {
	ID         uuid.UUID
	OwnerScope uuid.UUID
	Actor      string
	FileName   string

	Headers  []string
	Rows     []RawRow
	Mappings []ColumnMapping
	Result   *ProcessingResult

	Uploading bool

	CreatedAt   time.Time
	LastTouched time.Time
}

// SessionRegistry is the in-memory home of live wizard sessions. Sessions are
// session-scoped by design (see the data lifecycle): abandoning one before
// upload is a pure discard.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*UploadSession
	ttl      time.Duration
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*UploadSession),
		ttl:      ttl,
	}
}

func (r *SessionRegistry) Create(ownerScope uuid.UUID, actor, fileName string, decoded *DecodeResult) *UploadSession {
	session := &UploadSession{
		ID:          uuid.New(),
		OwnerScope:  ownerScope,
		Actor:       actor,
		FileName:    fileName,
		Headers:     decoded.Headers,
		Rows:        decoded.Rows,
		Mappings:    decoded.Mappings,
		CreatedAt:   time.Now(),
		LastTouched: time.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session
}

func (r *SessionRegistry) Get(id uuid.UUID) (*UploadSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(session.LastTouched) > r.ttl {
		delete(r.sessions, id)
		return nil, false
	}
	session.LastTouched = time.Now()
	return session, true
}

func (r *SessionRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// PurgeExpired drops sessions idle past the TTL and reports how many went.
func (r *SessionRegistry) PurgeExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, session := range r.sessions {
		if time.Since(session.LastTouched) > r.ttl {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
