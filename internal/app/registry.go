// Package app holds the in-memory core of the hub: the connection registry,
// the presence/routing hub and the shared-file service.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/domain"
)

// HandleID identifies one live transport connection. Distinct from the
// identity using it: one identity may hold several handles at once.
type HandleID string

// Conn is the outbound side of a live connection. Delivery is best-effort:
// TrySend must not block.
type Conn interface {
	TrySend(frame []byte) error
}

// Session binds a live connection handle to an identity and its media flags.
type Session struct {
	IdentityID  domain.IdentityID
	DisplayName string
	CameraOn    bool
	AudioOn     bool
}

type sessionEntry struct {
	session Session
	conn    Conn
	seq     uint64
}

// Registry is the authoritative map of who is reachable right now.
// All mutation funnels through its methods; it is never exposed as a map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[HandleID]*sessionEntry
	seq      uint64
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[HandleID]*sessionEntry)}
}

// Register inserts or replaces the session for handle, media flags off.
func (r *Registry) Register(handle HandleID, conn Conn, id domain.IdentityID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.sessions[handle] = &sessionEntry{
		session: Session{IdentityID: id, DisplayName: displayName},
		conn:    conn,
		seq:     r.seq,
	}
	log.Info().Str("module", "app.registry").Str("handle", string(handle)).Str("user", string(id)).Msg("registered session")
}

// UpdateMedia mutates the session in place. A handle without a session is a
// silent no-op.
func (r *Registry) UpdateMedia(handle HandleID, cameraOn, audioOn bool) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[handle]
	if !ok {
		return Session{}, false
	}
	e.session.CameraOn = cameraOn
	e.session.AudioOn = audioOn
	return e.session, true
}

// Remove deletes the session if present and returns it for caller use.
func (r *Registry) Remove(handle HandleID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[handle]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, handle)
	log.Info().Str("module", "app.registry").Str("handle", string(handle)).Str("user", string(e.session.IdentityID)).Msg("removed session")
	return e.session, true
}

func (r *Registry) Get(handle HandleID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[handle]; ok {
		return e.session, true
	}
	return Session{}, false
}

// LookupByIdentity resolves an identity to a live connection. With several
// concurrent sessions for one identity the most-recently-registered handle
// wins; an explicit tie-break rather than map iteration order.
func (r *Registry) LookupByIdentity(id domain.IdentityID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *sessionEntry
	for _, e := range r.sessions {
		if e.session.IdentityID != id {
			continue
		}
		if best == nil || e.seq > best.seq {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best.conn, true
}

// Conns returns every live connection; except filters one handle out.
func (r *Registry) Conns(except HandleID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.sessions))
	for handle, e := range r.sessions {
		if handle == except {
			continue
		}
		out = append(out, e.conn)
	}
	return out
}

// Identities returns the distinct identities currently holding a session.
func (r *Registry) Identities() map[domain.IdentityID]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.IdentityID]struct{}, len(r.sessions))
	for _, e := range r.sessions {
		out[e.session.IdentityID] = struct{}{}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
