package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/domain"
)

// PresenceStore is the durable mirror of the registry.
type PresenceStore interface {
	UpsertOnline(id domain.IdentityID, handle, displayName string) error
	UpdateMedia(id domain.IdentityID, cameraOn, audioOn bool) error
	MarkOffline(id domain.IdentityID, handle string, at time.Time) error
	ListOnline() ([]domain.PresenceRecord, error)
}

// Hub owns every registry mutation. Each mutation, its presence-store write
// and the resulting broadcast run under one mutex, so no other event can
// observe the registry and the store out of step.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	presence PresenceStore
}

func NewHub(registry *Registry, presence PresenceStore) *Hub {
	return &Hub{registry: registry, presence: presence}
}

// Register binds a live connection to an identity, mirrors it to the
// presence store, pushes the new online snapshot to everyone and announces
// the join to everyone but the newcomer.
func (h *Hub) Register(handle HandleID, conn Conn, id domain.IdentityID, displayName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.Register(handle, conn, id, displayName)
	if err := h.presence.UpsertOnline(id, string(handle), displayName); err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("user", string(id)).Msg("presence upsert failed")
	}
	h.broadcastPresenceLocked()
	h.fanoutLocked(handle, struct {
		Type     string `json:"type"`
		FullName string `json:"fullName"`
	}{"user-joined", displayName})
}

// UpdateMedia flips the camera/mic flags of the session behind handle.
// An unknown handle is a silent no-op.
func (h *Hub) UpdateMedia(handle HandleID, cameraOn, audioOn bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.registry.UpdateMedia(handle, cameraOn, audioOn)
	if !ok {
		return
	}
	if err := h.presence.UpdateMedia(sess.IdentityID, cameraOn, audioOn); err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("user", string(sess.IdentityID)).Msg("presence media update failed")
	}
	h.broadcastPresenceLocked()
}

// Remove runs the disconnect path: registry cleanup, offline mark with the
// eviction timestamp, snapshot broadcast. Always safe to call, even for a
// connection that never registered.
func (h *Hub) Remove(handle HandleID) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.registry.Remove(handle)
	if !ok {
		return Session{}, false
	}
	if err := h.presence.MarkOffline(sess.IdentityID, string(handle), time.Now()); err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("user", string(sess.IdentityID)).Msg("presence offline mark failed")
	}
	h.broadcastPresenceLocked()
	return sess, true
}

// Session returns the session bound to a handle, if any.
func (h *Hub) Session(handle HandleID) (Session, bool) {
	return h.registry.Get(handle)
}

// OnlineUsers lists the durable presence rows currently online.
func (h *Hub) OnlineUsers() ([]domain.PresenceRecord, error) {
	return h.presence.ListOnline()
}

// Forward delivers v to the identity's live connection, if it has one.
// A miss is not an error: signaling is fire-and-forget and the sender is
// never notified.
func (h *Hub) Forward(to domain.IdentityID, v any) {
	conn, ok := h.registry.LookupByIdentity(to)
	if !ok {
		log.Debug().Str("module", "app.hub").Str("to", string(to)).Msg("route miss, dropped")
		return
	}
	h.send(conn, v)
}

// Broadcast pushes v to every live connection, best-effort per recipient.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanoutLocked("", v)
}

func (h *Hub) broadcastPresenceLocked() {
	online, err := h.presence.ListOnline()
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("presence list failed, skipping broadcast")
		return
	}
	h.fanoutLocked("", struct {
		Type  string                  `json:"type"`
		Users []domain.PresenceRecord `json:"users"`
	}{"users-updated", online})
}

func (h *Hub) fanoutLocked(except HandleID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("fanout marshal")
		return
	}
	for _, conn := range h.registry.Conns(except) {
		// A slow or dead recipient only loses its own frame.
		if err := conn.TrySend(b); err != nil {
			log.Warn().Err(err).Str("module", "app.hub").Msg("fanout drop")
		}
	}
}

func (h *Hub) send(conn Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("send marshal")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Msg("send drop")
	}
}
