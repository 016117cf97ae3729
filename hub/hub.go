package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mc-hub/config"
	"github.com/mc-hub/database"
	"github.com/mc-hub/platform"
)

// Hub owns the registry of active game-server sessions and the platform
// side of the relay. One live ServerPeer per serverID; a reconnect
// supersedes the previous session instead of merging with it.
type Hub struct {
	config   *config.Config
	store    database.Store
	cache    database.UserCache
	platform platform.Client
	webhooks platform.Sender
	log      zerolog.Logger

	mu          sync.RWMutex
	serverPeers map[string]*ServerPeer

	quit chan struct{}
}

// NewHub NewHub
func NewHub(cfg *config.Config, store database.Store, cache database.UserCache, client platform.Client, webhooks platform.Sender, log zerolog.Logger) *Hub {
	if cache == nil {
		cache = database.NewNoopUserCache()
	}
	return &Hub{
		config:      cfg,
		store:       store,
		cache:       cache,
		platform:    client,
		webhooks:    webhooks,
		log:         log.With().Str("component", "hub").Logger(),
		serverPeers: make(map[string]*ServerPeer, 10),
		quit:        make(chan struct{}),
	}
}

// registerPeer installs a session, forcibly disconnecting any session
// already registered for the same serverID. Connections are not
// resumable; the new session carries its own freshly declared channels.
func (h *Hub) registerPeer(p *ServerPeer) {
	h.mu.Lock()
	old := h.serverPeers[p.serverID]
	h.serverPeers[p.serverID] = p
	h.mu.Unlock()

	if old != nil {
		h.log.Info().Str("server", p.serverID).Msg("superseding previous session")
		old.Close()
	}
	h.log.Info().Str("server", p.serverID).Str("conn", p.ConnID()).Msg("server connected")
}

// unregisterPeer evicts a session on disconnect. The identity guard
// keeps a stale session's teardown from evicting its successor.
func (h *Hub) unregisterPeer(p *ServerPeer) {
	h.mu.Lock()
	if h.serverPeers[p.serverID] == p {
		delete(h.serverPeers, p.serverID)
		h.mu.Unlock()
		h.log.Info().Str("server", p.serverID).Msg("server disconnected")
		return
	}
	h.mu.Unlock()
}

// lookupPeer returns the active session for a serverID, or nil.
func (h *Hub) lookupPeer(serverID string) *ServerPeer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.serverPeers[serverID]
}

// findVerifiedUser resolves a platform user's link on one server,
// consulting the cache first. Returns (nil, nil) for unlinked users.
func (h *Hub) findVerifiedUser(serverID, userID string) (*database.User, error) {
	if u, err := h.cache.GetUser(serverID, userID); err == nil && u != nil {
		return u, nil
	}
	u, err := h.store.FindUserByUserID(serverID, userID)
	if err != nil || u == nil {
		return u, err
	}
	if err := h.cache.SetUser(u); err != nil {
		h.log.Warn().Err(err).Msg("user cache set failed")
	}
	return u, nil
}

// invalidateUser drops a cached link after a link or unlink.
func (h *Hub) invalidateUser(serverID, userID string) {
	if err := h.cache.DelUser(serverID, userID); err != nil {
		h.log.Warn().Err(err).Msg("user cache invalidation failed")
	}
}

// Close tears down every active session and stops Run.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := make([]*ServerPeer, 0, len(h.serverPeers))
	for _, p := range h.serverPeers {
		peers = append(peers, p)
	}
	h.serverPeers = make(map[string]*ServerPeer)
	h.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
	close(h.quit)
}
