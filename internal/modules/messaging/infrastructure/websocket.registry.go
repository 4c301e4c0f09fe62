package infrastructure

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"chambaYaWs/internal/modules/messaging/application/port"
)

// Registry rastrea cada conexión viva por usuario. A user is present in the
// map exactly while it holds at least one connection; empty sets are removed
// on the spot so membership doubles as an online check.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]map[*Client]struct{})}
}

// Register binds the client to the user, creating the user's set on demand.
// A client re-registered under a different user is moved, never duplicated.
func (r *Registry) Register(userID string, c *Client) {
	userID = strings.TrimSpace(userID)
	if userID == "" || c == nil {
		return
	}
	r.mu.Lock()
	if previous := c.UserID(); previous != "" && previous != userID {
		r.removeLocked(previous, c)
	}
	c.setUser(userID)
	set := r.users[userID]
	if set == nil {
		set = make(map[*Client]struct{})
		r.users[userID] = set
	}
	set[c] = struct{}{}
	r.mu.Unlock()
	slog.Info("ws client registered", slog.String("userId", userID), slog.String("sessionId", c.SessionID()))
}

// Unregister removes the client from its user's set and deletes the set once
// empty. Calling it for an unknown or already removed client is a no-op.
func (r *Registry) Unregister(c *Client) {
	if c == nil {
		return
	}
	userID := c.UserID()
	if userID == "" {
		return
	}
	r.mu.Lock()
	removed := r.removeLocked(userID, c)
	r.mu.Unlock()
	if removed {
		slog.Info("ws client unregistered", slog.String("userId", userID), slog.String("sessionId", c.SessionID()))
	}
}

func (r *Registry) removeLocked(userID string, c *Client) bool {
	set, ok := r.users[userID]
	if !ok {
		return false
	}
	if _, member := set[c]; !member {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.users, userID)
	}
	return true
}

// Drop unregisters the client and closes its transport. Used when a write
// path decides the connection is dead.
func (r *Registry) Drop(c *Client) {
	if c == nil {
		return
	}
	r.Unregister(c)
	c.Close()
}

// ConnectionsFor returns a snapshot of the user's live connections.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	r.mu.RLock()
	set := r.users[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	r.mu.RUnlock()
	return clients
}

// Push queues the frame on every connection of the user. Saturated or closed
// connections are dropped; the count of accepted deliveries is returned.
func (r *Registry) Push(userID string, data []byte) int {
	delivered := 0
	for _, c := range r.ConnectionsFor(userID) {
		if c.Enqueue(data) {
			delivered++
			continue
		}
		slog.Warn("ws send buffer full, dropping client", slog.String("userId", userID), slog.String("sessionId", c.SessionID()))
		r.Drop(c)
	}
	return delivered
}

// PushAll fans the frame out to every connection of every user.
func (r *Registry) PushAll(data []byte) int {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.users))
	for _, set := range r.users {
		for c := range set {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if c.Enqueue(data) {
			delivered++
			continue
		}
		slog.Warn("ws send buffer full, dropping client", slog.String("userId", c.UserID()), slog.String("sessionId", c.SessionID()))
		r.Drop(c)
	}
	return delivered
}

// Online reports whether the user holds at least one live connection.
func (r *Registry) Online(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	r.mu.RLock()
	_, ok := r.users[userID]
	r.mu.RUnlock()
	return ok
}

// Users lists every connected user id in stable order.
func (r *Registry) Users() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// UserCount returns how many users are connected.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Len returns the total number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, set := range r.users {
		total += len(set)
	}
	return total
}

var _ port.ConnectionNotifier = (*Registry)(nil)
