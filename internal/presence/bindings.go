// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package presence

import "sync"

// Bindings is a bidirectional connection<->username map.
//
// A connection is bound to at most one username and a username to at most
// one connection. Binding a username that is already held by another
// connection moves it (last writer wins); the old connection keeps no
// username.
type Bindings struct {
	mu     sync.Mutex
	byConn map[uint64]string
	byUser map[string]uint64
}

func NewBindings() *Bindings {
	return &Bindings{
		byConn: make(map[uint64]string),
		byUser: make(map[string]uint64),
	}
}

// Bind associates connID with username, dropping any previous pairing of
// either side.
func (b *Bindings) Bind(connID uint64, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.byConn[connID]; ok && prev != username {
		delete(b.byUser, prev)
	}
	if prevConn, ok := b.byUser[username]; ok && prevConn != connID {
		delete(b.byConn, prevConn)
	}
	b.byConn[connID] = username
	b.byUser[username] = connID
}

// Username returns the username bound to connID.
func (b *Bindings) Username(connID uint64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.byConn[connID]
	return u, ok
}

// Conn returns the connection currently holding username.
func (b *Bindings) Conn(username string) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.byUser[username]
	return c, ok
}

// Unbind clears connID and returns the username it held. ok is false when
// the connection held none, which is also the case after the username was
// rebound to a newer connection.
func (b *Bindings) Unbind(connID uint64) (username string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	username, ok = b.byConn[connID]
	if !ok {
		return "", false
	}
	delete(b.byConn, connID)
	if b.byUser[username] == connID {
		delete(b.byUser, username)
	}
	return username, true
}

func (b *Bindings) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byConn)
}
