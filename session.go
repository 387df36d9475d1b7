// session.go: Session registry scoping streaming contexts to numbered slots
//
// Each dispatch family owns Max slots. A streaming Init takes the slot with
// single-owner move semantics: a newer Init on the same slot revokes the lease
// of the older context, whose next call then fails with a context error.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"sort"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// SessionID names a session slot. Valid ids are 1..Max.
type SessionID uint32

// Family groups the operations that share session slots.
type Family int

const (
	FamilyAEAD Family = iota + 1
	FamilySym
	FamilyHash
	FamilyDigSign
	FamilyKAS
	FamilyRNG
)

func (f Family) String() string {
	return statusText([]string{"INVALID", "AEAD", "SYM", "HASH", "DIGSIGN", "KAS", "RNG"}, int(f))
}

type slotKey struct {
	family Family
	id     SessionID
}

// lease is a context's claim on a slot.
type lease struct {
	key        slotKey
	generation uint64
	owner      string
	acquiredAt time.Time
}

// SessionInfo describes an active lease.
type SessionInfo struct {
	Family     Family    `json:"family"`
	ID         SessionID `json:"id"`
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// SessionRegistry tracks which context currently owns each slot.
type SessionRegistry struct {
	mu         sync.Mutex
	max        uint32
	generation uint64
	slots      map[slotKey]*lease
}

// NewSessionRegistry creates a registry with max slots per family (minimum 1).
func NewSessionRegistry(max uint32) *SessionRegistry {
	if max == 0 {
		max = SessionMax
	}
	return &SessionRegistry{
		max:   max,
		slots: make(map[slotKey]*lease),
	}
}

// Max returns the number of slots per family.
func (r *SessionRegistry) Max() uint32 { return r.max }

// InRange reports whether id names an existing slot.
func (r *SessionRegistry) InRange(id SessionID) bool {
	return id >= 1 && uint32(id) <= r.max
}

// acquire hands the slot to a new owner, revoking any previous lease.
func (r *SessionRegistry) acquire(family Family, id SessionID, owner string) *lease {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	l := &lease{
		key:        slotKey{family: family, id: id},
		generation: r.generation,
		owner:      owner,
		acquiredAt: timecache.CachedTime().UTC(),
	}
	r.slots[l.key] = l
	return l
}

// held reports whether l is still the current owner of its slot.
func (r *SessionRegistry) held(l *lease) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.slots[l.key]
	return ok && cur.generation == l.generation
}

// release frees the slot if l still owns it.
func (r *SessionRegistry) release(l *lease) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.slots[l.key]; ok && cur.generation == l.generation {
		delete(r.slots, l.key)
	}
}

// Sessions lists the active leases ordered by family and id.
func (r *SessionRegistry) Sessions() []SessionInfo {
	r.mu.Lock()
	out := make([]SessionInfo, 0, len(r.slots))
	for k, l := range r.slots {
		out = append(out, SessionInfo{Family: k.family, ID: k.id, Owner: l.owner, AcquiredAt: l.acquiredAt})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].ID < out[j].ID
	})
	return out
}
