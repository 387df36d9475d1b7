// session_test.go: Tests for the session registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_Range(t *testing.T) {
	r := NewSessionRegistry(0)
	assert.Equal(t, uint32(SessionMax), r.Max())
	assert.False(t, r.InRange(0))
	assert.True(t, r.InRange(1))
	assert.False(t, r.InRange(2))

	r = NewSessionRegistry(4)
	assert.True(t, r.InRange(4))
	assert.False(t, r.InRange(5))
}

func TestSessionRegistry_MoveSemantics(t *testing.T) {
	r := NewSessionRegistry(2)

	first := r.acquire(FamilyHash, 1, "SHA256")
	assert.True(t, r.held(first))

	second := r.acquire(FamilyHash, 1, "SHA512")
	assert.False(t, r.held(first), "a newer owner revokes the older lease")
	assert.True(t, r.held(second))

	// Releasing a revoked lease leaves the current owner alone.
	r.release(first)
	assert.True(t, r.held(second))

	other := r.acquire(FamilyAEAD, 1, "AES-GCM ENCRYPT")
	assert.True(t, r.held(second), "families own separate slots")
	assert.True(t, r.held(other))

	sessions := r.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, FamilyAEAD, sessions[0].Family)
	assert.Equal(t, FamilyHash, sessions[1].Family)
	assert.Equal(t, "SHA512", sessions[1].Owner)
	assert.False(t, sessions[1].AcquiredAt.IsZero())

	r.release(second)
	r.release(other)
	assert.Empty(t, r.Sessions())
	assert.False(t, r.held(nil))
	r.release(nil)
}

func TestSessionRegistry_Concurrent(t *testing.T) {
	r := NewSessionRegistry(8)
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(id SessionID) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l := r.acquire(FamilySym, id, "AES-CBC ENCRYPT")
				if !r.held(l) {
					t.Errorf("slot %d lost to another id", id)
				}
				r.release(l)
			}
		}(SessionID(i))
	}
	wg.Wait()
	assert.Empty(t, r.Sessions())
}

func TestDispatcher_MultipleSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sessions.Max = 2
	d, err := NewDispatcher(cfg, WithLogger(NopLogger()))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), d.SessionMax())

	var a, b ShaContext
	require.NoError(t, d.ShaInit(&a, HandlerSWLibrary, HashSHA256, 1))
	require.NoError(t, d.ShaInit(&b, HandlerSWLibrary, HashSHA256, 2))
	require.NoError(t, ShaUpdate(&a, []byte("a")))
	require.NoError(t, ShaUpdate(&b, []byte("b")))
	assert.Len(t, d.Sessions(), 2)

	outA, outB := make([]byte, 32), make([]byte, 32)
	require.NoError(t, ShaFinal(&a, outA))
	require.NoError(t, ShaFinal(&b, outB))
	assert.Equal(t, sha256Hex(t, []byte("a")), hex.EncodeToString(outA))
	assert.Equal(t, sha256Hex(t, []byte("b")), hex.EncodeToString(outB))

	assert.ErrorIs(t, d.ShaInit(&a, HandlerSWLibrary, HashSHA256, 3), HashErrorSID)
}
