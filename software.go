// software.go: Software library backend
//
// The software backend services every family. Block ciphers are cached per
// key so repeated streaming and direct calls skip the AES key schedule.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// blockCacheLimit bounds the number of cached AES key schedules.
const blockCacheLimit = 256

// Software is the backend registered for HandlerSWLibrary.
type Software struct {
	drbg *DRBG

	cacheMu sync.RWMutex
	cache   map[string]cipher.Block
}

// NewSoftware creates a software backend drawing DRBG seed material from src.
// A nil src selects DefaultEntropySource.
func NewSoftware(src EntropySource) *Software {
	return &Software{
		drbg:  NewDRBG(src),
		cache: make(map[string]cipher.Block),
	}
}

func (s *Software) Handler() HandlerType { return HandlerSWLibrary }
func (s *Software) Name() string         { return "software" }

// blockCacheKey identifies a key schedule without storing the key itself.
func blockCacheKey(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// block returns a cached AES block cipher for key, or creates one.
func (s *Software) block(key []byte) (cipher.Block, error) {
	id := blockCacheKey(key)

	s.cacheMu.RLock()
	if b, ok := s.cache[id]; ok {
		s.cacheMu.RUnlock()
		return b, nil
	}
	s.cacheMu.RUnlock()

	b, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
	}

	s.cacheMu.Lock()
	if len(s.cache) >= blockCacheLimit {
		clear(s.cache)
	}
	s.cache[id] = b
	s.cacheMu.Unlock()
	return b, nil
}

// ClearCache drops every cached key schedule.
func (s *Software) ClearCache() {
	s.cacheMu.Lock()
	clear(s.cache)
	s.cacheMu.Unlock()
}

func (s *Software) cachedBlocks() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache)
}
