// software_test.go: Tests for the software backend internals
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftware_BlockCache(t *testing.T) {
	s := NewSoftware(nil)
	key := bytes.Repeat([]byte{0x01}, 16)

	a, err := s.block(key)
	require.NoError(t, err)
	b, err := s.block(key)
	require.NoError(t, err)
	assert.Same(t, a, b, "same key reuses the key schedule")
	assert.Len(t, blockCacheKey(key), 64, "cache keys are key digests")

	s.ClearCache()
	c, err := s.block(key)
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	_, err = s.block(make([]byte, 7))
	assert.ErrorIs(t, err, ErrBackendArgument)
}

func TestSoftware_BlockCacheBound(t *testing.T) {
	s := NewSoftware(nil)
	for i := 0; i < blockCacheLimit+10; i++ {
		key := make([]byte, 16)
		key[0], key[1] = byte(i), byte(i>>8)
		_, err := s.block(key)
		require.NoError(t, err)
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	assert.LessOrEqual(t, len(s.cache), blockCacheLimit)
}

func TestSoftware_ConcurrentBlocks(t *testing.T) {
	s := NewSoftware(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := bytes.Repeat([]byte{byte(i % 4)}, 32)
			if _, err := s.block(key); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}

func TestSoftware_AEADStreamRules(t *testing.T) {
	s := NewSoftware(nil)
	key := make([]byte, 16)

	st, err := s.NewAEADStream(AeadModeGCM, CipherOpEncrypt, key, make([]byte, 12))
	require.NoError(t, err)
	require.NoError(t, st.AddAAD([]byte("a")))
	require.NoError(t, st.Cipher([]byte("xy"), make([]byte, 2)))
	assert.ErrorIs(t, st.AddAAD([]byte("b")), ErrBackendArgument)
	assert.ErrorIs(t, st.Cipher([]byte("z"), nil), ErrBackendArgument)

	tag := make([]byte, 16)
	require.NoError(t, st.Final(tag))
	assert.ErrorIs(t, st.Final(tag), ErrBackendArgument)
	assert.ErrorIs(t, st.Cipher(nil, nil), ErrBackendArgument)

	_, err = s.NewAEADStream(AeadModeCCM, CipherOpEncrypt, key, make([]byte, 12))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSoftware_CCMParameters(t *testing.T) {
	s := NewSoftware(nil)
	key := make([]byte, 16)

	err := s.SealAEAD(AeadModeCCM, key, make([]byte, 6), nil, []byte("x"), make([]byte, 1), make([]byte, 8))
	assert.ErrorIs(t, err, ErrBackendArgument, "nonce below 7 bytes")

	err = s.SealAEAD(AeadModeCCM, key, make([]byte, 13), nil, []byte("x"), make([]byte, 1), make([]byte, 5))
	assert.ErrorIs(t, err, ErrBackendArgument, "odd tag length")
}

func TestSoftware_HashKeyRules(t *testing.T) {
	s := NewSoftware(nil)

	_, err := s.NewDigest(HashSHA256, []byte{1}, 0)
	assert.ErrorIs(t, err, ErrBackendArgument)

	_, err = s.NewDigest(HashBLAKE2S, nil, 16)
	assert.ErrorIs(t, err, ErrBackendArgument)

	_, err = s.NewDigest(HashInvalid, nil, 0)
	assert.ErrorIs(t, err, ErrUnsupported)

	st, err := s.NewDigest(HashSHA1, nil, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, st.Sum(make([]byte, 21)), ErrBackendArgument)
}
