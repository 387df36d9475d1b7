// gcm.go: AES-GCM engine with truncated tag support
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
)

const (
	gcmMinTag = 4
	gcmMaxTag = 16
)

func newGCM(key, iv []byte) (cipher.AEAD, Result) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrParam
	}
	if len(iv) == 0 {
		return nil, ErrParam
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrParam
	}
	var aead cipher.AEAD
	if len(iv) == 12 {
		aead, err = cipher.NewGCM(block)
	} else {
		aead, err = cipher.NewGCMWithNonceSize(block, len(iv))
	}
	if err != nil {
		return nil, ErrParam
	}
	return aead, OK
}

// GCMEncrypt encrypts in into out and writes a len(tag)-byte tag. The engine
// always computes the full 16-byte tag and truncates it.
func (e *Engine) GCMEncrypt(key, iv, aad, in, out, tag []byte) Result {
	if len(tag) < gcmMinTag || len(tag) > gcmMaxTag || len(out) < len(in) {
		return ErrParam
	}
	aead, res := newGCM(key, iv)
	if res != OK {
		return res
	}
	sealed := aead.Seal(nil, iv, in, aad)
	n := len(in)
	copy(out[:n], sealed[:n])
	copy(tag, sealed[n:])
	return OK
}

// GCMDecrypt decrypts in into out and checks tag. out is only written when
// the tag matches.
func (e *Engine) GCMDecrypt(key, iv, aad, in, out, tag []byte) Result {
	if len(tag) < gcmMinTag || len(tag) > gcmMaxTag || len(out) < len(in) {
		return ErrParam
	}
	aead, res := newGCM(key, iv)
	if res != OK {
		return res
	}
	n := len(in)
	// CTR keystream is symmetric, so sealing the ciphertext yields the plaintext.
	plain := aead.Seal(nil, iv, in, nil)[:n]
	resealed := aead.Seal(nil, iv, plain, aad)
	if subtle.ConstantTimeCompare(resealed[n:n+len(tag)], tag) != 1 {
		for i := range plain {
			plain[i] = 0
		}
		return ErrAuth
	}
	copy(out[:n], plain)
	return OK
}
