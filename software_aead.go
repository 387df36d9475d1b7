// software_aead.go: AES-GCM, AES-CCM and AES-EAX on the software backend
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/ProtonMail/go-crypto/eax"
	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

const fullTagSize = 16

// ctrAEAD builds a GCM or EAX instance producing full 16-byte tags. Both are
// counter-mode constructions, so sealing a ciphertext with no AAD recovers
// the plaintext, and shorter tags are prefixes of the full tag.
func (s *Software) ctrAEAD(mode AeadMode, key []byte, nonceSize int) (cipher.AEAD, error) {
	b, err := s.block(key)
	if err != nil {
		return nil, err
	}
	var a cipher.AEAD
	switch mode {
	case AeadModeGCM:
		if nonceSize == 12 {
			a, err = cipher.NewGCM(b)
		} else {
			a, err = cipher.NewGCMWithNonceSize(b, nonceSize)
		}
	case AeadModeEAX:
		a, err = eax.NewEAXWithNonceAndTagSize(b, nonceSize, fullTagSize)
	default:
		return nil, fmt.Errorf("%w: %s is not a counter-mode AEAD", ErrUnsupported, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
	}
	return a, nil
}

// ctrStream buffers the message so the tag can be computed over everything
// passed to Cipher. It holds the plaintext when encrypting and the
// ciphertext when decrypting.
type ctrStream struct {
	aead    cipher.AEAD
	op      CipherOperation
	iv      []byte
	aad     []byte
	data    []byte
	ciphers bool
	done    bool
}

// NewAEADStream starts a streaming GCM or EAX operation.
func (s *Software) NewAEADStream(mode AeadMode, op CipherOperation, key, iv []byte) (AEADStream, error) {
	a, err := s.ctrAEAD(mode, key, len(iv))
	if err != nil {
		return nil, err
	}
	return &ctrStream{aead: a, op: op, iv: append([]byte(nil), iv...)}, nil
}

func (c *ctrStream) AddAAD(aad []byte) error {
	if c.done || c.ciphers {
		return fmt.Errorf("%w: AAD after cipher data", ErrBackendArgument)
	}
	c.aad = append(c.aad, aad...)
	return nil
}

// keystreamXOR returns data transformed by the counter keystream.
func (c *ctrStream) keystreamXOR(data []byte) []byte {
	return c.aead.Seal(nil, c.iv, data, nil)[:len(data)]
}

func (c *ctrStream) Cipher(in, out []byte) error {
	if c.done {
		return fmt.Errorf("%w: stream already finalized", ErrBackendArgument)
	}
	if len(out) < len(in) {
		return fmt.Errorf("%w: output shorter than input", ErrBackendArgument)
	}
	c.ciphers = true
	offset := len(c.data)
	c.data = append(c.data, in...)
	transformed := c.keystreamXOR(c.data)
	copy(out, transformed[offset:])
	Zeroize(transformed)
	return nil
}

func (c *ctrStream) Final(tag []byte) error {
	if c.done {
		return fmt.Errorf("%w: stream already finalized", ErrBackendArgument)
	}
	c.done = true
	defer Zeroize(c.data)

	plain := c.data
	if c.op == CipherOpDecrypt {
		plain = c.keystreamXOR(c.data)
		defer Zeroize(plain)
	}
	sealed := c.aead.Seal(nil, c.iv, plain, c.aad)
	full := sealed[len(plain):]

	if c.op == CipherOpEncrypt {
		copy(tag, full)
		return nil
	}
	if subtle.ConstantTimeCompare(full[:len(tag)], tag) != 1 {
		return ErrAuthentication
	}
	return nil
}

// SealAEAD encrypts in one call. len(tag) selects the tag length.
func (s *Software) SealAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error {
	if mode == AeadModeCCM {
		a, err := s.ccm(key, len(iv), len(tag))
		if err != nil {
			return err
		}
		sealed := a.Seal(nil, iv, in, aad)
		copy(out, sealed[:len(in)])
		copy(tag, sealed[len(in):])
		return nil
	}

	a, err := s.ctrAEAD(mode, key, len(iv))
	if err != nil {
		return err
	}
	sealed := a.Seal(nil, iv, in, aad)
	copy(out, sealed[:len(in)])
	copy(tag, sealed[len(in):])
	return nil
}

// OpenAEAD decrypts in one call. out is left untouched if the tag does not match.
func (s *Software) OpenAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error {
	if mode == AeadModeCCM {
		a, err := s.ccm(key, len(iv), len(tag))
		if err != nil {
			return err
		}
		sealed := make([]byte, 0, len(in)+len(tag))
		sealed = append(append(sealed, in...), tag...)
		plain, err := a.Open(nil, iv, sealed, aad)
		if err != nil {
			return ErrAuthentication
		}
		copy(out, plain)
		Zeroize(plain)
		return nil
	}

	a, err := s.ctrAEAD(mode, key, len(iv))
	if err != nil {
		return err
	}
	plain := a.Seal(nil, iv, in, nil)[:len(in)]
	defer Zeroize(plain)
	sealed := a.Seal(nil, iv, plain, aad)
	if subtle.ConstantTimeCompare(sealed[len(in):len(in)+len(tag)], tag) != 1 {
		return ErrAuthentication
	}
	copy(out, plain)
	return nil
}

func (s *Software) ccm(key []byte, nonceSize, tagSize int) (cipher.AEAD, error) {
	b, err := s.block(key)
	if err != nil {
		return nil, err
	}
	a, err := ccm.NewCCM(b, tagSize, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
	}
	return a, nil
}
