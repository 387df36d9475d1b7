// software_sym.go: AES block modes and RFC 3394 key wrap on the software backend
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/xts"
)

// symStream adapts the standard library block modes to SymStream.
type symStream struct {
	mode   SymMode
	op     CipherOperation
	block  cipher.Block
	blocks cipher.BlockMode // CBC
	stream cipher.Stream    // CFB, OFB, CTR
	xts    *xts.Cipher
	sector uint64
}

// NewSymStream starts a block-cipher operation. Chaining state carries over
// between Cipher calls; XTS advances its sector number on every call.
func (s *Software) NewSymStream(mode SymMode, op CipherOperation, key, iv []byte) (SymStream, error) {
	st := &symStream{mode: mode, op: op}

	if mode == SymModeXTS {
		c, err := xts.NewCipher(aes.NewCipher, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
		}
		st.xts = c
		return st, nil
	}

	b, err := s.block(key)
	if err != nil {
		return nil, err
	}
	st.block = b
	if mode.usesIV() && len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: IV must be %d bytes", ErrBackendArgument, aes.BlockSize)
	}

	encrypt := op == CipherOpEncrypt
	switch mode {
	case SymModeECB:
	case SymModeCBC:
		if encrypt {
			st.blocks = cipher.NewCBCEncrypter(b, iv)
		} else {
			st.blocks = cipher.NewCBCDecrypter(b, iv)
		}
	case SymModeCFB:
		if encrypt {
			st.stream = cipher.NewCFBEncrypter(b, iv) //nolint:staticcheck // CFB is a required mode
		} else {
			st.stream = cipher.NewCFBDecrypter(b, iv) //nolint:staticcheck
		}
	case SymModeOFB:
		st.stream = cipher.NewOFB(b, iv) //nolint:staticcheck // OFB is a required mode
	case SymModeCTR:
		st.stream = cipher.NewCTR(b, iv)
	default:
		return nil, fmt.Errorf("%w: mode %s", ErrUnsupported, mode)
	}
	return st, nil
}

func (st *symStream) Cipher(in, out []byte) error {
	if len(out) < len(in) {
		return fmt.Errorf("%w: output shorter than input", ErrBackendArgument)
	}
	if st.stream != nil {
		st.stream.XORKeyStream(out[:len(in)], in)
		return nil
	}
	if len(in)%aes.BlockSize != 0 {
		return fmt.Errorf("%w: %s needs whole %d-byte blocks", ErrBackendArgument, st.mode, aes.BlockSize)
	}

	switch {
	case st.xts != nil:
		if st.op == CipherOpEncrypt {
			st.xts.Encrypt(out[:len(in)], in, st.sector)
		} else {
			st.xts.Decrypt(out[:len(in)], in, st.sector)
		}
		st.sector++
	case st.blocks != nil:
		st.blocks.CryptBlocks(out[:len(in)], in)
	default:
		for i := 0; i < len(in); i += aes.BlockSize {
			if st.op == CipherOpEncrypt {
				st.block.Encrypt(out[i:i+aes.BlockSize], in[i:i+aes.BlockSize])
			} else {
				st.block.Decrypt(out[i:i+aes.BlockSize], in[i:i+aes.BlockSize])
			}
		}
	}
	return nil
}

// keyWrapIV is the RFC 3394 default initial value.
var keyWrapIV = []byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

func checkWrapIV(iv []byte) error {
	if iv != nil && !bytes.Equal(iv, keyWrapIV) {
		return fmt.Errorf("%w: only the RFC 3394 default IV is supported", ErrUnsupported)
	}
	return nil
}

// WrapKey wraps in (a multiple of 8 bytes, at least 16) under kek.
func (s *Software) WrapKey(kek, iv, in []byte) ([]byte, error) {
	if err := checkWrapIV(iv); err != nil {
		return nil, err
	}
	if len(in)%8 != 0 || len(in) < 16 {
		return nil, fmt.Errorf("%w: key data must be a multiple of 8 bytes and at least 16", ErrBackendArgument)
	}
	b, err := s.block(kek)
	if err != nil {
		return nil, err
	}

	n := len(in) / 8
	out := make([]byte, 8+len(in))
	copy(out[8:], in)
	a := make([]byte, 8)
	copy(a, keyWrapIV)

	buf := make([]byte, 16)
	for j := 0; j < 6; j++ {
		for i := 1; i <= n; i++ {
			r := out[8*i : 8*i+8]
			copy(buf[:8], a)
			copy(buf[8:], r)
			b.Encrypt(buf, buf)

			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(a, binary.BigEndian.Uint64(buf[:8])^t)
			copy(r, buf[8:])
		}
	}
	copy(out[:8], a)
	Zeroize(buf)
	return out, nil
}

// UnwrapKey reverses WrapKey and checks the integrity value.
func (s *Software) UnwrapKey(kek, iv, in []byte) ([]byte, error) {
	if err := checkWrapIV(iv); err != nil {
		return nil, err
	}
	if len(in)%8 != 0 || len(in) < 24 {
		return nil, fmt.Errorf("%w: wrapped data must be a multiple of 8 bytes and at least 24", ErrBackendArgument)
	}
	b, err := s.block(kek)
	if err != nil {
		return nil, err
	}

	n := len(in)/8 - 1
	out := make([]byte, len(in)-8)
	copy(out, in[8:])
	a := make([]byte, 8)
	copy(a, in[:8])

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			r := out[8*(i-1) : 8*i]
			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(buf[:8], binary.BigEndian.Uint64(a)^t)
			copy(buf[8:], r)
			b.Decrypt(buf, buf)

			copy(a, buf[:8])
			copy(r, buf[8:])
		}
	}
	Zeroize(buf)

	if subtle.ConstantTimeCompare(a, keyWrapIV) != 1 {
		Zeroize(out)
		return nil, ErrAuthentication
	}
	return out, nil
}
