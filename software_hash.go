// software_hash.go: Hash functions on the software backend
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/md5"  // #nosec G501 -- MD5 is exposed for legacy interoperability
	"crypto/sha1" // #nosec G505 -- SHA-1 is exposed for legacy interoperability
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is a required algorithm
	"golang.org/x/crypto/sha3"
)

type hashDigest struct {
	h hash.Hash
}

func (d *hashDigest) Write(p []byte) error {
	_, err := d.h.Write(p)
	return err
}

func (d *hashDigest) Sum(out []byte) error {
	sum := d.h.Sum(nil)
	if len(out) > len(sum) {
		return fmt.Errorf("%w: digest is %d bytes", ErrBackendArgument, len(sum))
	}
	copy(out, sum)
	return nil
}

// shakeDigest squeezes as many bytes as the caller asks for.
type shakeDigest struct {
	h sha3.ShakeHash
}

func (d *shakeDigest) Write(p []byte) error {
	_, err := d.h.Write(p)
	return err
}

func (d *shakeDigest) Sum(out []byte) error {
	_, err := d.h.Read(out)
	return err
}

// NewDigest starts a hash computation. key is honored by BLAKE2 only; size
// is honored by BLAKE2B (1..64).
func (s *Software) NewDigest(algo HashAlgo, key []byte, size int) (DigestState, error) {
	if len(key) > 0 && algo != HashBLAKE2B && algo != HashBLAKE2S {
		return nil, fmt.Errorf("%w: %s is not keyed", ErrBackendArgument, algo)
	}

	var h hash.Hash
	switch algo {
	case HashMD5:
		h = md5.New() // #nosec G401
	case HashRIPEMD160:
		h = ripemd160.New()
	case HashSHA1:
		h = sha1.New() // #nosec G401
	case HashSHA224:
		h = sha256.New224()
	case HashSHA256:
		h = sha256.New()
	case HashSHA384:
		h = sha512.New384()
	case HashSHA512:
		h = sha512.New()
	case HashSHA512_224:
		h = sha512.New512_224()
	case HashSHA512_256:
		h = sha512.New512_256()
	case HashSHA3_224:
		h = sha3.New224()
	case HashSHA3_256:
		h = sha3.New256()
	case HashSHA3_384:
		h = sha3.New384()
	case HashSHA3_512:
		h = sha3.New512()
	case HashSHAKE128:
		return &shakeDigest{h: sha3.NewShake128()}, nil
	case HashSHAKE256:
		return &shakeDigest{h: sha3.NewShake256()}, nil
	case HashBLAKE2B:
		if size == 0 {
			size = blake2b.Size
		}
		var err error
		if h, err = blake2b.New(size, key); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
		}
	case HashBLAKE2S:
		if size != 0 && size != blake2s.Size {
			return nil, fmt.Errorf("%w: BLAKE2s digest must be %d bytes", ErrBackendArgument, blake2s.Size)
		}
		var err error
		if h, err = blake2s.New256(key); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendArgument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, algo)
	}
	return &hashDigest{h: h}, nil
}
