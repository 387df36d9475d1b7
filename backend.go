// backend.go: Capability interfaces implemented by crypto backends
//
// A backend advertises the handler it serves and implements any subset of
// the capability interfaces below. The dispatcher asserts the capability a
// call needs; a registered backend that lacks it yields the family's
// NOT_SUPPORTED status.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

// Backend is the common part of every backend.
type Backend interface {
	Handler() HandlerType
	Name() string
}

// AEADStream is backend state for one streaming AEAD operation.
type AEADStream interface {
	// AddAAD appends associated data. It fails once Cipher has been called.
	AddAAD(aad []byte) error
	// Cipher transforms in into out (len(out) >= len(in)).
	Cipher(in, out []byte) error
	// Final writes the tag when encrypting or verifies it when decrypting.
	Final(tag []byte) error
}

// AEADStreamer starts streaming AEAD operations.
type AEADStreamer interface {
	NewAEADStream(mode AeadMode, op CipherOperation, key, iv []byte) (AEADStream, error)
}

// AEADSealer runs whole AEAD operations in one call. The tag length is len(tag).
type AEADSealer interface {
	SealAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error
	OpenAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error
}

// SymStream is backend state for one block-cipher operation.
type SymStream interface {
	Cipher(in, out []byte) error
}

// SymCipherer starts block-cipher operations.
type SymCipherer interface {
	NewSymStream(mode SymMode, op CipherOperation, key, iv []byte) (SymStream, error)
}

// KeyWrapper implements RFC 3394 key wrapping. A nil iv selects the default IV.
type KeyWrapper interface {
	WrapKey(kek, iv, in []byte) ([]byte, error)
	UnwrapKey(kek, iv, in []byte) ([]byte, error)
}

// DigestState is backend state for one hash computation.
type DigestState interface {
	Write(p []byte) error
	// Sum writes the digest into out, which is exactly the digest length.
	Sum(out []byte) error
}

// Hasher starts hash computations. key is used by keyed algorithms (BLAKE2)
// and size by variable-length ones (SHAKE, BLAKE2); zero selects the default.
type Hasher interface {
	NewDigest(algo HashAlgo, key []byte, size int) (DigestState, error)
}

// Signer produces and checks ECDSA signatures in r||s form.
type Signer interface {
	SignHash(curve EccCurve, priv, hash, sig []byte) error
	// VerifyHash returns false with a nil error for a well-formed signature
	// that does not verify.
	VerifyHash(curve EccCurve, pub, hash, sig []byte) (bool, error)
}

// KeyAgreer derives ECDH shared secrets. It returns the secret length written.
type KeyAgreer interface {
	SharedSecret(curve EccCurve, priv, pub, secret []byte) (int, error)
}

// RandomGenerator fills out with random bytes. nonce may be nil.
type RandomGenerator interface {
	Generate(out, nonce []byte) error
}
