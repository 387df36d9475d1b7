// keyutils.go: Key utilities for import/export, zeroization, fingerprinting and EC key pairs.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cloudflare/circl/dh/x25519"
	"github.com/cloudflare/circl/dh/x448"
)

// AES key sizes accepted by every AEAD and symmetric entry point.
const (
	AES128KeySize = 16
	AES192KeySize = 24
	AES256KeySize = 32
)

func validAESKey(key []byte) bool {
	switch len(key) {
	case AES128KeySize, AES192KeySize, AES256KeySize:
		return true
	}
	return false
}

// KeyToHex encodes a key as a lowercase hexadecimal string.
func KeyToHex(key []byte) string {
	return hex.EncodeToString(key)
}

// KeyFromHex decodes a hexadecimal string to a key.
//
// Parameters:
//   - s: The hex-encoded string to decode
//
// Returns:
//   - The decoded key as a byte slice
//   - An error if the hexadecimal decoding fails
//
// Example:
//
//	key, err := crypto.KeyFromHex("77be63708971c4e240d1cb79e8d77feb")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Decoded key length:", len(key))
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, goerrors.Wrap(err, "HEX_DECODE_ERROR", "failed to decode hex key")
	}
	return key, nil
}

// Zeroize securely wipes a byte slice from memory.
//
// Backends call it on every scratch buffer holding key material, nonces or
// intermediate plaintext before the buffer goes out of scope.
//
// Note: This function modifies the original slice in place.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint returns the first 8 bytes of SHA-256(key) in hex, or ""
// for an empty key. It identifies keys in logs without exposing them.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}

// GenerateKey returns a random AES key of size bytes (16, 24 or 32).
func GenerateKey(size int) ([]byte, error) {
	if size != AES128KeySize && size != AES192KeySize && size != AES256KeySize {
		return nil, goerrors.New(ErrCodeKey, fmt.Sprintf("AES key size must be 16, 24 or 32 bytes, got %d", size))
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
	}
	return key, nil
}

// ValidateKey checks that key has an AES key size.
//
// Example:
//
//	if err := crypto.ValidateKey(key); err != nil {
//		log.Fatal("Invalid key:", err)
//	}
func ValidateKey(key []byte) error {
	if !validAESKey(key) {
		return goerrors.New(ErrCodeKey, fmt.Sprintf("AES key size must be 16, 24 or 32 bytes, got %d", len(key)))
	}
	return nil
}

// GenerateKeyPair returns a fresh private scalar and its uncompressed public
// point (0x04||X||Y) for a Weierstrass curve, or the raw u-coordinate for
// X25519 and X448.
//
// Example:
//
//	priv, pub, err := crypto.GenerateKeyPair(crypto.CurveP256)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer crypto.Zeroize(priv)
func GenerateKeyPair(curve EccCurve) (priv, pub []byte, err error) {
	switch curve {
	case CurveX25519:
		var sk, pk x25519.Key
		if _, err := io.ReadFull(rand.Reader, sk[:]); err != nil {
			return nil, nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
		}
		x25519.KeyGen(&pk, &sk)
		return sk[:], pk[:], nil
	case CurveX448:
		var sk, pk x448.Key
		if _, err := io.ReadFull(rand.Reader, sk[:]); err != nil {
			return nil, nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
		}
		x448.KeyGen(&pk, &sk)
		return sk[:], pk[:], nil
	case CurveSECP256K1:
		key, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
		}
		return key.Serialize(), key.PubKey().SerializeUncompressed(), nil
	}

	c := weierstrass(curve)
	if c == nil {
		return nil, nil, goerrors.New(ErrCodeCurve, fmt.Sprintf("unsupported curve %s", curve))
	}
	d, x, y, err := elliptic.GenerateKey(c, rand.Reader)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
	}
	return d, elliptic.Marshal(c, x, y), nil //nolint:staticcheck // raw point encoding is the wire format
}

// CompressPublicKey converts an uncompressed point (0x04||X||Y) to its
// compressed form (0x02|0x03||X). Compressed input is returned unchanged.
func CompressPublicKey(curve EccCurve, pub []byte) ([]byte, error) {
	if len(pub) > 0 && (pub[0] == 0x02 || pub[0] == 0x03) {
		return pub, nil
	}
	if curve == CurveSECP256K1 {
		key, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, goerrors.Wrap(err, ErrCodePublicKey, "failed to parse public key")
		}
		return key.SerializeCompressed(), nil
	}
	c := weierstrass(curve)
	if c == nil {
		return nil, goerrors.New(ErrCodeCurve, fmt.Sprintf("curve %s has no compressed encoding", curve))
	}
	x, y, err := decodePoint(c, pub)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodePublicKey, "failed to decode public key")
	}
	return elliptic.MarshalCompressed(c, x, y), nil
}
