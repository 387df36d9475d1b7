// software_ecc.go: ECDSA and ECDH on the software backend
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/agilira/harmony-crypto/accel"
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cloudflare/circl/dh/x25519"
	"github.com/cloudflare/circl/dh/x448"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// weierstrass returns the short Weierstrass arithmetic for a NIST curve.
func weierstrass(c EccCurve) elliptic.Curve {
	switch c {
	case CurveP192:
		return accel.P192()
	case CurveP224:
		return elliptic.P224()
	case CurveP256:
		return elliptic.P256()
	case CurveP384:
		return elliptic.P384()
	case CurveP521:
		return elliptic.P521()
	}
	return nil
}

// scalar left-pads priv to the order length and checks 1 <= d < n.
func scalar(curve elliptic.Curve, size int, priv []byte) (*big.Int, []byte, error) {
	if len(priv) == 0 || len(priv) > size {
		return nil, nil, fmt.Errorf("%w: scalar is %d bytes, want at most %d", ErrPrivateKey, len(priv), size)
	}
	d := new(big.Int).SetBytes(priv)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, nil, fmt.Errorf("%w: scalar out of range", ErrPrivateKey)
	}
	return d, d.FillBytes(make([]byte, size)), nil
}

// decodePoint accepts X9.63 compressed or uncompressed points.
func decodePoint(curve elliptic.Curve, pub []byte) (x, y *big.Int, err error) {
	size := (curve.Params().BitSize + 7) / 8
	switch {
	case len(pub) == 1+2*size && pub[0] == 0x04:
		x = new(big.Int).SetBytes(pub[1 : 1+size])
		y = new(big.Int).SetBytes(pub[1+size:])
	case len(pub) == 1+size && (pub[0] == 0x02 || pub[0] == 0x03):
		x, y = elliptic.UnmarshalCompressed(curve, pub)
		if x == nil {
			return nil, nil, fmt.Errorf("%w: cannot decompress point", ErrPublicKey)
		}
	default:
		return nil, nil, fmt.Errorf("%w: bad point encoding", ErrPublicKey)
	}
	p := curve.Params().P
	if x.Cmp(p) >= 0 || y.Cmp(p) >= 0 || !curve.IsOnCurve(x, y) {
		return nil, nil, fmt.Errorf("%w: point not on curve", ErrPublicKey)
	}
	return x, y, nil
}

func writeRS(sig []byte, size int, r, s *big.Int) {
	r.FillBytes(sig[:size])
	s.FillBytes(sig[size : 2*size])
}

// SignHash signs hash and writes r||s into sig.
func (s *Software) SignHash(curve EccCurve, priv, hash, sig []byte) error {
	size := curve.orderLen()
	if len(sig) < 2*size {
		return fmt.Errorf("%w: signature buffer too short", ErrBackendArgument)
	}

	if curve == CurveSECP256K1 {
		key, err := secp256k1Key(priv)
		if err != nil {
			return err
		}
		defer key.Zero()
		r, sv, err := parseDER(btcecdsa.Sign(key, hash).Serialize())
		if err != nil {
			return err
		}
		writeRS(sig, size, r, sv)
		return nil
	}

	ec := weierstrass(curve)
	if ec == nil {
		return fmt.Errorf("%w: %s cannot sign", ErrCurve, curve)
	}
	d, padded, err := scalar(ec, size, priv)
	if err != nil {
		return err
	}
	x, y := ec.ScalarBaseMult(padded)
	Zeroize(padded)
	key := &ecdsa.PrivateKey{PublicKey: ecdsa.PublicKey{Curve: ec, X: x, Y: y}, D: d}

	r, sv, err := ecdsa.Sign(rand.Reader, key, hash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	writeRS(sig, size, r, sv)
	return nil
}

// VerifyHash checks an r||s signature over hash.
func (s *Software) VerifyHash(curve EccCurve, pub, hash, sig []byte) (bool, error) {
	size := curve.orderLen()
	if curve == CurveSECP256K1 {
		key, err := btcec.ParsePubKey(pub)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrPublicKey, err)
		}
		if len(sig) != 2*size {
			return false, nil
		}
		der, err := buildDER(new(big.Int).SetBytes(sig[:size]), new(big.Int).SetBytes(sig[size:]))
		if err != nil {
			return false, nil
		}
		parsed, err := btcecdsa.ParseDERSignature(der)
		if err != nil {
			return false, nil
		}
		return parsed.Verify(hash, key), nil
	}

	ec := weierstrass(curve)
	if ec == nil {
		return false, fmt.Errorf("%w: %s cannot verify", ErrCurve, curve)
	}
	x, y, err := decodePoint(ec, pub)
	if err != nil {
		return false, err
	}
	if len(sig) != 2*size {
		return false, nil
	}
	r := new(big.Int).SetBytes(sig[:size])
	sv := new(big.Int).SetBytes(sig[size:])
	return ecdsa.Verify(&ecdsa.PublicKey{Curve: ec, X: x, Y: y}, hash, r, sv), nil
}

func secp256k1Key(priv []byte) (*btcec.PrivateKey, error) {
	if len(priv) == 0 || len(priv) > 32 {
		return nil, fmt.Errorf("%w: secp256k1 scalar must be at most 32 bytes", ErrPrivateKey)
	}
	var k btcec.ModNScalar
	if overflow := k.SetByteSlice(priv); overflow || k.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrPrivateKey)
	}
	return btcec.PrivKeyFromScalar(&k), nil
}

// parseDER extracts r and s from an ASN.1 ECDSA-Sig-Value.
func parseDER(der []byte) (r, s *big.Int, err error) {
	r, s = new(big.Int), new(big.Int)
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, nil, fmt.Errorf("%w: malformed DER signature", ErrBackendArgument)
	}
	return r, s, nil
}

func buildDER(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// SharedSecret writes the ECDH shared x-coordinate (or Montgomery u-coordinate) into secret.
func (s *Software) SharedSecret(curve EccCurve, priv, pub, secret []byte) (int, error) {
	size := curve.orderLen()
	if len(secret) < size {
		return 0, fmt.Errorf("%w: secret buffer too short", ErrBackendArgument)
	}

	switch curve {
	case CurveX25519:
		return montgomeryShared(priv, pub, secret, x25519.Size, func(sh, sk, pk []byte) bool {
			var shared, key, peer x25519.Key
			copy(key[:], sk)
			copy(peer[:], pk)
			defer Zeroize(key[:])
			ok := x25519.Shared(&shared, &key, &peer)
			copy(sh, shared[:])
			return ok
		})
	case CurveX448:
		return montgomeryShared(priv, pub, secret, x448.Size, func(sh, sk, pk []byte) bool {
			var shared, key, peer x448.Key
			copy(key[:], sk)
			copy(peer[:], pk)
			defer Zeroize(key[:])
			ok := x448.Shared(&shared, &key, &peer)
			copy(sh, shared[:])
			return ok
		})
	case CurveSECP256K1:
		key, err := secp256k1Key(priv)
		if err != nil {
			return 0, err
		}
		defer key.Zero()
		peer, err := btcec.ParsePubKey(pub)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrPublicKey, err)
		}
		shared := btcec.GenerateSharedSecret(key, peer)
		defer Zeroize(shared)
		return copy(secret, shared), nil
	case CurveP256, CurveP384, CurveP521:
		return nistECDH(curve, priv, pub, secret)
	}

	ec := weierstrass(curve)
	if ec == nil {
		return 0, fmt.Errorf("%w: %s cannot agree keys", ErrCurve, curve)
	}
	_, padded, err := scalar(ec, size, priv)
	if err != nil {
		return 0, err
	}
	defer Zeroize(padded)
	x, y, err := decodePoint(ec, pub)
	if err != nil {
		return 0, err
	}
	sx, sy := ec.ScalarMult(x, y, padded)
	if sx.Sign() == 0 && sy.Sign() == 0 {
		return 0, fmt.Errorf("%w: shared point at infinity", ErrPublicKey)
	}
	sx.FillBytes(secret[:size])
	return size, nil
}

// nistECDH runs crypto/ecdh after normalizing the peer point to uncompressed form.
func nistECDH(curve EccCurve, priv, pub, secret []byte) (int, error) {
	var kex ecdh.Curve
	switch curve {
	case CurveP256:
		kex = ecdh.P256()
	case CurveP384:
		kex = ecdh.P384()
	default:
		kex = ecdh.P521()
	}
	ec := weierstrass(curve)
	size := curve.orderLen()

	_, padded, err := scalar(ec, size, priv)
	if err != nil {
		return 0, err
	}
	defer Zeroize(padded)
	key, err := kex.NewPrivateKey(padded)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPrivateKey, err)
	}

	x, y, err := decodePoint(ec, pub)
	if err != nil {
		return 0, err
	}
	peer, err := kex.NewPublicKey(elliptic.Marshal(ec, x, y)) //nolint:staticcheck // point already validated
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPublicKey, err)
	}
	shared, err := key.ECDH(peer)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPublicKey, err)
	}
	defer Zeroize(shared)
	return copy(secret, shared), nil
}

func montgomeryShared(priv, pub, secret []byte, size int, shared func(sh, sk, pk []byte) bool) (int, error) {
	if len(priv) != size {
		return 0, fmt.Errorf("%w: scalar must be %d bytes", ErrPrivateKey, size)
	}
	if len(pub) != size {
		return 0, fmt.Errorf("%w: u-coordinate must be %d bytes", ErrPublicKey, size)
	}
	if !shared(secret[:size], priv, pub) {
		Zeroize(secret[:size])
		return 0, fmt.Errorf("%w: low order point", ErrPublicKey)
	}
	return size, nil
}
