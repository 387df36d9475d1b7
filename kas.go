// kas.go: ECDH key-agreement dispatch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// SharedSecretSize returns the ECDH secret length for curve: the field
// element size of the x-coordinate (u-coordinate for X25519 and X448).
func SharedSecretSize(curve EccCurve) int {
	if !curve.Valid() {
		return 0
	}
	return curve.orderLen()
}

func (d *Dispatcher) kasBackendError(step string, h HandlerType, err error) error {
	d.backendFailed(FamilyKAS, step, h, err)
	switch {
	case errors.Is(err, ErrPrivateKey):
		return failCause(KasErrorPrivKey, goerrors.New(ErrCodePrivateKey, "private key rejected"), err)
	case errors.Is(err, ErrPublicKey):
		return failCause(KasErrorPubKey, goerrors.New(ErrCodePublicKey, "public key rejected"), err)
	case errors.Is(err, ErrCurve):
		return failCause(KasErrorCurve, goerrors.New(ErrCodeCurve, "curve rejected"), err)
	case errors.Is(err, ErrUnsupported):
		return failCause(KasErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the request"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(KasErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(KasErrorFail, goerrors.New(ErrCodeBackend, "backend failure"), err)
}

// KasEcdhSharedSecret derives the ECDH shared secret of priv and the peer's
// pub and writes SharedSecretSize(curve) bytes into secret.
//
// Weierstrass peer keys may be compressed (0x02/0x03||X) or uncompressed
// (0x04||X||Y); both encodings of the same point yield the same secret.
// X25519 and X448 keys are raw little-endian u-coordinates.
//
// Parameters:
//   - handler: Backend selector
//   - priv: Private scalar, 1..EccMaxKeyLength bytes
//   - pub: Peer public key
//   - secret: Output buffer of at least SharedSecretSize(curve) bytes
//   - curve: Agreement curve
//   - sid: Session slot in [1, SessionMax]
//
// Returns:
//   - nil, or an error carrying a KasStatus (see KasStatusOf)
func (d *Dispatcher) KasEcdhSharedSecret(handler HandlerType, priv, pub, secret []byte, curve EccCurve, sid SessionID) error {
	if len(pub) == 0 {
		return fail(KasErrorPubKey, goerrors.New(ErrCodePublicKey, "public key is nil or empty"))
	}
	if len(priv) == 0 || len(priv) > EccMaxKeyLength {
		return fail(KasErrorPrivKey, goerrors.New(ErrCodePrivateKey, fmt.Sprintf("private key must be 1..%d bytes, got %d", EccMaxKeyLength, len(priv))))
	}
	if len(secret) == 0 {
		return fail(KasErrorOutputData, goerrors.New(ErrCodeOutput, "secret buffer is nil or empty"))
	}
	if !curve.Valid() {
		return fail(KasErrorCurve, goerrors.New(ErrCodeCurve, fmt.Sprintf("unknown curve %d", int(curve))))
	}
	if n := SharedSecretSize(curve); len(secret) < n {
		return fail(KasErrorOutputData, goerrors.New(ErrCodeOutput, fmt.Sprintf("%s secret needs %d bytes, got %d", curve, n, len(secret))))
	}
	if !curve.montgomery() {
		if tag := pub[0]; tag != PointUncompressed && tag != PointCompressedEven && tag != PointCompressedOdd {
			return fail(KasErrorPubKeyCompress, goerrors.New(ErrCodePublicKey, fmt.Sprintf("unknown point encoding 0x%02x", tag)))
		}
	}
	if err := checkSession(d, KasErrorSID, sid); err != nil {
		return err
	}
	if err := checkHandler(KasErrorHandler, handler); err != nil {
		return err
	}
	agreer, ok := capability[KeyAgreer](d, handler)
	if !ok {
		return notSupported(KasErrorNotSupported, "ECDH", handler)
	}

	step := "ECDH " + curve.String()
	d.route(FamilyKAS, step, handler)
	if _, err := agreer.SharedSecret(curve, priv, pub, secret); err != nil {
		return d.kasBackendError(step, handler, err)
	}
	return nil
}
