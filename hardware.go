// hardware.go: Hardware accelerator backend
//
// The accelerator provides AES-GCM (one-shot only), SHA-1/SHA-2, ECDSA and
// ECDH on the NIST prime curves, and a true random generator. Every other
// request is reported as unsupported.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"fmt"

	"github.com/agilira/harmony-crypto/accel"
)

// ErrAccelerator is returned when the accelerator reports a failure that has
// no more specific meaning.
var ErrAccelerator = errors.New("crypto: accelerator failure")

// AccelDriver is the register-level driver the hardware backend calls into.
// *accel.Engine implements it.
type AccelDriver interface {
	ECDSASign(ws *accel.Workspace, c accel.Curve, priv, hash, sig []byte) accel.Result
	ECDSAVerify(ws *accel.Workspace, c accel.Curve, pub, hash, sig []byte) (bool, accel.Result)
	ECDHSharedX(ws *accel.Workspace, c accel.Curve, priv, pub, out []byte) (int, accel.Result)
	SHAInit(a accel.SHAAlgo) (*accel.SHAState, accel.Result)
	GCMEncrypt(key, iv, aad, in, out, tag []byte) accel.Result
	GCMDecrypt(key, iv, aad, in, out, tag []byte) accel.Result
	Random(out []byte) accel.Result
}

// Hardware is the backend registered for HandlerHWInternal.
type Hardware struct {
	drv AccelDriver
}

// NewHardware wraps drv. A nil drv selects a fresh accel.Engine.
func NewHardware(drv AccelDriver) *Hardware {
	if drv == nil {
		drv = accel.New()
	}
	return &Hardware{drv: drv}
}

func (h *Hardware) Handler() HandlerType { return HandlerHWInternal }
func (h *Hardware) Name() string         { return "accelerator" }

// resultError maps a driver result onto the backend error set.
func resultError(r accel.Result) error {
	switch r {
	case accel.OK:
		return nil
	case accel.ErrParam:
		return ErrBackendArgument
	case accel.ErrCurve:
		return ErrCurve
	case accel.ErrPoint:
		return ErrPublicKey
	case accel.ErrScalar:
		return ErrPrivateKey
	case accel.ErrRNG:
		return ErrEntropy
	case accel.ErrAuth:
		return ErrAuthentication
	case accel.ErrNotSupported:
		return ErrUnsupported
	}
	return fmt.Errorf("%w: %s", ErrAccelerator, r)
}

func accelCurve(c EccCurve) (accel.Curve, bool) {
	switch c {
	case CurveP192:
		return accel.CurveP192, true
	case CurveP224:
		return accel.CurveP224, true
	case CurveP256:
		return accel.CurveP256, true
	case CurveP384:
		return accel.CurveP384, true
	case CurveP521:
		return accel.CurveP521, true
	}
	return 0, false
}

// padScalar left-pads priv to the order length the PKCC expects.
func padScalar(priv []byte, size int) ([]byte, error) {
	if len(priv) > size {
		return nil, fmt.Errorf("%w: scalar is %d bytes, want at most %d", ErrPrivateKey, len(priv), size)
	}
	out := make([]byte, size)
	copy(out[size-len(priv):], priv)
	return out, nil
}

// SupportsAEAD reports whether the GCM engine can run mode.
func (h *Hardware) SupportsAEAD(mode AeadMode) bool { return mode == AeadModeGCM }

func (h *Hardware) SealAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error {
	if mode != AeadModeGCM {
		return fmt.Errorf("%w: %s on accelerator", ErrUnsupported, mode)
	}
	return resultError(h.drv.GCMEncrypt(key, iv, aad, in, out, tag))
}

func (h *Hardware) OpenAEAD(mode AeadMode, key, iv, aad, in, out, tag []byte) error {
	if mode != AeadModeGCM {
		return fmt.Errorf("%w: %s on accelerator", ErrUnsupported, mode)
	}
	return resultError(h.drv.GCMDecrypt(key, iv, aad, in, out, tag))
}

type shaDigest struct {
	st *accel.SHAState
}

func (d *shaDigest) Write(p []byte) error { return resultError(d.st.Update(p)) }
func (d *shaDigest) Sum(out []byte) error { return resultError(d.st.Final(out)) }

// NewDigest starts a computation on the SHA block.
func (h *Hardware) NewDigest(algo HashAlgo, key []byte, size int) (DigestState, error) {
	var a accel.SHAAlgo
	switch algo {
	case HashSHA1:
		a = accel.SHA1
	case HashSHA224:
		a = accel.SHA224
	case HashSHA256:
		a = accel.SHA256
	case HashSHA384:
		a = accel.SHA384
	case HashSHA512:
		a = accel.SHA512
	default:
		return nil, fmt.Errorf("%w: %s on accelerator", ErrUnsupported, algo)
	}
	if len(key) > 0 {
		return nil, fmt.Errorf("%w: SHA block is not keyed", ErrBackendArgument)
	}
	st, r := h.drv.SHAInit(a)
	if r != accel.OK {
		return nil, resultError(r)
	}
	return &shaDigest{st: st}, nil
}

// SignHash draws the nonce from the TRNG and signs on the PKCC.
func (h *Hardware) SignHash(curve EccCurve, priv, hash, sig []byte) error {
	c, ok := accelCurve(curve)
	if !ok {
		return fmt.Errorf("%w: %s on accelerator", ErrUnsupported, curve)
	}
	d, err := padScalar(priv, curve.orderLen())
	if err != nil {
		return err
	}
	defer Zeroize(d)

	ws := accel.NewWorkspace()
	defer ws.Release()
	return resultError(h.drv.ECDSASign(ws, c, d, hash, sig))
}

func (h *Hardware) VerifyHash(curve EccCurve, pub, hash, sig []byte) (bool, error) {
	c, ok := accelCurve(curve)
	if !ok {
		return false, fmt.Errorf("%w: %s on accelerator", ErrUnsupported, curve)
	}
	if len(sig) != 2*curve.orderLen() {
		return false, nil
	}
	ws := accel.NewWorkspace()
	defer ws.Release()
	valid, r := h.drv.ECDSAVerify(ws, c, pub, hash, sig)
	return valid, resultError(r)
}

// SharedSecret decompresses the peer point, multiplies it on the PKCC and
// copies out the affine x-coordinate.
func (h *Hardware) SharedSecret(curve EccCurve, priv, pub, secret []byte) (int, error) {
	c, ok := accelCurve(curve)
	if !ok {
		return 0, fmt.Errorf("%w: %s on accelerator", ErrUnsupported, curve)
	}
	d, err := padScalar(priv, curve.orderLen())
	if err != nil {
		return 0, err
	}
	defer Zeroize(d)

	ws := accel.NewWorkspace()
	defer ws.Release()
	n, r := h.drv.ECDHSharedX(ws, c, d, pub, secret)
	return n, resultError(r)
}

// Generate reads the TRNG. The nonce has no effect on a true random source.
func (h *Hardware) Generate(out, nonce []byte) error {
	return resultError(h.drv.Random(out))
}
