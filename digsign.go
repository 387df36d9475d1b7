// digsign.go: ECDSA signature dispatch
//
// Signatures are r||s with each half padded to the curve order length.
// Verify reports the verdict separately from the call outcome: a nil error
// with VerdictFail means the signature was checked and rejected.
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

// Public key encoding tags (ANSI X9.63).
const (
	PointUncompressed   = 0x04
	PointCompressedEven = 0x02
	PointCompressedOdd  = 0x03
)

// SignatureSize returns the r||s length for curve, or 0 for curves that do
// not sign.
func SignatureSize(curve EccCurve) int {
	if !curve.Valid() || curve.montgomery() {
		return 0
	}
	return 2 * curve.orderLen()
}

func (d *Dispatcher) digSignBackendError(step string, h HandlerType, err error) error {
	d.backendFailed(FamilyDigSign, step, h, err)
	switch {
	case errors.Is(err, ErrPrivateKey):
		return failCause(DigSignErrorPrivKey, goerrors.New(ErrCodePrivateKey, "private key rejected"), err)
	case errors.Is(err, ErrPublicKey):
		return failCause(DigSignErrorPubKey, goerrors.New(ErrCodePublicKey, "public key rejected"), err)
	case errors.Is(err, ErrCurve):
		return failCause(DigSignErrorCurve, goerrors.New(ErrCodeCurve, "curve rejected"), err)
	case errors.Is(err, ErrEntropy):
		return failCause(DigSignErrorRNG, goerrors.New(ErrCodeBackend, "nonce generation failed"), err)
	case errors.Is(err, ErrUnsupported):
		return failCause(DigSignErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the request"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(DigSignErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(DigSignErrorFail, goerrors.New(ErrCodeBackend, "backend failure"), err)
}

func checkDigSignCurve(curve EccCurve) error {
	if !curve.Valid() {
		return fail(DigSignErrorCurve, goerrors.New(ErrCodeCurve, fmt.Sprintf("unknown curve %d", int(curve))))
	}
	return nil
}

func checkSigBuffer(sig []byte) error {
	if len(sig) == 0 {
		return fail(DigSignErrorSignature, goerrors.New(ErrCodeSignature, "signature is nil or empty"))
	}
	return nil
}

// signer resolves the backend after the session and handler checks.
func (d *Dispatcher) signer(h HandlerType, curve EccCurve, sid SessionID) (Signer, error) {
	if err := checkSession(d, DigSignErrorSID, sid); err != nil {
		return nil, err
	}
	if err := checkHandler(DigSignErrorHandler, h); err != nil {
		return nil, err
	}
	if curve.montgomery() {
		return nil, notSupported(DigSignErrorNotSupported, "ECDSA over "+curve.String(), h)
	}
	s, ok := capability[Signer](d, h)
	if !ok {
		return nil, notSupported(DigSignErrorNotSupported, "ECDSA", h)
	}
	return s, nil
}

func (d *Dispatcher) signPrecheck(h HandlerType, sig, priv []byte, curve EccCurve, sid SessionID) (Signer, error) {
	if err := checkSigBuffer(sig); err != nil {
		return nil, err
	}
	if err := checkDigSignCurve(curve); err != nil {
		return nil, err
	}
	if len(priv) == 0 {
		return nil, fail(DigSignErrorPrivKey, goerrors.New(ErrCodePrivateKey, "private key is nil or empty"))
	}
	s, err := d.signer(h, curve, sid)
	if err != nil {
		return nil, err
	}
	if len(sig) < SignatureSize(curve) {
		return nil, fail(DigSignErrorSignature, goerrors.New(ErrCodeSignature, fmt.Sprintf("%s signature needs %d bytes, got %d", curve, SignatureSize(curve), len(sig))))
	}
	if len(priv) > curve.orderLen() {
		return nil, fail(DigSignErrorPrivKey, goerrors.New(ErrCodePrivateKey, fmt.Sprintf("%s private key is at most %d bytes, got %d", curve, curve.orderLen(), len(priv))))
	}
	return s, nil
}

func (d *Dispatcher) verifyPrecheck(h HandlerType, sig, pub []byte, curve EccCurve, sid SessionID) (Signer, error) {
	if err := checkSigBuffer(sig); err != nil {
		return nil, err
	}
	if err := checkDigSignCurve(curve); err != nil {
		return nil, err
	}
	if len(pub) == 0 {
		return nil, fail(DigSignErrorPubKey, goerrors.New(ErrCodePublicKey, "public key is nil or empty"))
	}
	if !curve.montgomery() {
		if tag := pub[0]; tag != PointUncompressed && tag != PointCompressedEven && tag != PointCompressedOdd {
			return nil, fail(DigSignErrorPubKeyCompress, goerrors.New(ErrCodePublicKey, fmt.Sprintf("unknown point encoding 0x%02x", tag)))
		}
	}
	return d.signer(h, curve, sid)
}

// DigSignSign signs a precomputed hash with an ECDSA private scalar.
//
// Parameters:
//   - handler: Backend selector
//   - hash: Message digest, truncated to the order length by the backend
//   - sig: Output buffer of at least SignatureSize(curve) bytes
//   - priv: Big-endian private scalar of at most the order length
//   - curve: Signing curve
//   - sid: Session slot in [1, SessionMax]
//
// Returns:
//   - nil, or an error carrying a DigSignStatus (see DigSignStatusOf)
//
// The hardware path draws its per-signature nonce from the accelerator
// TRNG; the software path uses the library's hedged nonce.
func (d *Dispatcher) DigSignSign(handler HandlerType, hash, sig, priv []byte, curve EccCurve, sid SessionID) error {
	if len(hash) == 0 {
		return fail(DigSignErrorInputHash, goerrors.New(ErrCodeInput, "hash is nil or empty"))
	}
	s, err := d.signPrecheck(handler, sig, priv, curve, sid)
	if err != nil {
		return err
	}
	step := "ECDSA sign " + curve.String()
	d.route(FamilyDigSign, step, handler)
	if err := s.SignHash(curve, priv, hash, sig); err != nil {
		return d.digSignBackendError(step, handler, err)
	}
	return nil
}

// DigSignVerify checks an r||s signature over a precomputed hash. The public
// key is 0x04||X||Y or 0x02/0x03||X.
//
// Example:
//
//	verdict, err := d.DigSignVerify(crypto.HandlerSWLibrary, hash, sig, pub, crypto.CurveP256, 1)
//	if err != nil {
//		return err
//	}
//	if verdict != crypto.VerdictPass {
//		return errBadSignature
//	}
func (d *Dispatcher) DigSignVerify(handler HandlerType, hash, sig, pub []byte, curve EccCurve, sid SessionID) (VerifyVerdict, error) {
	if len(hash) == 0 {
		return VerdictUnknown, fail(DigSignErrorInputHash, goerrors.New(ErrCodeInput, "hash is nil or empty"))
	}
	s, err := d.verifyPrecheck(handler, sig, pub, curve, sid)
	if err != nil {
		return VerdictUnknown, err
	}
	return d.verify(s, handler, hash, sig, pub, curve)
}

func (d *Dispatcher) verify(s Signer, h HandlerType, hash, sig, pub []byte, curve EccCurve) (VerifyVerdict, error) {
	step := "ECDSA verify " + curve.String()
	d.route(FamilyDigSign, step, h)
	ok, err := s.VerifyHash(curve, pub, hash, sig)
	if err != nil {
		return VerdictUnknown, d.digSignBackendError(step, h, err)
	}
	if !ok {
		return VerdictFail, nil
	}
	return VerdictPass, nil
}

// messageHash hashes data on the software backend for SignData/VerifyData.
func (d *Dispatcher) messageHash(h HandlerType, data []byte, algo HashAlgo) ([]byte, error) {
	if len(data) == 0 {
		return nil, fail(DigSignErrorInputData, goerrors.New(ErrCodeInput, "data is nil or empty"))
	}
	if !algo.Valid() {
		return nil, fail(DigSignErrorHashType, goerrors.New(ErrCodeAlgorithm, fmt.Sprintf("unknown hash algorithm %d", int(algo))))
	}
	if h.Valid() && h != HandlerSWLibrary {
		return nil, notSupported(DigSignErrorNotSupported, "sign/verify over raw data", h)
	}
	hasher, ok := capability[Hasher](d, HandlerSWLibrary)
	if !ok {
		return nil, notSupported(DigSignErrorNotSupported, algo.String(), HandlerSWLibrary)
	}
	size := HashSize(algo)
	st, err := hasher.NewDigest(algo, nil, size)
	if err == nil {
		err = st.Write(data)
	}
	digest := make([]byte, size)
	if err == nil {
		err = st.Sum(digest)
	}
	if err != nil {
		d.backendFailed(FamilyDigSign, algo.String(), HandlerSWLibrary, err)
		return nil, failCause(DigSignErrorHashType, goerrors.New(ErrCodeAlgorithm, "message hash failed"), err)
	}
	return digest, nil
}

// DigSignSignData hashes data with algo and signs the digest. Only the
// software backend signs raw data.
func (d *Dispatcher) DigSignSignData(handler HandlerType, data []byte, algo HashAlgo, sig, priv []byte, curve EccCurve, sid SessionID) error {
	hash, err := d.messageHash(handler, data, algo)
	if err != nil {
		return err
	}
	return d.DigSignSign(handler, hash, sig, priv, curve, sid)
}

// DigSignVerifyData hashes data with algo and verifies sig over the digest.
func (d *Dispatcher) DigSignVerifyData(handler HandlerType, data []byte, algo HashAlgo, sig, pub []byte, curve EccCurve, sid SessionID) (VerifyVerdict, error) {
	hash, err := d.messageHash(handler, data, algo)
	if err != nil {
		return VerdictUnknown, err
	}
	return d.DigSignVerify(handler, hash, sig, pub, curve, sid)
}
