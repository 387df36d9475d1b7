// aead.go: AES-GCM, AES-EAX and AES-CCM dispatch
//
// GCM and EAX follow the streaming protocol Init -> AddAadData* -> Cipher*
// -> Final, plus one-shot EncryptAuthDirect/DecryptAuthDirect. CCM binds a
// key at Init and runs every message through a single Cipher call.
//
// A nil slice means "absent". A non-nil slice of length zero is "present
// but empty", which the AAD and input checks reject.
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

// AEAD parameter bounds.
const (
	AeadMinTagSize  = 4
	AeadMaxTagSize  = 16
	CcmMinNonceSize = 7
	CcmMaxNonceSize = 13
)

// aeadContext is the state shared by the GCM and EAX streaming contexts.
type aeadContext struct {
	ctxBase
	mode   AeadMode
	op     CipherOperation
	key    []byte
	iv     []byte
	stream AEADStream
}

// AesGcmContext carries one streaming AES-GCM operation. The zero value is
// ready for AesGcmInit.
type AesGcmContext struct{ aeadContext }

// AesEaxContext carries one streaming AES-EAX operation. The zero value is
// ready for AesEaxInit.
type AesEaxContext struct{ aeadContext }

// AesCcmContext binds an AES key for any number of AesCcmCipher calls.
type AesCcmContext struct {
	ctxBase
	key    []byte
	sealer AEADSealer
}

// Reset releases the session slot and drops the backend state.
func (c *aeadContext) Reset() {
	c.ctxBase.Reset()
	c.mode, c.op = 0, 0
	c.key, c.iv, c.stream = nil, nil, nil
}

// Reset releases the session slot and forgets the key.
func (c *AesCcmContext) Reset() {
	c.ctxBase.Reset()
	c.key, c.sealer = nil, nil
}

func aeadNilContext() error {
	return fail(AeadErrorCipContext, goerrors.New(ErrCodeContext, "context is nil"))
}

func checkAeadKey(key []byte) error {
	if key == nil {
		return fail(AeadErrorKey, goerrors.New(ErrCodeKey, "key is nil"))
	}
	if err := ValidateKey(key); err != nil {
		return fail(AeadErrorKey, err)
	}
	return nil
}

func checkAAD(aad []byte) error {
	if aad != nil && len(aad) == 0 {
		return fail(AeadErrorAAD, goerrors.New(ErrCodeAAD, "AAD is present but empty"))
	}
	return nil
}

// checkAeadData applies the input/output presence rules shared by every
// AEAD entry point that moves message bytes.
func checkAeadData(in, out []byte) error {
	if in != nil && len(in) == 0 {
		return fail(AeadErrorInputData, goerrors.New(ErrCodeInput, "input is present but empty"))
	}
	if (in == nil) != (out == nil) {
		return fail(AeadErrorOutputData, goerrors.New(ErrCodeOutput, "input and output must be both present or both absent"))
	}
	if len(out) < len(in) {
		return fail(AeadErrorOutputData, goerrors.New(ErrCodeOutput, fmt.Sprintf("output holds %d bytes, input is %d", len(out), len(in))))
	}
	return nil
}

func checkTag(tag []byte, even bool) error {
	if tag == nil {
		return fail(AeadErrorAuthTag, goerrors.New(ErrCodeTag, "tag is nil"))
	}
	if len(tag) < AeadMinTagSize || len(tag) > AeadMaxTagSize {
		return fail(AeadErrorAuthTag, goerrors.New(ErrCodeTag, fmt.Sprintf("tag must be %d..%d bytes, got %d", AeadMinTagSize, AeadMaxTagSize, len(tag))))
	}
	if even && len(tag)%2 != 0 {
		return fail(AeadErrorAuthTag, goerrors.New(ErrCodeTag, fmt.Sprintf("CCM tag length must be even, got %d", len(tag))))
	}
	return nil
}

func checkAeadOp(op CipherOperation) error {
	if !op.valid() {
		return fail(AeadErrorCipOper, goerrors.New(ErrCodeDirection, fmt.Sprintf("unknown cipher operation %d", int(op))))
	}
	return nil
}

// aeadBackendError maps a backend failure onto the AEAD status set.
func (d *Dispatcher) aeadBackendError(op string, h HandlerType, err error) error {
	d.backendFailed(FamilyAEAD, op, h, err)
	switch {
	case errors.Is(err, ErrAuthentication):
		return failCause(AeadErrorCipFail, goerrors.New(ErrCodeTag, "authentication tag mismatch"), err)
	case errors.Is(err, ErrUnsupported):
		return failCause(AeadErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the request"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(AeadErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(AeadErrorCipFail, goerrors.New(ErrCodeBackend, "backend failure"), err)
}

// aeadSealer finds a one-shot AEAD backend able to run mode.
func (d *Dispatcher) aeadSealer(mode AeadMode, h HandlerType) (AEADSealer, error) {
	sealer, ok := capability[AEADSealer](d, h)
	if !ok {
		return nil, notSupported(AeadErrorNotSupported, mode.String(), h)
	}
	if ms, ok := sealer.(aeadModeSupporter); ok && !ms.SupportsAEAD(mode) {
		return nil, notSupported(AeadErrorNotSupported, mode.String(), h)
	}
	return sealer, nil
}

func (d *Dispatcher) aeadInit(c *aeadContext, mode AeadMode, h HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	if err := checkAeadKey(key); err != nil {
		return err
	}
	if len(iv) == 0 {
		return fail(AeadErrorNonce, goerrors.New(ErrCodeNonce, "nonce is nil or empty"))
	}
	if err := checkSession(d, AeadErrorSID, sid); err != nil {
		return err
	}
	if err := checkAeadOp(op); err != nil {
		return err
	}
	if err := checkHandler(AeadErrorHandler, h); err != nil {
		return err
	}
	streamer, ok := capability[AEADStreamer](d, h)
	if !ok {
		return notSupported(AeadErrorNotSupported, "streaming "+mode.String(), h)
	}

	d.routeKeyed(FamilyAEAD, mode.String()+" init", h, key)
	st, err := streamer.NewAEADStream(mode, op, key, iv)
	if err != nil {
		c.Reset()
		return d.aeadBackendError(mode.String()+" init", h, err)
	}
	c.bind(d, FamilyAEAD, h, sid, mode.String()+" "+op.String())
	c.mode, c.op = mode, op
	c.key, c.iv = key, iv
	c.stream = st
	return nil
}

// abort ends the operation after a backend failure.
func (c *aeadContext) abort(step string, err error) error {
	mapped := c.d.aeadBackendError(c.mode.String()+" "+step, c.handler, err)
	c.Reset()
	return mapped
}

func (c *aeadContext) addAAD(aad []byte) error {
	if err := checkContext(AeadErrorCipContext, &c.ctxBase); err != nil {
		return err
	}
	if err := checkAAD(aad); err != nil {
		return err
	}
	if aad == nil {
		return nil
	}
	if err := c.stream.AddAAD(aad); err != nil {
		return c.abort("add-aad", err)
	}
	return nil
}

func (c *aeadContext) cipher(in, out []byte) error {
	if err := checkContext(AeadErrorCipContext, &c.ctxBase); err != nil {
		return err
	}
	if err := checkAeadData(in, out); err != nil {
		return err
	}
	if in == nil {
		return nil
	}
	if err := c.stream.Cipher(in, out); err != nil {
		return c.abort("cipher", err)
	}
	return nil
}

func (c *aeadContext) final(tag []byte) error {
	if err := checkContext(AeadErrorCipContext, &c.ctxBase); err != nil {
		return err
	}
	if err := checkTag(tag, false); err != nil {
		return err
	}
	if err := c.stream.Final(tag); err != nil {
		return c.abort("final", err)
	}
	c.Reset()
	return nil
}

// aeadDirect runs a whole GCM or EAX operation. The "input and AAD both
// absent" rejection applies to decryption only, matching the historical
// EncryptAuthDirect behavior.
func (d *Dispatcher) aeadDirect(mode AeadMode, op CipherOperation, h HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	if err := checkAeadKey(key); err != nil {
		return err
	}
	if len(iv) == 0 {
		return fail(AeadErrorNonce, goerrors.New(ErrCodeNonce, "nonce is nil or empty"))
	}
	if err := checkSession(d, AeadErrorSID, sid); err != nil {
		return err
	}
	if err := checkHandler(AeadErrorHandler, h); err != nil {
		return err
	}
	if err := checkAAD(aad); err != nil {
		return err
	}
	if err := checkAeadData(in, out); err != nil {
		return err
	}
	if err := checkTag(tag, false); err != nil {
		return err
	}
	if op == CipherOpDecrypt && in == nil && aad == nil {
		return fail(AeadErrorArg, goerrors.New(ErrCodeArgument, "input and AAD are both absent"))
	}
	sealer, err := d.aeadSealer(mode, h)
	if err != nil {
		return err
	}

	step := mode.String() + " " + op.String() + " direct"
	d.route(FamilyAEAD, step, h)
	if op == CipherOpEncrypt {
		err = sealer.SealAEAD(mode, key, iv, aad, in, out, tag)
	} else {
		err = sealer.OpenAEAD(mode, key, iv, aad, in, out, tag)
	}
	if err != nil {
		return d.aeadBackendError(step, h, err)
	}
	return nil
}

// AesGcmInit starts a streaming AES-GCM operation in ctx.
//
// Parameters:
//   - ctx: Caller-owned context, reused after Final or Reset
//   - handler: Backend selector
//   - op: CipherOpEncrypt or CipherOpDecrypt
//   - key: 16, 24 or 32-byte AES key, referenced until Final
//   - iv: Non-empty nonce, referenced until Final
//   - sid: Session slot in [1, SessionMax]
//
// Returns:
//   - nil, or an error carrying an AeadStatus (see AeadStatusOf)
//
// Example:
//
//	var ctx crypto.AesGcmContext
//	err := d.AesGcmInit(&ctx, crypto.HandlerSWLibrary, crypto.CipherOpEncrypt, key, iv, 1)
//	if err == nil {
//		err = crypto.AesGcmAddAadData(&ctx, aad)
//	}
//	if err == nil {
//		err = crypto.AesGcmCipher(&ctx, plaintext, ciphertext)
//	}
//	if err == nil {
//		err = crypto.AesGcmFinal(&ctx, tag)
//	}
//
// A second Init on the same session slot takes it over; the older context
// then fails with AeadErrorCipContext.
func (d *Dispatcher) AesGcmInit(ctx *AesGcmContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return d.aeadInit(&ctx.aeadContext, AeadModeGCM, handler, op, key, iv, sid)
}

// AesGcmAddAadData appends associated data. It may be called any number of
// times before the first AesGcmCipher. A nil aad is a no-op.
func AesGcmAddAadData(ctx *AesGcmContext, aad []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.addAAD(aad)
}

// AesGcmCipher encrypts or decrypts in into out. Both nil is accepted so
// that AAD-only (GMAC style) operations can reach Final.
func AesGcmCipher(ctx *AesGcmContext, in, out []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.cipher(in, out)
}

// AesGcmFinal writes the tag (encrypt) or verifies it (decrypt) and ends the
// operation. len(tag) selects the tag length in [4, 16]. A mismatch is
// reported as AeadErrorCipFail wrapping ErrAuthentication.
//
// Decrypted bytes returned by AesGcmCipher are unauthenticated until Final
// succeeds.
func AesGcmFinal(ctx *AesGcmContext, tag []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.final(tag)
}

// AesGcmEncryptAuthDirect encrypts in into out and writes len(tag) bytes of
// tag in one call. Unlike the decrypt direction it accepts in and aad both
// nil, producing the tag of an empty message.
func (d *Dispatcher) AesGcmEncryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return d.aeadDirect(AeadModeGCM, CipherOpEncrypt, handler, in, out, key, iv, aad, tag, sid)
}

// AesGcmDecryptAuthDirect verifies tag and decrypts in into out in one call.
// out is not written when the tag does not match.
func (d *Dispatcher) AesGcmDecryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return d.aeadDirect(AeadModeGCM, CipherOpDecrypt, handler, in, out, key, iv, aad, tag, sid)
}

// AesEaxInit starts a streaming AES-EAX operation. See AesGcmInit.
func (d *Dispatcher) AesEaxInit(ctx *AesEaxContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return d.aeadInit(&ctx.aeadContext, AeadModeEAX, handler, op, key, iv, sid)
}

// AesEaxAddAadData appends associated data (the EAX header).
func AesEaxAddAadData(ctx *AesEaxContext, aad []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.addAAD(aad)
}

// AesEaxCipher encrypts or decrypts in into out.
func AesEaxCipher(ctx *AesEaxContext, in, out []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.cipher(in, out)
}

// AesEaxFinal writes or verifies the tag and ends the operation.
func AesEaxFinal(ctx *AesEaxContext, tag []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	return ctx.final(tag)
}

// AesEaxEncryptAuthDirect is the one-shot form of AES-EAX encryption.
func (d *Dispatcher) AesEaxEncryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return d.aeadDirect(AeadModeEAX, CipherOpEncrypt, handler, in, out, key, iv, aad, tag, sid)
}

// AesEaxDecryptAuthDirect is the one-shot form of AES-EAX decryption.
func (d *Dispatcher) AesEaxDecryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return d.aeadDirect(AeadModeEAX, CipherOpDecrypt, handler, in, out, key, iv, aad, tag, sid)
}

// AesCcmInit binds key to ctx for subsequent AesCcmCipher calls.
func (d *Dispatcher) AesCcmInit(ctx *AesCcmContext, handler HandlerType, key []byte, sid SessionID) error {
	if ctx == nil {
		return aeadNilContext()
	}
	if err := checkAeadKey(key); err != nil {
		return err
	}
	if err := checkSession(d, AeadErrorSID, sid); err != nil {
		return err
	}
	if err := checkHandler(AeadErrorHandler, handler); err != nil {
		return err
	}
	sealer, err := d.aeadSealer(AeadModeCCM, handler)
	if err != nil {
		return err
	}

	d.routeKeyed(FamilyAEAD, "AES-CCM init", handler, key)
	ctx.bind(d, FamilyAEAD, handler, sid, AeadModeCCM.String())
	ctx.key = key
	ctx.sealer = sealer
	return nil
}

// AesCcmCipher encrypts or decrypts one message with the bound key.
//
// The nonce must be 7 to 13 bytes and the tag an even length in [4, 16].
// Unlike GCM, in and aad may not both be absent.
func AesCcmCipher(ctx *AesCcmContext, op CipherOperation, in, out, nonce, tag, aad []byte) error {
	if ctx == nil {
		return aeadNilContext()
	}
	if err := checkContext(AeadErrorCipContext, &ctx.ctxBase); err != nil {
		return err
	}
	if err := checkAeadOp(op); err != nil {
		return err
	}
	if nonce == nil || len(nonce) < CcmMinNonceSize || len(nonce) > CcmMaxNonceSize {
		return fail(AeadErrorNonce, goerrors.New(ErrCodeNonce, fmt.Sprintf("CCM nonce must be %d..%d bytes, got %d", CcmMinNonceSize, CcmMaxNonceSize, len(nonce))))
	}
	if err := checkAAD(aad); err != nil {
		return err
	}
	if err := checkAeadData(in, out); err != nil {
		return err
	}
	if err := checkTag(tag, true); err != nil {
		return err
	}
	if in == nil && aad == nil {
		return fail(AeadErrorArg, goerrors.New(ErrCodeArgument, "input and AAD are both absent"))
	}

	step := "AES-CCM " + op.String()
	ctx.d.route(FamilyAEAD, step, ctx.handler)
	var err error
	if op == CipherOpEncrypt {
		err = ctx.sealer.SealAEAD(AeadModeCCM, ctx.key, nonce, aad, in, out, tag)
	} else {
		err = ctx.sealer.OpenAEAD(AeadModeCCM, ctx.key, nonce, aad, in, out, tag)
	}
	if err != nil {
		mapped := ctx.d.aeadBackendError(step, ctx.handler, err)
		ctx.Reset()
		return mapped
	}
	return nil
}
