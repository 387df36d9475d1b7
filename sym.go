// sym.go: AES block-mode and RFC 3394 key-wrap dispatch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/aes"
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// KeyWrapBlockSize is the RFC 3394 semiblock size; a wrapped key is one
// semiblock longer than the key it protects.
const KeyWrapBlockSize = 8

// SymContext carries a block-cipher operation, or a key-wrap operation when
// initialized through AesKeyWrapInit. The zero value is ready for either.
type SymContext struct {
	ctxBase
	keyWrap bool
	mode    SymMode
	op      CipherOperation
	key     []byte
	iv      []byte
	stream  SymStream
	wrapper KeyWrapper
}

// Reset releases the session slot and drops the backend state.
func (c *SymContext) Reset() {
	c.ctxBase.Reset()
	c.keyWrap = false
	c.mode, c.op = 0, 0
	c.key, c.iv = nil, nil
	c.stream, c.wrapper = nil, nil
}

// KeyWrap reports whether the context runs key wrap rather than a block mode.
func (c *SymContext) KeyWrap() bool { return c.keyWrap }

func symNilContext() error {
	return fail(SymErrorCipContext, goerrors.New(ErrCodeContext, "context is nil"))
}

func checkSymKey(mode SymMode, key []byte) error {
	if key == nil {
		return fail(SymErrorKey, goerrors.New(ErrCodeKey, "key is nil"))
	}
	if mode == SymModeXTS {
		if len(key) != 2*AES128KeySize && len(key) != 2*AES256KeySize {
			return fail(SymErrorKey, goerrors.New(ErrCodeKey, fmt.Sprintf("XTS key must be 32 or 64 bytes, got %d", len(key))))
		}
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return fail(SymErrorKey, err)
	}
	return nil
}

func checkSymData(mode SymMode, in, out []byte) error {
	if len(in) == 0 {
		return fail(SymErrorInputData, goerrors.New(ErrCodeInput, "input is nil or empty"))
	}
	if out == nil || len(out) < len(in) {
		return fail(SymErrorOutputData, goerrors.New(ErrCodeOutput, fmt.Sprintf("output holds %d bytes, input is %d", len(out), len(in))))
	}
	switch mode {
	case SymModeECB, SymModeCBC, SymModeXTS:
		if len(in)%aes.BlockSize != 0 {
			return fail(SymErrorInputData, goerrors.New(ErrCodeInput, fmt.Sprintf("%s input must be a multiple of %d bytes", mode, aes.BlockSize)))
		}
	}
	return nil
}

func checkSymOp(op CipherOperation) error {
	if !op.valid() {
		return fail(SymErrorCipOper, goerrors.New(ErrCodeDirection, fmt.Sprintf("unknown cipher operation %d", int(op))))
	}
	return nil
}

func (d *Dispatcher) symBackendError(op string, h HandlerType, err error) error {
	d.backendFailed(FamilySym, op, h, err)
	switch {
	case errors.Is(err, ErrAuthentication):
		return failCause(SymErrorCipFail, goerrors.New(ErrCodeTag, "key wrap integrity check failed"), err)
	case errors.Is(err, ErrUnsupported):
		return failCause(SymErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the request"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(SymErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(SymErrorCipFail, goerrors.New(ErrCodeBackend, "backend failure"), err)
}

// symPrecheck validates everything shared by SymInit and the direct calls.
func (d *Dispatcher) symPrecheck(h HandlerType, op CipherOperation, mode SymMode, key, iv []byte, sid SessionID) (SymCipherer, error) {
	if !mode.valid() {
		return nil, fail(SymErrorOpMode, goerrors.New(ErrCodeMode, fmt.Sprintf("unknown block mode %d", int(mode))))
	}
	if err := checkSymKey(mode, key); err != nil {
		return nil, err
	}
	if mode.usesIV() && len(iv) != aes.BlockSize {
		return nil, fail(SymErrorIV, goerrors.New(ErrCodeNonce, fmt.Sprintf("%s needs a %d-byte IV, got %d", mode, aes.BlockSize, len(iv))))
	}
	if err := checkSession(d, SymErrorSID, sid); err != nil {
		return nil, err
	}
	if err := checkSymOp(op); err != nil {
		return nil, err
	}
	if err := checkHandler(SymErrorHandler, h); err != nil {
		return nil, err
	}
	c, ok := capability[SymCipherer](d, h)
	if !ok {
		return nil, notSupported(SymErrorNotSupported, "AES-"+mode.String(), h)
	}
	return c, nil
}

// SymInit starts a block-cipher operation. The IV is ignored for ECB and
// XTS; XTS takes a double-length key and numbers sectors from zero, one per
// SymCipher call.
//
// Parameters:
//   - ctx: Caller-owned context
//   - handler: Backend selector
//   - op: CipherOpEncrypt or CipherOpDecrypt
//   - mode: Block mode
//   - key: AES key (XTS: two concatenated AES keys)
//   - iv: 16-byte IV for CBC, CFB, OFB and CTR
//   - sid: Session slot in [1, SessionMax]
//
// Returns:
//   - nil, or an error carrying a SymStatus (see SymStatusOf)
func (d *Dispatcher) SymInit(ctx *SymContext, handler HandlerType, op CipherOperation, mode SymMode, key, iv []byte, sid SessionID) error {
	if ctx == nil {
		return symNilContext()
	}
	c, err := d.symPrecheck(handler, op, mode, key, iv, sid)
	if err != nil {
		return err
	}

	step := "AES-" + mode.String() + " init"
	d.routeKeyed(FamilySym, step, handler, key)
	st, err := c.NewSymStream(mode, op, key, iv)
	if err != nil {
		ctx.Reset()
		return d.symBackendError(step, handler, err)
	}
	ctx.Reset()
	ctx.bind(d, FamilySym, handler, sid, "AES-"+mode.String()+" "+op.String())
	ctx.mode, ctx.op = mode, op
	ctx.key, ctx.iv = key, iv
	ctx.stream = st
	return nil
}

// SymCipher processes in into out. Chaining state carries over between
// calls. On a key-wrap context it behaves like AesKeyWrapCipher.
func SymCipher(ctx *SymContext, in, out []byte) error {
	if ctx == nil {
		return symNilContext()
	}
	if err := checkContext(SymErrorCipContext, &ctx.ctxBase); err != nil {
		return err
	}
	if ctx.keyWrap {
		return ctx.wrap(in, out)
	}
	if err := checkSymData(ctx.mode, in, out); err != nil {
		return err
	}
	if err := ctx.stream.Cipher(in, out); err != nil {
		mapped := ctx.d.symBackendError("AES-"+ctx.mode.String()+" cipher", ctx.handler, err)
		ctx.Reset()
		return mapped
	}
	return nil
}

// SymFinal ends the operation and releases its session slot.
func SymFinal(ctx *SymContext) error {
	if ctx == nil {
		return symNilContext()
	}
	if err := checkContext(SymErrorCipContext, &ctx.ctxBase); err != nil {
		return err
	}
	ctx.Reset()
	return nil
}

func (d *Dispatcher) symDirect(h HandlerType, op CipherOperation, mode SymMode, in, out, key, iv []byte, sid SessionID) error {
	c, err := d.symPrecheck(h, op, mode, key, iv, sid)
	if err != nil {
		return err
	}
	if err := checkSymData(mode, in, out); err != nil {
		return err
	}

	step := "AES-" + mode.String() + " " + op.String() + " direct"
	d.route(FamilySym, step, h)
	st, err := c.NewSymStream(mode, op, key, iv)
	if err == nil {
		err = st.Cipher(in, out)
	}
	if err != nil {
		return d.symBackendError(step, h, err)
	}
	return nil
}

// SymEncryptDirect encrypts in into out in one call.
func (d *Dispatcher) SymEncryptDirect(handler HandlerType, mode SymMode, in, out, key, iv []byte, sid SessionID) error {
	return d.symDirect(handler, CipherOpEncrypt, mode, in, out, key, iv, sid)
}

// SymDecryptDirect decrypts in into out in one call.
func (d *Dispatcher) SymDecryptDirect(handler HandlerType, mode SymMode, in, out, key, iv []byte, sid SessionID) error {
	return d.symDirect(handler, CipherOpDecrypt, mode, in, out, key, iv, sid)
}

// keyWrapPrecheck validates the arguments shared by AesKeyWrapInit and
// AesKeyWrapDirect. A nil iv selects the RFC 3394 default.
func (d *Dispatcher) keyWrapPrecheck(h HandlerType, op CipherOperation, key, iv []byte, sid SessionID) (KeyWrapper, error) {
	if err := checkSymKey(SymModeECB, key); err != nil {
		return nil, err
	}
	if iv != nil && len(iv) != KeyWrapBlockSize {
		return nil, fail(SymErrorIV, goerrors.New(ErrCodeNonce, fmt.Sprintf("key wrap IV must be %d bytes, got %d", KeyWrapBlockSize, len(iv))))
	}
	if err := checkSession(d, SymErrorSID, sid); err != nil {
		return nil, err
	}
	if err := checkSymOp(op); err != nil {
		return nil, err
	}
	if err := checkHandler(SymErrorHandler, h); err != nil {
		return nil, err
	}
	w, ok := capability[KeyWrapper](d, h)
	if !ok {
		return nil, notSupported(SymErrorNotSupported, "AES key wrap", h)
	}
	return w, nil
}

// checkKeyWrapSizes applies the RFC 3394 length rules.
func checkKeyWrapSizes(op CipherOperation, in, out []byte) error {
	minIn, outLen := 2*KeyWrapBlockSize, len(in)+KeyWrapBlockSize
	if op == CipherOpDecrypt {
		minIn, outLen = 3*KeyWrapBlockSize, len(in)-KeyWrapBlockSize
	}
	if len(in) < minIn || len(in)%KeyWrapBlockSize != 0 {
		return fail(SymErrorInputData, goerrors.New(ErrCodeInput, fmt.Sprintf("key wrap input must be a multiple of %d bytes and at least %d, got %d", KeyWrapBlockSize, minIn, len(in))))
	}
	if len(out) < outLen {
		return fail(SymErrorOutputData, goerrors.New(ErrCodeOutput, fmt.Sprintf("key wrap output needs %d bytes, got %d", outLen, len(out))))
	}
	return nil
}

func runKeyWrap(w KeyWrapper, op CipherOperation, key, iv, in, out []byte) error {
	var res []byte
	var err error
	if op == CipherOpEncrypt {
		res, err = w.WrapKey(key, iv, in)
	} else {
		res, err = w.UnwrapKey(key, iv, in)
	}
	if err != nil {
		return err
	}
	copy(out, res)
	Zeroize(res)
	return nil
}

// AesKeyWrapInit prepares ctx for RFC 3394 key wrapping (op encrypt) or
// unwrapping (op decrypt). Only the default IV is implemented; any other
// 8-byte IV fails with SymErrorNotSupported at the first cipher call.
func (d *Dispatcher) AesKeyWrapInit(ctx *SymContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	if ctx == nil {
		return symNilContext()
	}
	w, err := d.keyWrapPrecheck(handler, op, key, iv, sid)
	if err != nil {
		return err
	}

	d.routeKeyed(FamilySym, "AES-KW init", handler, key)
	ctx.Reset()
	ctx.bind(d, FamilySym, handler, sid, "AES-KW "+op.String())
	ctx.keyWrap = true
	ctx.op = op
	ctx.key, ctx.iv = key, iv
	ctx.wrapper = w
	return nil
}

// AesKeyWrapCipher wraps or unwraps one key. out needs len(in)+8 bytes when
// wrapping and len(in)-8 when unwrapping. A failed integrity check on unwrap
// is reported as SymErrorCipFail wrapping ErrAuthentication.
func AesKeyWrapCipher(ctx *SymContext, in, out []byte) error {
	if ctx == nil {
		return symNilContext()
	}
	if err := checkContext(SymErrorCipContext, &ctx.ctxBase); err != nil {
		return err
	}
	if !ctx.keyWrap {
		return fail(SymErrorCipContext, goerrors.New(ErrCodeContext, "context was initialized for a block mode, not key wrap"))
	}
	return ctx.wrap(in, out)
}

func (c *SymContext) wrap(in, out []byte) error {
	if err := checkKeyWrapSizes(c.op, in, out); err != nil {
		return err
	}
	if err := runKeyWrap(c.wrapper, c.op, c.key, c.iv, in, out); err != nil {
		mapped := c.d.symBackendError("AES-KW "+c.op.String(), c.handler, err)
		c.Reset()
		return mapped
	}
	return nil
}

// AesKeyWrapDirect wraps or unwraps one key without a context.
//
// Example:
//
//	wrapped := make([]byte, len(dek)+crypto.KeyWrapBlockSize)
//	err := d.AesKeyWrapDirect(crypto.HandlerSWLibrary, crypto.CipherOpEncrypt, dek, wrapped, kek, nil, 1)
func (d *Dispatcher) AesKeyWrapDirect(handler HandlerType, op CipherOperation, in, out, key, iv []byte, sid SessionID) error {
	w, err := d.keyWrapPrecheck(handler, op, key, iv, sid)
	if err != nil {
		return err
	}
	if err := checkKeyWrapSizes(op, in, out); err != nil {
		return err
	}

	step := "AES-KW " + op.String() + " direct"
	d.route(FamilySym, step, handler)
	if err := runKeyWrap(w, op, key, iv, in, out); err != nil {
		return d.symBackendError(step, handler, err)
	}
	return nil
}
