// hash.go: Hash dispatch for MD5, RIPEMD-160, SHA-1/2/3, SHAKE and BLAKE2
//
// Each algorithm family has its own context type and accepts only its own
// slice of HashAlgo. Contexts are single use: after Final they must be
// initialized again.
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

// Largest BLAKE2 keys, in bytes.
const (
	Blake2bMaxKeySize = 64
	Blake2sMaxKeySize = 32
)

// HashSize is the digest length reported by GetHashAndHashSize. SHAKE and
// BLAKE2 list the length they produce when the caller does not choose one.
func HashSize(algo HashAlgo) int {
	switch algo {
	case HashMD5:
		return 16
	case HashRIPEMD160, HashSHA1:
		return 20
	case HashSHA224, HashSHA512_224, HashSHA3_224:
		return 28
	case HashSHA256, HashSHA512_256, HashSHA3_256, HashSHAKE128, HashBLAKE2S:
		return 32
	case HashSHA384, HashSHA3_384:
		return 48
	case HashSHA512, HashSHA3_512, HashSHAKE256, HashBLAKE2B:
		return 64
	}
	return 0
}

func isSHA(a HashAlgo) bool   { return a >= HashSHA1 && a <= HashSHA3_512 }
func isShake(a HashAlgo) bool { return a == HashSHAKE128 || a == HashSHAKE256 }
func isBlake(a HashAlgo) bool { return a == HashBLAKE2B || a == HashBLAKE2S }

type hashContext struct {
	ctxBase
	algo  HashAlgo
	size  int // 0: output length follows len(out)
	state DigestState
}

// Reset releases the session slot and drops the backend state.
func (c *hashContext) Reset() {
	c.ctxBase.Reset()
	c.algo, c.size, c.state = 0, 0, nil
}

// Algorithm returns the algorithm the context was initialized with.
func (c *hashContext) Algorithm() HashAlgo { return c.algo }

// Md5Context carries a streaming MD5 computation.
type Md5Context struct{ hashContext }

// Ripemd160Context carries a streaming RIPEMD-160 computation.
type Ripemd160Context struct{ hashContext }

// ShaContext carries a streaming SHA-1, SHA-2 or SHA-3 computation.
type ShaContext struct{ hashContext }

// ShakeContext carries a streaming SHAKE128 or SHAKE256 computation.
type ShakeContext struct{ hashContext }

// BlakeContext carries a streaming, optionally keyed, BLAKE2b or BLAKE2s computation.
type BlakeContext struct{ hashContext }

func hashNilContext() error {
	return fail(HashErrorContext, goerrors.New(ErrCodeContext, "context is nil"))
}

func checkAlgo(algo HashAlgo, family string, ok func(HashAlgo) bool) error {
	if !algo.Valid() || !ok(algo) {
		return fail(HashErrorAlgo, goerrors.New(ErrCodeAlgorithm, fmt.Sprintf("%s is not a %s algorithm", algo, family)))
	}
	return nil
}

func only(want HashAlgo) func(HashAlgo) bool {
	return func(a HashAlgo) bool { return a == want }
}

// blakeParams validates the key and digest size and resolves the default size.
func blakeParams(algo HashAlgo, key []byte, size int) (int, error) {
	maxKey, maxSize := Blake2bMaxKeySize, HashSize(HashBLAKE2B)
	if algo == HashBLAKE2S {
		maxKey, maxSize = Blake2sMaxKeySize, HashSize(HashBLAKE2S)
	}
	if len(key) > maxKey || (key != nil && len(key) == 0) {
		return 0, fail(HashErrorKey, goerrors.New(ErrCodeKey, fmt.Sprintf("%s key must be 1..%d bytes, got %d", algo, maxKey, len(key))))
	}
	if size == 0 {
		size = maxSize
	}
	if size < 1 || size > maxSize || (algo == HashBLAKE2S && size != maxSize) {
		return 0, fail(HashErrorArg, goerrors.New(ErrCodeArgument, fmt.Sprintf("%s cannot produce %d bytes", algo, size)))
	}
	return size, nil
}

func (d *Dispatcher) hashBackendError(step string, h HandlerType, err error) error {
	d.backendFailed(FamilyHash, step, h, err)
	switch {
	case errors.Is(err, ErrUnsupported):
		return failCause(HashErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the algorithm"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(HashErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(HashErrorFail, goerrors.New(ErrCodeBackend, "backend failure"), err)
}

// newDigest runs the session and handler checks and starts a backend digest.
func (d *Dispatcher) newDigest(h HandlerType, algo HashAlgo, key []byte, size int, sid SessionID) (DigestState, error) {
	if err := checkSession(d, HashErrorSID, sid); err != nil {
		return nil, err
	}
	if err := checkHandler(HashErrorHandler, h); err != nil {
		return nil, err
	}
	hasher, ok := capability[Hasher](d, h)
	if !ok {
		return nil, notSupported(HashErrorNotSupported, algo.String(), h)
	}
	d.route(FamilyHash, algo.String(), h)
	st, err := hasher.NewDigest(algo, key, size)
	if err != nil {
		return nil, d.hashBackendError(algo.String()+" init", h, err)
	}
	return st, nil
}

func (d *Dispatcher) hashInit(c *hashContext, h HandlerType, algo HashAlgo, key []byte, size int, sid SessionID) error {
	st, err := d.newDigest(h, algo, key, size, sid)
	if err != nil {
		c.Reset()
		return err
	}
	c.bind(d, FamilyHash, h, sid, algo.String())
	c.algo, c.size, c.state = algo, size, st
	return nil
}

func (c *hashContext) update(data []byte) error {
	if err := checkContext(HashErrorContext, &c.ctxBase); err != nil {
		return err
	}
	if len(data) == 0 {
		return fail(HashErrorInputData, goerrors.New(ErrCodeInput, "data is nil or empty"))
	}
	if err := c.state.Write(data); err != nil {
		mapped := c.d.hashBackendError(c.algo.String()+" update", c.handler, err)
		c.Reset()
		return mapped
	}
	return nil
}

func checkDigestOut(out []byte, size int) error {
	if out == nil {
		return fail(HashErrorOutputData, goerrors.New(ErrCodeOutput, "output is nil"))
	}
	if len(out) == 0 || len(out) < size {
		return fail(HashErrorOutputData, goerrors.New(ErrCodeOutput, fmt.Sprintf("output holds %d bytes, digest is %d", len(out), size)))
	}
	return nil
}

func (c *hashContext) final(out []byte) error {
	if err := checkContext(HashErrorContext, &c.ctxBase); err != nil {
		return err
	}
	if err := checkDigestOut(out, c.size); err != nil {
		return err
	}
	n := c.size
	if n == 0 {
		n = len(out)
	}
	err := c.state.Sum(out[:n])
	var mapped error
	if err != nil {
		mapped = c.d.hashBackendError(c.algo.String()+" final", c.handler, err)
	}
	c.Reset()
	return mapped
}

// hashOneShot computes a whole digest. A nil data hashes the empty message.
func (d *Dispatcher) hashOneShot(h HandlerType, algo HashAlgo, key []byte, size int, data, out []byte, sid SessionID) error {
	if data != nil && len(data) == 0 {
		return fail(HashErrorInputData, goerrors.New(ErrCodeInput, "data is present but empty"))
	}
	if err := checkDigestOut(out, size); err != nil {
		return err
	}
	st, err := d.newDigest(h, algo, key, size, sid)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		if err := st.Write(data); err != nil {
			return d.hashBackendError(algo.String()+" update", h, err)
		}
	}
	n := size
	if n == 0 {
		n = len(out)
	}
	if err := st.Sum(out[:n]); err != nil {
		return d.hashBackendError(algo.String()+" final", h, err)
	}
	return nil
}

// Md5Digest writes the 16-byte MD5 digest of data into out.
func (d *Dispatcher) Md5Digest(handler HandlerType, data, out []byte, sid SessionID) error {
	return d.hashOneShot(handler, HashMD5, nil, HashSize(HashMD5), data, out, sid)
}

// Md5Init starts a streaming MD5 computation.
func (d *Dispatcher) Md5Init(ctx *Md5Context, handler HandlerType, sid SessionID) error {
	if ctx == nil {
		return hashNilContext()
	}
	return d.hashInit(&ctx.hashContext, handler, HashMD5, nil, HashSize(HashMD5), sid)
}

// Md5Update absorbs data.
func Md5Update(ctx *Md5Context, data []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.update(data)
}

// Md5Final writes the digest and ends the computation.
func Md5Final(ctx *Md5Context, out []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.final(out)
}

// Ripemd160Digest writes the 20-byte RIPEMD-160 digest of data into out.
func (d *Dispatcher) Ripemd160Digest(handler HandlerType, data, out []byte, sid SessionID) error {
	return d.hashOneShot(handler, HashRIPEMD160, nil, HashSize(HashRIPEMD160), data, out, sid)
}

// Ripemd160Init starts a streaming RIPEMD-160 computation.
func (d *Dispatcher) Ripemd160Init(ctx *Ripemd160Context, handler HandlerType, sid SessionID) error {
	if ctx == nil {
		return hashNilContext()
	}
	return d.hashInit(&ctx.hashContext, handler, HashRIPEMD160, nil, HashSize(HashRIPEMD160), sid)
}

// Ripemd160Update absorbs data.
func Ripemd160Update(ctx *Ripemd160Context, data []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.update(data)
}

// Ripemd160Final writes the digest and ends the computation.
func Ripemd160Final(ctx *Ripemd160Context, out []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.final(out)
}

// ShaDigest hashes data with a SHA-1, SHA-2 or SHA-3 algorithm. out must
// hold at least the digest length; only that many bytes are written.
//
// Example:
//
//	sum := make([]byte, 32)
//	err := d.ShaDigest(crypto.HandlerHWInternal, crypto.HashSHA256, []byte("abc"), sum, 1)
func (d *Dispatcher) ShaDigest(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) error {
	if err := checkAlgo(algo, "SHA", isSHA); err != nil {
		return err
	}
	return d.hashOneShot(handler, algo, nil, HashSize(algo), data, out, sid)
}

// ShaInit starts a streaming SHA computation.
func (d *Dispatcher) ShaInit(ctx *ShaContext, handler HandlerType, algo HashAlgo, sid SessionID) error {
	if ctx == nil {
		return hashNilContext()
	}
	if err := checkAlgo(algo, "SHA", isSHA); err != nil {
		return err
	}
	return d.hashInit(&ctx.hashContext, handler, algo, nil, HashSize(algo), sid)
}

// ShaUpdate absorbs data.
func ShaUpdate(ctx *ShaContext, data []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.update(data)
}

// ShaFinal writes the digest and ends the computation.
func ShaFinal(ctx *ShaContext, out []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.final(out)
}

// ShakeDigest squeezes len(out) bytes of SHAKE128 or SHAKE256 output.
func (d *Dispatcher) ShakeDigest(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) error {
	if err := checkAlgo(algo, "SHAKE", isShake); err != nil {
		return err
	}
	return d.hashOneShot(handler, algo, nil, 0, data, out, sid)
}

// ShakeInit starts a streaming SHAKE computation. The output length is
// chosen at ShakeFinal.
func (d *Dispatcher) ShakeInit(ctx *ShakeContext, handler HandlerType, algo HashAlgo, sid SessionID) error {
	if ctx == nil {
		return hashNilContext()
	}
	if err := checkAlgo(algo, "SHAKE", isShake); err != nil {
		return err
	}
	return d.hashInit(&ctx.hashContext, handler, algo, nil, 0, sid)
}

// ShakeUpdate absorbs data.
func ShakeUpdate(ctx *ShakeContext, data []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.update(data)
}

// ShakeFinal squeezes len(out) bytes and ends the computation.
func ShakeFinal(ctx *ShakeContext, out []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.final(out)
}

// BlakeDigest computes a BLAKE2b or BLAKE2s digest, keyed when key is
// non-nil. BLAKE2b writes len(out) bytes up to 64; BLAKE2s always writes 32.
// Like ShaDigest, a longer out is accepted and only the digest prefix is
// written.
func (d *Dispatcher) BlakeDigest(handler HandlerType, algo HashAlgo, data, key, out []byte, sid SessionID) error {
	if err := checkAlgo(algo, "BLAKE2", isBlake); err != nil {
		return err
	}
	size, err := blakeParams(algo, key, min(len(out), HashSize(algo)))
	if err != nil {
		return err
	}
	return d.hashOneShot(handler, algo, key, size, data, out, sid)
}

// BlakeInit starts a streaming BLAKE2 computation producing size bytes
// (0 selects the full length).
func (d *Dispatcher) BlakeInit(ctx *BlakeContext, handler HandlerType, algo HashAlgo, key []byte, size int, sid SessionID) error {
	if ctx == nil {
		return hashNilContext()
	}
	if err := checkAlgo(algo, "BLAKE2", isBlake); err != nil {
		return err
	}
	size, err := blakeParams(algo, key, size)
	if err != nil {
		return err
	}
	return d.hashInit(&ctx.hashContext, handler, algo, key, size, sid)
}

// BlakeUpdate absorbs data.
func BlakeUpdate(ctx *BlakeContext, data []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.update(data)
}

// BlakeFinal writes the digest and ends the computation.
func BlakeFinal(ctx *BlakeContext, out []byte) error {
	if ctx == nil {
		return hashNilContext()
	}
	return ctx.final(out)
}

// GetHashAndHashSize hashes data with any algorithm and returns the number
// of digest bytes written to out. SHAKE and BLAKE2 produce their default
// lengths (see the table above). Zero means the algorithm is unsupported or
// the computation failed; it never denotes an empty digest.
func (d *Dispatcher) GetHashAndHashSize(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) int {
	size := HashSize(algo)
	if size == 0 || len(out) < size {
		return 0
	}
	if err := d.hashOneShot(handler, algo, nil, size, data, out[:size], sid); err != nil {
		return 0
	}
	return size
}
