// Package harness runs self-test vectors through a crypto dispatcher and
// reports the outcome of every case on every requested handler.
//
// Known-answer cases compare backend output against the vector. Cases without
// an expected value are round trips: encrypt then decrypt, sign then verify,
// agree from both sides. A handler that does not offer a primitive answers
// with its family's NOT_SUPPORTED status and the case is recorded as skipped.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package harness

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/agilira/go-timecache"

	crypto "github.com/agilira/harmony-crypto"
)

const sid crypto.SessionID = 1

// executor runs one vector on one handler. err is the dispatcher's error;
// mismatch describes an output that came back successfully but wrong.
type executor func(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (mismatch string, err error)

var executors = map[string]executor{
	FamilyAEAD:    runAEAD,
	FamilySym:     runSym,
	FamilyKeyWrap: runKeyWrap,
	FamilyHash:    runHash,
	FamilyDigSign: runDigSign,
	FamilyKAS:     runKAS,
	FamilyRNG:     runRNG,
}

// Run executes the built-in vectors on every handler.
func Run(d *crypto.Dispatcher, handlers []crypto.HandlerType) (*Report, error) {
	vectors, err := Builtin()
	if err != nil {
		return nil, err
	}
	return RunVectors(d, handlers, vectors), nil
}

// RunVectors executes vectors on every handler, in vector order.
func RunVectors(d *crypto.Dispatcher, handlers []crypto.HandlerType, vectors []Vector) *Report {
	r := &Report{Started: timecache.CachedTime()}
	for i := range vectors {
		v := &vectors[i]
		for _, h := range handlers {
			r.add(runOne(d, h, v))
		}
	}
	return r
}

func runOne(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) Result {
	res := Result{Case: v.Name, Family: v.Family, Handler: h.String()}
	exec, ok := executors[v.Family]
	if !ok {
		res.Outcome = OutcomeFail
		res.Status = "UNKNOWN"
		res.Detail = fmt.Sprintf("unknown family %q", v.Family)
		return res
	}

	start := time.Now()
	mismatch, err := exec(d, h, v)
	res.Elapsed = time.Since(start)
	res.Status = statusName(v.Family, err)

	switch {
	case err != nil && notSupported(err):
		res.Outcome = OutcomeSkip
		res.Detail = err.Error()
	case err != nil:
		res.Outcome = OutcomeFail
		res.Detail = err.Error()
	case mismatch != "":
		res.Outcome = OutcomeFail
		res.Detail = mismatch
	default:
		res.Outcome = OutcomePass
	}
	return res
}

func statusName(family string, err error) string {
	switch family {
	case FamilyAEAD:
		return crypto.AeadStatusOf(err).String()
	case FamilySym, FamilyKeyWrap:
		return crypto.SymStatusOf(err).String()
	case FamilyHash:
		return crypto.HashStatusOf(err).String()
	case FamilyDigSign:
		return crypto.DigSignStatusOf(err).String()
	case FamilyKAS:
		return crypto.KasStatusOf(err).String()
	case FamilyRNG:
		return crypto.RngStatusOf(err).String()
	}
	return "UNKNOWN"
}

var notSupportedStatuses = []error{
	crypto.AeadErrorNotSupported,
	crypto.SymErrorNotSupported,
	crypto.HashErrorNotSupported,
	crypto.DigSignErrorNotSupported,
	crypto.KasErrorNotSupported,
	crypto.RngErrorNotSupported,
}

func notSupported(err error) bool {
	for _, s := range notSupportedStatuses {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

func compare(what string, got, want []byte) string {
	if bytes.Equal(got, want) {
		return ""
	}
	return fmt.Sprintf("%s mismatch: got %x, want %x", what, got, want)
}

// outBuf allocates an output buffer matching in: nil stays nil.
func outBuf(in []byte) []byte {
	if in == nil {
		return nil
	}
	return make([]byte, len(in))
}

// caseKey returns the vector key, or a fresh AES-256 key for a round trip
// that does not pin one.
func caseKey(v *Vector) ([]byte, error) {
	if v.Key != nil || v.knownAnswer() {
		return v.Key, nil
	}
	return crypto.GenerateKey(crypto.AES256KeySize)
}

func runAEAD(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	key, err := caseKey(v)
	if err != nil {
		return fmt.Sprintf("key generation: %v", err), nil
	}
	tagLen := 16
	if v.Tag != nil {
		tagLen = len(v.Tag)
	}
	ct, tag := outBuf(v.Input), make([]byte, tagLen)
	pt := outBuf(v.Input)

	switch v.Mode {
	case "GCM", "EAX":
		seal, open := d.AesGcmEncryptAuthDirect, d.AesGcmDecryptAuthDirect
		if v.Mode == "EAX" {
			seal, open = d.AesEaxEncryptAuthDirect, d.AesEaxDecryptAuthDirect
		}
		if err := seal(h, v.Input, ct, key, v.IV, v.AAD, tag, sid); err != nil {
			return "", err
		}
		if err := open(h, ct, pt, key, v.IV, v.AAD, tag, sid); err != nil {
			return "", err
		}
	case "CCM":
		var ctx crypto.AesCcmContext
		defer ctx.Reset()
		if err := d.AesCcmInit(&ctx, h, key, sid); err != nil {
			return "", err
		}
		if err := crypto.AesCcmCipher(&ctx, crypto.CipherOpEncrypt, v.Input, ct, v.IV, tag, v.AAD); err != nil {
			return "", err
		}
		if err := crypto.AesCcmCipher(&ctx, crypto.CipherOpDecrypt, ct, pt, v.IV, tag, v.AAD); err != nil {
			return "", err
		}
	default:
		return fmt.Sprintf("unknown AEAD mode %q", v.Mode), nil
	}

	if v.knownAnswer() {
		if m := compare("ciphertext", ct, v.Expected); m != "" {
			return m, nil
		}
		if m := compare("tag", tag, v.Tag); m != "" {
			return m, nil
		}
	}
	return compare("plaintext", pt, v.Input), nil
}

var symModes = map[string]crypto.SymMode{
	"ECB": crypto.SymModeECB,
	"CBC": crypto.SymModeCBC,
	"CFB": crypto.SymModeCFB,
	"OFB": crypto.SymModeOFB,
	"CTR": crypto.SymModeCTR,
	"XTS": crypto.SymModeXTS,
}

func runSym(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	mode, ok := symModes[v.Mode]
	if !ok {
		return fmt.Sprintf("unknown block mode %q", v.Mode), nil
	}
	key, err := caseKey(v)
	if err != nil {
		return fmt.Sprintf("key generation: %v", err), nil
	}
	ct := outBuf(v.Input)
	if err := d.SymEncryptDirect(h, mode, v.Input, ct, key, v.IV, sid); err != nil {
		return "", err
	}
	if v.knownAnswer() {
		if m := compare("ciphertext", ct, v.Expected); m != "" {
			return m, nil
		}
	}
	pt := outBuf(ct)
	if err := d.SymDecryptDirect(h, mode, ct, pt, key, v.IV, sid); err != nil {
		return "", err
	}
	return compare("plaintext", pt, v.Input), nil
}

func runKeyWrap(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	wrapped := make([]byte, len(v.Input)+8)
	if err := d.AesKeyWrapDirect(h, crypto.CipherOpEncrypt, v.Input, wrapped, v.Key, nil, sid); err != nil {
		return "", err
	}
	if v.knownAnswer() {
		if m := compare("wrapped key", wrapped, v.Expected); m != "" {
			return m, nil
		}
	}
	unwrapped := make([]byte, len(v.Input))
	if err := d.AesKeyWrapDirect(h, crypto.CipherOpDecrypt, wrapped, unwrapped, v.Key, nil, sid); err != nil {
		return "", err
	}
	return compare("unwrapped key", unwrapped, v.Input), nil
}

func runHash(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	algo, ok := crypto.ParseHashAlgo(v.Algorithm)
	if !ok {
		return fmt.Sprintf("unknown hash algorithm %q", v.Algorithm), nil
	}
	size := v.Length
	if v.Expected != nil {
		size = len(v.Expected)
	}
	out := make([]byte, size)

	var err error
	switch algo {
	case crypto.HashMD5:
		err = d.Md5Digest(h, v.Input, out, sid)
	case crypto.HashRIPEMD160:
		err = d.Ripemd160Digest(h, v.Input, out, sid)
	case crypto.HashSHAKE128, crypto.HashSHAKE256:
		err = d.ShakeDigest(h, algo, v.Input, out, sid)
	case crypto.HashBLAKE2B, crypto.HashBLAKE2S:
		err = d.BlakeDigest(h, algo, v.Input, v.Key, out, sid)
	default:
		err = d.ShaDigest(h, algo, v.Input, out, sid)
	}
	if err != nil {
		return "", err
	}
	if v.Expected == nil {
		return "", nil
	}
	return compare("digest", out, v.Expected), nil
}

func runDigSign(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	curve, ok := crypto.ParseCurve(v.Curve)
	if !ok {
		return fmt.Sprintf("unknown curve %q", v.Curve), nil
	}
	priv, pub, err := crypto.GenerateKeyPair(curve)
	if err != nil {
		return fmt.Sprintf("key generation: %v", err), nil
	}
	sig := make([]byte, crypto.SignatureSize(curve))

	if v.Algorithm != "" {
		algo, ok := crypto.ParseHashAlgo(v.Algorithm)
		if !ok {
			return fmt.Sprintf("unknown hash algorithm %q", v.Algorithm), nil
		}
		if err := d.DigSignSignData(h, v.Input, algo, sig, priv, curve, sid); err != nil {
			return "", err
		}
		verdict, err := d.DigSignVerifyData(h, v.Input, algo, sig, pub, curve, sid)
		if err != nil {
			return "", err
		}
		if verdict != crypto.VerdictPass {
			return "signature over data rejected", nil
		}
		return "", nil
	}

	if err := d.DigSignSign(h, v.Input, sig, priv, curve, sid); err != nil {
		return "", err
	}
	verdict, err := d.DigSignVerify(h, v.Input, sig, pub, curve, sid)
	if err != nil {
		return "", err
	}
	if verdict != crypto.VerdictPass {
		return "signature rejected", nil
	}

	sig[len(sig)-1] ^= 0x01
	verdict, err = d.DigSignVerify(h, v.Input, sig, pub, curve, sid)
	if err != nil {
		return "", err
	}
	if verdict != crypto.VerdictFail {
		return fmt.Sprintf("tampered signature verdict %s", verdict), nil
	}
	return "", nil
}

func runKAS(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	curve, ok := crypto.ParseCurve(v.Curve)
	if !ok {
		return fmt.Sprintf("unknown curve %q", v.Curve), nil
	}
	secret := make([]byte, crypto.SharedSecretSize(curve))

	if v.knownAnswer() {
		if err := d.KasEcdhSharedSecret(h, v.Key, v.Input, secret, curve, sid); err != nil {
			return "", err
		}
		return compare("shared secret", secret, v.Expected), nil
	}

	alicePriv, alicePub, err := crypto.GenerateKeyPair(curve)
	if err != nil {
		return fmt.Sprintf("key generation: %v", err), nil
	}
	bobPriv, bobPub, err := crypto.GenerateKeyPair(curve)
	if err != nil {
		return fmt.Sprintf("key generation: %v", err), nil
	}
	if err := d.KasEcdhSharedSecret(h, alicePriv, bobPub, secret, curve, sid); err != nil {
		return "", err
	}
	other := make([]byte, len(secret))
	if err := d.KasEcdhSharedSecret(h, bobPriv, alicePub, other, curve, sid); err != nil {
		return "", err
	}
	return compare("shared secret", secret, other), nil
}

func runRNG(d *crypto.Dispatcher, h crypto.HandlerType, v *Vector) (string, error) {
	if v.Length <= 0 {
		return "rng case needs a positive length", nil
	}
	first, second := make([]byte, v.Length), make([]byte, v.Length)
	if err := d.RngGenerate(h, first, v.Input, sid); err != nil {
		return "", err
	}
	if err := d.RngGenerate(h, second, v.Input, sid); err != nil {
		return "", err
	}
	if bytes.Equal(first, make([]byte, v.Length)) {
		return "generator returned all zero bytes", nil
	}
	if bytes.Equal(first, second) {
		return "successive outputs repeat", nil
	}
	return "", nil
}
