// api.go: Package-level entry points backed by the default dispatcher
//
// These mirror the Dispatcher methods one to one. Applications that need
// their own configuration, logger or backends should build a Dispatcher
// with NewDispatcher and call its methods instead.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

// AesGcmInit calls Default().AesGcmInit.
func AesGcmInit(ctx *AesGcmContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	return Default().AesGcmInit(ctx, handler, op, key, iv, sid)
}

// AesGcmEncryptAuthDirect calls Default().AesGcmEncryptAuthDirect.
func AesGcmEncryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return Default().AesGcmEncryptAuthDirect(handler, in, out, key, iv, aad, tag, sid)
}

// AesGcmDecryptAuthDirect calls Default().AesGcmDecryptAuthDirect.
func AesGcmDecryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return Default().AesGcmDecryptAuthDirect(handler, in, out, key, iv, aad, tag, sid)
}

// AesEaxInit calls Default().AesEaxInit.
func AesEaxInit(ctx *AesEaxContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	return Default().AesEaxInit(ctx, handler, op, key, iv, sid)
}

// AesEaxEncryptAuthDirect calls Default().AesEaxEncryptAuthDirect.
func AesEaxEncryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return Default().AesEaxEncryptAuthDirect(handler, in, out, key, iv, aad, tag, sid)
}

// AesEaxDecryptAuthDirect calls Default().AesEaxDecryptAuthDirect.
func AesEaxDecryptAuthDirect(handler HandlerType, in, out, key, iv, aad, tag []byte, sid SessionID) error {
	return Default().AesEaxDecryptAuthDirect(handler, in, out, key, iv, aad, tag, sid)
}

// AesCcmInit calls Default().AesCcmInit.
func AesCcmInit(ctx *AesCcmContext, handler HandlerType, key []byte, sid SessionID) error {
	return Default().AesCcmInit(ctx, handler, key, sid)
}

// SymInit calls Default().SymInit.
func SymInit(ctx *SymContext, handler HandlerType, op CipherOperation, mode SymMode, key, iv []byte, sid SessionID) error {
	return Default().SymInit(ctx, handler, op, mode, key, iv, sid)
}

// SymEncryptDirect calls Default().SymEncryptDirect.
func SymEncryptDirect(handler HandlerType, mode SymMode, in, out, key, iv []byte, sid SessionID) error {
	return Default().SymEncryptDirect(handler, mode, in, out, key, iv, sid)
}

// SymDecryptDirect calls Default().SymDecryptDirect.
func SymDecryptDirect(handler HandlerType, mode SymMode, in, out, key, iv []byte, sid SessionID) error {
	return Default().SymDecryptDirect(handler, mode, in, out, key, iv, sid)
}

// AesKeyWrapInit calls Default().AesKeyWrapInit.
func AesKeyWrapInit(ctx *SymContext, handler HandlerType, op CipherOperation, key, iv []byte, sid SessionID) error {
	return Default().AesKeyWrapInit(ctx, handler, op, key, iv, sid)
}

// AesKeyWrapDirect calls Default().AesKeyWrapDirect.
func AesKeyWrapDirect(handler HandlerType, op CipherOperation, in, out, key, iv []byte, sid SessionID) error {
	return Default().AesKeyWrapDirect(handler, op, in, out, key, iv, sid)
}

// Md5Digest calls Default().Md5Digest.
func Md5Digest(handler HandlerType, data, out []byte, sid SessionID) error {
	return Default().Md5Digest(handler, data, out, sid)
}

// Md5Init calls Default().Md5Init.
func Md5Init(ctx *Md5Context, handler HandlerType, sid SessionID) error {
	return Default().Md5Init(ctx, handler, sid)
}

// Ripemd160Digest calls Default().Ripemd160Digest.
func Ripemd160Digest(handler HandlerType, data, out []byte, sid SessionID) error {
	return Default().Ripemd160Digest(handler, data, out, sid)
}

// Ripemd160Init calls Default().Ripemd160Init.
func Ripemd160Init(ctx *Ripemd160Context, handler HandlerType, sid SessionID) error {
	return Default().Ripemd160Init(ctx, handler, sid)
}

// ShaDigest calls Default().ShaDigest.
func ShaDigest(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) error {
	return Default().ShaDigest(handler, algo, data, out, sid)
}

// ShaInit calls Default().ShaInit.
func ShaInit(ctx *ShaContext, handler HandlerType, algo HashAlgo, sid SessionID) error {
	return Default().ShaInit(ctx, handler, algo, sid)
}

// ShakeDigest calls Default().ShakeDigest.
func ShakeDigest(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) error {
	return Default().ShakeDigest(handler, algo, data, out, sid)
}

// ShakeInit calls Default().ShakeInit.
func ShakeInit(ctx *ShakeContext, handler HandlerType, algo HashAlgo, sid SessionID) error {
	return Default().ShakeInit(ctx, handler, algo, sid)
}

// BlakeDigest calls Default().BlakeDigest.
func BlakeDigest(handler HandlerType, algo HashAlgo, data, key, out []byte, sid SessionID) error {
	return Default().BlakeDigest(handler, algo, data, key, out, sid)
}

// BlakeInit calls Default().BlakeInit.
func BlakeInit(ctx *BlakeContext, handler HandlerType, algo HashAlgo, key []byte, size int, sid SessionID) error {
	return Default().BlakeInit(ctx, handler, algo, key, size, sid)
}

// GetHashAndHashSize calls Default().GetHashAndHashSize.
func GetHashAndHashSize(handler HandlerType, algo HashAlgo, data, out []byte, sid SessionID) int {
	return Default().GetHashAndHashSize(handler, algo, data, out, sid)
}

// DigSignSign calls Default().DigSignSign.
func DigSignSign(handler HandlerType, hash, sig, priv []byte, curve EccCurve, sid SessionID) error {
	return Default().DigSignSign(handler, hash, sig, priv, curve, sid)
}

// DigSignVerify calls Default().DigSignVerify.
func DigSignVerify(handler HandlerType, hash, sig, pub []byte, curve EccCurve, sid SessionID) (VerifyVerdict, error) {
	return Default().DigSignVerify(handler, hash, sig, pub, curve, sid)
}

// DigSignSignData calls Default().DigSignSignData.
func DigSignSignData(handler HandlerType, data []byte, algo HashAlgo, sig, priv []byte, curve EccCurve, sid SessionID) error {
	return Default().DigSignSignData(handler, data, algo, sig, priv, curve, sid)
}

// DigSignVerifyData calls Default().DigSignVerifyData.
func DigSignVerifyData(handler HandlerType, data []byte, algo HashAlgo, sig, pub []byte, curve EccCurve, sid SessionID) (VerifyVerdict, error) {
	return Default().DigSignVerifyData(handler, data, algo, sig, pub, curve, sid)
}

// KasEcdhSharedSecret calls Default().KasEcdhSharedSecret.
func KasEcdhSharedSecret(handler HandlerType, priv, pub, secret []byte, curve EccCurve, sid SessionID) error {
	return Default().KasEcdhSharedSecret(handler, priv, pub, secret, curve, sid)
}

// RngGenerate calls Default().RngGenerate.
func RngGenerate(handler HandlerType, out, nonce []byte, sid SessionID) error {
	return Default().RngGenerate(handler, out, nonce, sid)
}
