// Package crypto is a cryptographic dispatch layer. Every call names a
// backend through a HandlerType and reports its outcome through a closed,
// per-family status set.
//
// Primitive families:
//   - AEAD: AES-GCM and AES-EAX (streaming and one-shot), AES-CCM (per message)
//   - Symmetric: AES in ECB, CBC, CFB, OFB, CTR and XTS modes, RFC 3394 key wrap
//   - Hash: MD5, RIPEMD-160, SHA-1/2/3, SHAKE128/256, keyed BLAKE2b/2s
//   - Digital signature: ECDSA over the NIST prime curves and secp256k1
//   - Key agreement: ECDH over the NIST prime curves, secp256k1, X25519 and X448
//   - RNG: per-call DRBG (software), TRNG (hardware), secure element randomness
//
// Backends:
//   - HandlerSWLibrary: software library, services every family
//   - HandlerHWInternal: on-chip accelerator model (package accel): one-shot
//     AES-GCM, SHA-1/SHA-2, ECDSA and ECDH on P-192..P-521, TRNG
//   - HandlerSecureElement: external token over PKCS#11 or a registered
//     SecureElementProvider: random generation and SHA digests
//
// A request a backend cannot service fails with the family's
// ERROR_NOTSUPPTD status. It never falls through to another backend.
//
// # Quick Start
//
//	sum := make([]byte, 32)
//	if err := crypto.ShaDigest(crypto.HandlerSWLibrary, crypto.HashSHA256, data, sum, 1); err != nil {
//		log.Fatal(crypto.HashStatusOf(err))
//	}
//
// The package-level functions use Default(), a process-wide Dispatcher.
// Applications that need their own configuration, logger or backends build
// one with NewDispatcher:
//
//	cfg, err := crypto.LoadConfig("harmony.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	d, err := crypto.NewDispatcher(cfg, crypto.WithLogger(crypto.NewLogger(nil)))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
// # Streaming Contexts and Sessions
//
// Streaming operations run through a caller-owned context: Init, any number
// of Update/Cipher calls, then Final. Each Init claims a session slot
// (1..SessionMax per family). A second Init on the same slot takes it over
// and the older context fails its next call with a context error. Contexts
// are not safe for concurrent use; the Dispatcher is.
//
//	var ctx crypto.AesGcmContext
//	err := crypto.AesGcmInit(&ctx, crypto.HandlerSWLibrary, crypto.CipherOpEncrypt, key, iv, 1)
//	if err == nil {
//		err = crypto.AesGcmAddAadData(&ctx, header)
//	}
//	if err == nil {
//		err = crypto.AesGcmCipher(&ctx, plaintext, ciphertext)
//	}
//	if err == nil {
//		err = crypto.AesGcmFinal(&ctx, tag)
//	}
//
// # Error Handling
//
// Status values implement error. A failed call returns the status wrapped
// together with a github.com/agilira/go-errors value carrying a code and a
// message, and, for backend failures, the backend error itself:
//
//	err := crypto.AesGcmDecryptAuthDirect(h, ct, pt, key, iv, aad, tag, 1)
//	switch {
//	case err == nil:
//	case errors.Is(err, crypto.ErrAuthentication):
//		// tag mismatch, pt untouched
//	default:
//		log.Println(crypto.AeadStatusOf(err))
//	}
//
// Signature verification reports its verdict separately: DigSignVerify
// returns (VerdictFail, nil) for a well-formed signature that does not match.
//
// # Buffers
//
// A nil slice means absent. A non-nil, zero-length slice is present but
// empty and is rejected wherever data is required.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package crypto
