// crypto_fuzz_test.go: Fuzz targets for the dispatch entry points
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"testing"
)

// FuzzAesGcmDecrypt feeds arbitrary ciphertext, tag and AAD to the direct
// GCM decrypt. Any input must fail cleanly or authenticate.
//
// Usage:
//
//	go test -fuzz=FuzzAesGcmDecrypt -fuzztime=30s
func FuzzAesGcmDecrypt(f *testing.F) {
	d, err := NewDispatcher(nil, WithLogger(NopLogger()))
	if err != nil {
		f.Fatalf("Failed to create dispatcher: %v", err)
	}
	key := make([]byte, 16)
	iv := make([]byte, 12)

	f.Add([]byte("ciphertext"), []byte("0123456789abcdef"), []byte("aad"), uint8(HandlerSWLibrary))
	f.Add([]byte{}, []byte{1, 2, 3, 4}, []byte(nil), uint8(HandlerHWInternal))
	f.Add([]byte(nil), []byte(nil), []byte{}, uint8(0))

	f.Fuzz(func(t *testing.T, in, tag, aad []byte, h uint8) {
		var out []byte
		if in != nil {
			out = make([]byte, len(in))
		}
		err := d.AesGcmDecryptAuthDirect(HandlerType(h), in, out, key, iv, aad, tag, 1)
		if err == nil && AeadStatusOf(err) != AeadSuccess {
			t.Fatal("nil error must map to success")
		}
		if err != nil && AeadStatusOf(err) == AeadSuccess {
			t.Fatalf("error without a status: %v", err)
		}
	})
}

// FuzzAesKeyUnwrap checks that random wrapped keys never unwrap under a
// fixed KEK and never panic.
func FuzzAesKeyUnwrap(f *testing.F) {
	d, err := NewDispatcher(nil, WithLogger(NopLogger()))
	if err != nil {
		f.Fatalf("Failed to create dispatcher: %v", err)
	}
	kek := make([]byte, 32)

	f.Add(make([]byte, 24))
	f.Add(make([]byte, 23))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, wrapped []byte) {
		out := make([]byte, len(wrapped))
		err := d.AesKeyWrapDirect(HandlerSWLibrary, CipherOpDecrypt, wrapped, out, kek, nil, 1)
		if err == nil {
			// Only a genuine wrap of out under kek authenticates.
			again := make([]byte, len(wrapped))
			if werr := d.AesKeyWrapDirect(HandlerSWLibrary, CipherOpEncrypt, out[:len(wrapped)-8], again, kek, nil, 1); werr != nil {
				t.Fatalf("rewrap failed: %v", werr)
			}
			if string(again) != string(wrapped) {
				t.Fatal("unwrap accepted data that does not rewrap to the input")
			}
		}
	})
}

// FuzzDigSignVerify passes arbitrary public keys and signatures to verify.
// A verdict other than Unknown must come with a nil error.
func FuzzDigSignVerify(f *testing.F) {
	d, err := NewDispatcher(nil, WithLogger(NopLogger()))
	if err != nil {
		f.Fatalf("Failed to create dispatcher: %v", err)
	}
	_, pub, err := GenerateKeyPair(CurveP256)
	if err != nil {
		f.Fatalf("Failed to generate key pair: %v", err)
	}

	f.Add(pub, make([]byte, 64), uint8(CurveP256), uint8(HandlerSWLibrary))
	f.Add(pub[:33], make([]byte, 64), uint8(CurveP256), uint8(HandlerHWInternal))
	f.Add([]byte{0x02}, []byte{1}, uint8(CurveSECP256K1), uint8(HandlerSWLibrary))

	hash := make([]byte, 32)
	f.Fuzz(func(t *testing.T, pub, sig []byte, curve, h uint8) {
		verdict, err := d.DigSignVerify(HandlerType(h), hash, sig, pub, EccCurve(curve), 1)
		if err != nil && verdict != VerdictUnknown {
			t.Fatalf("verdict %s reported with error %v", verdict, err)
		}
		if err == nil && verdict == VerdictUnknown {
			t.Fatal("successful call without a verdict")
		}
	})
}
