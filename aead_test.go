// aead_test.go: Tests for AES-GCM, AES-EAX and AES-CCM dispatch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NIST GCM test vector (gcmEncryptExtIV128, AAD only). gcmKATag is the tag
// over the empty plaintext; gcmAppCT and gcmAppTag encrypt gcmAppPlaintext
// under the same key, IV and AAD.
const (
	gcmKAKey = "77be63708971c4e240d1cb79e8d77feb"
	gcmKAIV  = "e0e00f19fed7ba0136a797f3"
	gcmKAAAD = "7a43ec1d9c0a5a78a0b16533a6213cab"
	gcmKATag = "209fcc8d3675ed938e9c7166709dd946"

	gcmAppPlaintext = "the favorite microchip test app!"
	gcmAppCT        = "03084b2fb8b92aa12c236caad9211df63dcf7844a9778d57600daeba1a377f42"
	gcmAppTag       = "18526d3d292b5ccc5489e413e9439a1f"
)

func testPlaintext() []byte {
	return []byte("thirty-two bytes of plaintext!!!")
}

// gcmStream runs a whole streaming GCM operation, feeding in by chunk.
func gcmStream(t *testing.T, d *Dispatcher, h HandlerType, op CipherOperation, key, iv, aad, in []byte, chunk int, tag []byte) ([]byte, error) {
	t.Helper()
	var ctx AesGcmContext
	if err := d.AesGcmInit(&ctx, h, op, key, iv, 1); err != nil {
		return nil, err
	}
	if err := AesGcmAddAadData(&ctx, aad); err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	for off := 0; off < len(in); off += chunk {
		end := min(off+chunk, len(in))
		if err := AesGcmCipher(&ctx, in[off:end], out[off:end]); err != nil {
			return nil, err
		}
	}
	return out, AesGcmFinal(&ctx, tag)
}

func TestAesGcm_KnownAnswer(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv, aad := mustHex(t, gcmKAKey), mustHex(t, gcmKAIV), mustHex(t, gcmKAAAD)
	want := mustHex(t, gcmKATag)

	for _, h := range []HandlerType{HandlerSWLibrary, HandlerHWInternal} {
		t.Run("direct "+h.String(), func(t *testing.T) {
			tag := make([]byte, 16)
			require.NoError(t, d.AesGcmEncryptAuthDirect(h, nil, nil, key, iv, aad, tag, 1))
			assert.Equal(t, want, tag)
			require.NoError(t, d.AesGcmDecryptAuthDirect(h, nil, nil, key, iv, aad, tag, 1))
		})
	}

	t.Run("streaming", func(t *testing.T) {
		tag := make([]byte, 16)
		_, err := gcmStream(t, d, HandlerSWLibrary, CipherOpEncrypt, key, iv, aad, nil, 1, tag)
		require.NoError(t, err)
		assert.Equal(t, want, tag)
	})
}

func TestAesGcm_PlaintextRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv, aad := mustHex(t, gcmKAKey), mustHex(t, gcmKAIV), mustHex(t, gcmKAAAD)
	pt := []byte(gcmAppPlaintext)
	wantCT, wantTag := mustHex(t, gcmAppCT), mustHex(t, gcmAppTag)
	require.Len(t, pt, 32)

	for _, h := range []HandlerType{HandlerSWLibrary, HandlerHWInternal} {
		t.Run("direct "+h.String(), func(t *testing.T) {
			ct, tag := make([]byte, len(pt)), make([]byte, 16)
			require.NoError(t, d.AesGcmEncryptAuthDirect(h, pt, ct, key, iv, aad, tag, 1))
			assert.Equal(t, wantCT, ct)
			assert.Equal(t, wantTag, tag)
			assert.NotEqual(t, mustHex(t, gcmKATag), tag, "the AAD-only tag covers the empty plaintext")

			out := make([]byte, len(ct))
			require.NoError(t, d.AesGcmDecryptAuthDirect(h, ct, out, key, iv, aad, tag, 1))
			assert.Equal(t, pt, out)
		})
	}

	t.Run("streaming", func(t *testing.T) {
		tag := make([]byte, 16)
		ct, err := gcmStream(t, d, HandlerSWLibrary, CipherOpEncrypt, key, iv, aad, pt, 10, tag)
		require.NoError(t, err)
		assert.Equal(t, wantCT, ct)
		assert.Equal(t, wantTag, tag)

		plain, err := gcmStream(t, d, HandlerSWLibrary, CipherOpDecrypt, key, iv, aad, ct, 10, tag)
		require.NoError(t, err)
		assert.Equal(t, pt, plain)
	})
}

func TestAesGcm_StreamingMatchesDirect(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv, aad := mustHex(t, gcmKAKey), mustHex(t, gcmKAIV), []byte("header")
	pt := testPlaintext()

	directCT := make([]byte, len(pt))
	directTag := make([]byte, 16)
	require.NoError(t, d.AesGcmEncryptAuthDirect(HandlerSWLibrary, pt, directCT, key, iv, aad, directTag, 1))

	for _, chunk := range []int{1, 5, 16, 32} {
		tag := make([]byte, 16)
		ct, err := gcmStream(t, d, HandlerSWLibrary, CipherOpEncrypt, key, iv, aad, pt, chunk, tag)
		require.NoError(t, err)
		assert.Equal(t, directCT, ct, "chunk %d", chunk)
		assert.Equal(t, directTag, tag, "chunk %d", chunk)
	}

	plain, err := gcmStream(t, d, HandlerSWLibrary, CipherOpDecrypt, key, iv, aad, directCT, 7, directTag)
	require.NoError(t, err)
	assert.Equal(t, pt, plain)

	out := make([]byte, len(pt))
	require.NoError(t, d.AesGcmDecryptAuthDirect(HandlerSWLibrary, directCT, out, key, iv, aad, directTag, 1))
	assert.Equal(t, pt, out)
}

func TestAesGcm_HardwareMatchesSoftware(t *testing.T) {
	d := newTestDispatcher(t)
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := []byte("unique nonce")
	pt := testPlaintext()

	swCT, swTag := make([]byte, len(pt)), make([]byte, 12)
	hwCT, hwTag := make([]byte, len(pt)), make([]byte, 12)
	require.NoError(t, d.AesGcmEncryptAuthDirect(HandlerSWLibrary, pt, swCT, key, iv, []byte("aad"), swTag, 1))
	require.NoError(t, d.AesGcmEncryptAuthDirect(HandlerHWInternal, pt, hwCT, key, iv, []byte("aad"), hwTag, 1))
	assert.Equal(t, swCT, hwCT)
	assert.Equal(t, swTag, hwTag)

	out := make([]byte, len(pt))
	require.NoError(t, d.AesGcmDecryptAuthDirect(HandlerHWInternal, swCT, out, key, iv, []byte("aad"), swTag, 1))
	assert.Equal(t, pt, out)
}

func TestAesGcm_TruncatedTagsArePrefixes(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv := mustHex(t, gcmKAKey), mustHex(t, gcmKAIV)
	pt := testPlaintext()

	full := make([]byte, 16)
	require.NoError(t, d.AesGcmEncryptAuthDirect(HandlerSWLibrary, pt, make([]byte, len(pt)), key, iv, nil, full, 1))

	for n := AeadMinTagSize; n <= AeadMaxTagSize; n++ {
		for _, h := range []HandlerType{HandlerSWLibrary, HandlerHWInternal} {
			tag := make([]byte, n)
			require.NoError(t, d.AesGcmEncryptAuthDirect(h, pt, make([]byte, len(pt)), key, iv, nil, tag, 1))
			assert.Equal(t, full[:n], tag, "%s tag length %d", h, n)
		}
	}
}

func TestAesGcm_AuthenticationFailure(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv := mustHex(t, gcmKAKey), mustHex(t, gcmKAIV)
	pt := testPlaintext()
	ct, tag := make([]byte, len(pt)), make([]byte, 16)
	require.NoError(t, d.AesGcmEncryptAuthDirect(HandlerSWLibrary, pt, ct, key, iv, nil, tag, 1))

	tampered := append([]byte(nil), tag...)
	tampered[0] ^= 0x01

	for _, h := range []HandlerType{HandlerSWLibrary, HandlerHWInternal} {
		out := make([]byte, len(ct))
		err := d.AesGcmDecryptAuthDirect(h, ct, out, key, iv, nil, tampered, 1)
		assert.ErrorIs(t, err, AeadErrorCipFail)
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Equal(t, AeadErrorCipFail, AeadStatusOf(err))
		assert.Equal(t, make([]byte, len(ct)), out, "%s must not release plaintext", h)
	}

	_, err := gcmStream(t, d, HandlerSWLibrary, CipherOpDecrypt, key, iv, nil, ct, 8, tampered)
	assert.ErrorIs(t, err, AeadErrorCipFail)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAesGcm_DirectValidation(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv := make([]byte, 16), make([]byte, 12)
	in, out, tag := []byte("data"), make([]byte, 4), make([]byte, 16)

	tests := []struct {
		name string
		call func() error
		want AeadStatus
	}{
		{"nil key", func() error { return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, nil, iv, nil, tag, 1) }, AeadErrorKey},
		{"short key", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, make([]byte, 15), iv, nil, tag, 1)
		}, AeadErrorKey},
		{"nil nonce", func() error { return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, nil, nil, tag, 1) }, AeadErrorNonce},
		{"empty nonce", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, []byte{}, nil, tag, 1)
		}, AeadErrorNonce},
		{"sid zero", func() error { return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, iv, nil, tag, 0) }, AeadErrorSID},
		{"bad handler", func() error { return d.AesGcmEncryptAuthDirect(handlerMax, in, out, key, iv, nil, tag, 1) }, AeadErrorHandler},
		{"empty aad", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, iv, []byte{}, tag, 1)
		}, AeadErrorAAD},
		{"empty input", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, []byte{}, out, key, iv, nil, tag, 1)
		}, AeadErrorInputData},
		{"missing output", func() error { return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, nil, key, iv, nil, tag, 1) }, AeadErrorOutputData},
		{"short output", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, make([]byte, 3), key, iv, nil, tag, 1)
		}, AeadErrorOutputData},
		{"nil tag", func() error { return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, iv, nil, nil, 1) }, AeadErrorAuthTag},
		{"tag too short", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, iv, nil, make([]byte, 3), 1)
		}, AeadErrorAuthTag},
		{"tag too long", func() error {
			return d.AesGcmEncryptAuthDirect(HandlerSWLibrary, in, out, key, iv, nil, make([]byte, 17), 1)
		}, AeadErrorAuthTag},
		{"decrypt without input or aad", func() error {
			return d.AesGcmDecryptAuthDirect(HandlerSWLibrary, nil, nil, key, iv, nil, tag, 1)
		}, AeadErrorArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want, AeadStatusOf(err))
		})
	}

	t.Run("encrypt without input or aad", func(t *testing.T) {
		assert.NoError(t, d.AesGcmEncryptAuthDirect(HandlerSWLibrary, nil, nil, key, iv, nil, tag, 1))
	})
}

func TestAesGcm_StreamingValidation(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv := make([]byte, 16), make([]byte, 12)

	t.Run("nil context", func(t *testing.T) {
		assert.ErrorIs(t, d.AesGcmInit(nil, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1), AeadErrorCipContext)
		assert.ErrorIs(t, AesGcmAddAadData(nil, []byte("a")), AeadErrorCipContext)
		assert.ErrorIs(t, AesGcmCipher(nil, nil, nil), AeadErrorCipContext)
		assert.ErrorIs(t, AesGcmFinal(nil, make([]byte, 16)), AeadErrorCipContext)
	})

	t.Run("uninitialized context", func(t *testing.T) {
		var ctx AesGcmContext
		assert.ErrorIs(t, AesGcmAddAadData(&ctx, []byte("a")), AeadErrorCipContext)
		assert.ErrorIs(t, AesGcmFinal(&ctx, make([]byte, 16)), AeadErrorCipContext)
	})

	t.Run("bad direction", func(t *testing.T) {
		var ctx AesGcmContext
		assert.ErrorIs(t, d.AesGcmInit(&ctx, HandlerSWLibrary, CipherOpInvalid, key, iv, 1), AeadErrorCipOper)
		assert.ErrorIs(t, d.AesGcmInit(&ctx, HandlerSWLibrary, cipherOpMax, key, iv, 1), AeadErrorCipOper)
	})

	t.Run("argument errors keep the context", func(t *testing.T) {
		var ctx AesGcmContext
		require.NoError(t, d.AesGcmInit(&ctx, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))
		assert.ErrorIs(t, AesGcmAddAadData(&ctx, []byte{}), AeadErrorAAD)
		assert.ErrorIs(t, AesGcmCipher(&ctx, []byte{}, make([]byte, 1)), AeadErrorInputData)
		assert.ErrorIs(t, AesGcmCipher(&ctx, []byte("ab"), nil), AeadErrorOutputData)
		assert.ErrorIs(t, AesGcmFinal(&ctx, make([]byte, 2)), AeadErrorAuthTag)
		require.NoError(t, AesGcmAddAadData(&ctx, nil))
		require.NoError(t, AesGcmFinal(&ctx, make([]byte, 16)))
	})

	t.Run("aad after data aborts", func(t *testing.T) {
		var ctx AesGcmContext
		require.NoError(t, d.AesGcmInit(&ctx, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))
		require.NoError(t, AesGcmCipher(&ctx, []byte("ab"), make([]byte, 2)))
		err := AesGcmAddAadData(&ctx, []byte("late"))
		assert.ErrorIs(t, err, AeadErrorArg)
		assert.ErrorIs(t, err, ErrBackendArgument)
		assert.ErrorIs(t, AesGcmFinal(&ctx, make([]byte, 16)), AeadErrorCipContext)
		assert.Empty(t, d.Sessions())
	})

	t.Run("final ends the operation", func(t *testing.T) {
		var ctx AesGcmContext
		require.NoError(t, d.AesGcmInit(&ctx, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))
		require.NoError(t, AesGcmFinal(&ctx, make([]byte, 16)))
		assert.ErrorIs(t, AesGcmCipher(&ctx, []byte("a"), make([]byte, 1)), AeadErrorCipContext)
		assert.Empty(t, d.Sessions())
	})
}

func TestAesGcm_SessionRevocation(t *testing.T) {
	d := newTestDispatcher(t)
	key, iv := make([]byte, 16), make([]byte, 12)

	var first, second AesGcmContext
	require.NoError(t, d.AesGcmInit(&first, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))
	require.NoError(t, d.AesGcmInit(&second, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))

	err := AesGcmAddAadData(&first, []byte("a"))
	assert.ErrorIs(t, err, AeadErrorCipContext)
	assert.Contains(t, err.Error(), "taken over")

	require.NoError(t, AesGcmAddAadData(&second, []byte("a")))
	require.NoError(t, AesGcmFinal(&second, make([]byte, 16)))

	// Resetting the revoked context must not free the slot of a newer owner.
	var third AesGcmContext
	require.NoError(t, d.AesGcmInit(&third, HandlerSWLibrary, CipherOpEncrypt, key, iv, 1))
	first.Reset()
	require.Len(t, d.Sessions(), 1)
	require.NoError(t, AesGcmFinal(&third, make([]byte, 16)))
}

func TestAesGcm_HardwareStreamingNotSupported(t *testing.T) {
	d := newTestDispatcher(t)
	var ctx AesGcmContext
	err := d.AesGcmInit(&ctx, HandlerHWInternal, CipherOpEncrypt, make([]byte, 16), make([]byte, 12), 1)
	assert.ErrorIs(t, err, AeadErrorNotSupported)
	assert.Empty(t, d.Sessions())
}

// EAX vectors from the EAX mode paper (Bellare, Rogaway, Wagner).
func TestAesEax_KnownAnswer(t *testing.T) {
	d := newTestDispatcher(t)
	cases := []struct {
		key, nonce, header, msg, cipher string
	}{
		{"233952dee4d5ed5f9b9c6d6ff80ff478", "62ec67f9c3a4a407fcb2a8c49031a8b3", "6bfb914fd07eae6b", "", "e037830e8389f27b025a2d6527e79d01"},
		{"91945d3f4dcbee0bf45ef52255f095a4", "becaf043b0a23d843194ba972c66debd", "fa3bfd4806eb53fa", "f7fb", "19dd5c4c9331049d0bdab0277408f67967e5"},
	}

	for _, tc := range cases {
		key, nonce, header := mustHex(t, tc.key), mustHex(t, tc.nonce), mustHex(t, tc.header)
		msg, want := mustHex(t, tc.msg), mustHex(t, tc.cipher)
		var in, out []byte
		if len(msg) > 0 {
			in, out = msg, make([]byte, len(msg))
		}
		tag := make([]byte, 16)
		require.NoError(t, d.AesEaxEncryptAuthDirect(HandlerSWLibrary, in, out, key, nonce, header, tag, 1))
		assert.Equal(t, want, append(out, tag...))

		var ctx AesEaxContext
		require.NoError(t, d.AesEaxInit(&ctx, HandlerSWLibrary, CipherOpEncrypt, key, nonce, 1))
		require.NoError(t, AesEaxAddAadData(&ctx, header))
		streamOut := make([]byte, len(msg))
		if len(msg) > 0 {
			require.NoError(t, AesEaxCipher(&ctx, msg, streamOut))
		}
		streamTag := make([]byte, 16)
		require.NoError(t, AesEaxFinal(&ctx, streamTag))
		assert.Equal(t, want, append(streamOut, streamTag...))
	}
}

func TestAesEax_RoundTripAndTamper(t *testing.T) {
	d := newTestDispatcher(t)
	key := bytes.Repeat([]byte{0x11}, 24)
	nonce := []byte("eax nonce of any length")
	pt := testPlaintext()

	ct, tag := make([]byte, len(pt)), make([]byte, 10)
	require.NoError(t, d.AesEaxEncryptAuthDirect(HandlerSWLibrary, pt, ct, key, nonce, []byte("hdr"), tag, 1))

	var ctx AesEaxContext
	require.NoError(t, d.AesEaxInit(&ctx, HandlerSWLibrary, CipherOpDecrypt, key, nonce, 1))
	require.NoError(t, AesEaxAddAadData(&ctx, []byte("h")))
	require.NoError(t, AesEaxAddAadData(&ctx, []byte("dr")))
	out := make([]byte, len(ct))
	require.NoError(t, AesEaxCipher(&ctx, ct[:13], out[:13]))
	require.NoError(t, AesEaxCipher(&ctx, ct[13:], out[13:]))
	require.NoError(t, AesEaxFinal(&ctx, tag))
	assert.Equal(t, pt, out)

	ct[0] ^= 0x80
	err := d.AesEaxDecryptAuthDirect(HandlerSWLibrary, ct, make([]byte, len(ct)), key, nonce, []byte("hdr"), tag, 1)
	assert.ErrorIs(t, err, AeadErrorCipFail)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAesEax_HardwareNotSupported(t *testing.T) {
	d := newTestDispatcher(t)
	key, nonce := make([]byte, 16), make([]byte, 16)

	err := d.AesEaxEncryptAuthDirect(HandlerHWInternal, []byte("x"), make([]byte, 1), key, nonce, nil, make([]byte, 16), 1)
	assert.ErrorIs(t, err, AeadErrorNotSupported)

	var ctx AesEaxContext
	err = d.AesEaxInit(&ctx, HandlerHWInternal, CipherOpEncrypt, key, nonce, 1)
	assert.ErrorIs(t, err, AeadErrorNotSupported)
}

// RFC 3610 packet vector #1.
func TestAesCcm_KnownAnswer(t *testing.T) {
	d := newTestDispatcher(t)
	key := mustHex(t, "c0c1c2c3c4c5c6c7c8c9cacbcccdcecf")
	nonce := mustHex(t, "00000003020100a0a1a2a3a4a5")
	aad := mustHex(t, "0001020304050607")
	pt := mustHex(t, "08090a0b0c0d0e0f101112131415161718191a1b1c1d1e")
	wantCT := mustHex(t, "588c979a61c663d2f066d0c2c0f989806d5f6b61dac384")
	wantTag := mustHex(t, "17e8d12cfdf926e0")

	var ctx AesCcmContext
	require.NoError(t, d.AesCcmInit(&ctx, HandlerSWLibrary, key, 1))

	ct, tag := make([]byte, len(pt)), make([]byte, 8)
	require.NoError(t, AesCcmCipher(&ctx, CipherOpEncrypt, pt, ct, nonce, tag, aad))
	assert.Equal(t, wantCT, ct)
	assert.Equal(t, wantTag, tag)

	// The key stays bound across messages.
	out := make([]byte, len(ct))
	require.NoError(t, AesCcmCipher(&ctx, CipherOpDecrypt, ct, out, nonce, tag, aad))
	assert.Equal(t, pt, out)
}

func TestAesCcm_Validation(t *testing.T) {
	d := newTestDispatcher(t)
	key := make([]byte, 16)
	nonce := make([]byte, 12)

	var ctx AesCcmContext
	assert.ErrorIs(t, AesCcmCipher(&ctx, CipherOpEncrypt, []byte("a"), make([]byte, 1), nonce, make([]byte, 8), nil), AeadErrorCipContext)
	assert.ErrorIs(t, d.AesCcmInit(&ctx, HandlerSWLibrary, make([]byte, 10), 1), AeadErrorKey)
	assert.ErrorIs(t, d.AesCcmInit(&ctx, HandlerSWLibrary, key, 2), AeadErrorSID)
	assert.ErrorIs(t, d.AesCcmInit(&ctx, HandlerInvalid, key, 1), AeadErrorHandler)
	assert.ErrorIs(t, d.AesCcmInit(&ctx, HandlerHWInternal, key, 1), AeadErrorNotSupported)
	require.NoError(t, d.AesCcmInit(&ctx, HandlerSWLibrary, key, 1))

	in, out, tag := []byte("message"), make([]byte, 7), make([]byte, 8)
	tests := []struct {
		name string
		call func() error
		want AeadStatus
	}{
		{"bad direction", func() error { return AesCcmCipher(&ctx, CipherOpInvalid, in, out, nonce, tag, nil) }, AeadErrorCipOper},
		{"nonce too short", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, make([]byte, 6), tag, nil) }, AeadErrorNonce},
		{"nonce too long", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, make([]byte, 14), tag, nil) }, AeadErrorNonce},
		{"nil nonce", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, nil, tag, nil) }, AeadErrorNonce},
		{"empty aad", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, nonce, tag, []byte{}) }, AeadErrorAAD},
		{"empty input", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, []byte{}, out, nonce, tag, nil) }, AeadErrorInputData},
		{"short output", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out[:6], nonce, tag, nil) }, AeadErrorOutputData},
		{"odd tag", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, nonce, make([]byte, 5), nil) }, AeadErrorAuthTag},
		{"nil tag", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, in, out, nonce, nil, nil) }, AeadErrorAuthTag},
		{"no input and no aad", func() error { return AesCcmCipher(&ctx, CipherOpEncrypt, nil, nil, nonce, tag, nil) }, AeadErrorArg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}

	// Argument errors leave the key bound.
	require.NoError(t, AesCcmCipher(&ctx, CipherOpEncrypt, in, out, nonce, tag, nil))
	require.NoError(t, AesCcmCipher(&ctx, CipherOpEncrypt, nil, nil, nonce, tag, []byte("aad only")))
}

func TestAesCcm_AuthenticationFailureResetsContext(t *testing.T) {
	d := newTestDispatcher(t)
	key := bytes.Repeat([]byte{0x07}, 32)
	nonce := make([]byte, 7)
	pt := testPlaintext()

	var ctx AesCcmContext
	require.NoError(t, d.AesCcmInit(&ctx, HandlerSWLibrary, key, 1))
	ct, tag := make([]byte, len(pt)), make([]byte, 16)
	require.NoError(t, AesCcmCipher(&ctx, CipherOpEncrypt, pt, ct, nonce, tag, nil))

	tag[15] ^= 0xFF
	err := AesCcmCipher(&ctx, CipherOpDecrypt, ct, make([]byte, len(ct)), nonce, tag, nil)
	assert.ErrorIs(t, err, AeadErrorCipFail)
	assert.ErrorIs(t, err, ErrAuthentication)

	err = AesCcmCipher(&ctx, CipherOpDecrypt, ct, make([]byte, len(ct)), nonce, tag, nil)
	assert.ErrorIs(t, err, AeadErrorCipContext)
}
