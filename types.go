// types.go: Selectors shared by every dispatch family
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import "errors"

// HandlerType selects the backend servicing a call.
type HandlerType int

const (
	HandlerInvalid       HandlerType = iota
	HandlerHWInternal                // on-chip accelerator
	HandlerSWLibrary                 // general purpose software library
	HandlerSecureElement             // external secure element
	handlerMax
)

var handlerNames = []string{"INVALID", "HW_INTERNAL", "SW_LIBRARY", "SECURE_ELEMENT"}

func (h HandlerType) String() string { return statusText(handlerNames, int(h)) }

// Valid reports whether h is inside the known handler window.
func (h HandlerType) Valid() bool { return h > HandlerInvalid && h < handlerMax }

// ParseHandler maps a short name (hw, sw, se) or a full handler name to a HandlerType.
func ParseHandler(s string) (HandlerType, bool) {
	switch s {
	case "hw", "HW_INTERNAL":
		return HandlerHWInternal, true
	case "sw", "SW_LIBRARY":
		return HandlerSWLibrary, true
	case "se", "SECURE_ELEMENT":
		return HandlerSecureElement, true
	}
	return HandlerInvalid, false
}

// CipherOperation is the direction of a cipher call. For key wrap, encrypt
// wraps and decrypt unwraps.
type CipherOperation int

const (
	CipherOpInvalid CipherOperation = iota
	CipherOpEncrypt
	CipherOpDecrypt
	cipherOpMax
)

func (op CipherOperation) valid() bool { return op > CipherOpInvalid && op < cipherOpMax }

func (op CipherOperation) String() string {
	return statusText([]string{"INVALID", "ENCRYPT", "DECRYPT"}, int(op))
}

// AeadMode identifies the AEAD construction a backend is asked to run.
type AeadMode int

const (
	AeadModeGCM AeadMode = iota + 1
	AeadModeCCM
	AeadModeEAX
)

func (m AeadMode) String() string {
	return statusText([]string{"INVALID", "AES-GCM", "AES-CCM", "AES-EAX"}, int(m))
}

// SymMode is the block-cipher mode of operation.
type SymMode int

const (
	SymModeInvalid SymMode = iota
	SymModeECB
	SymModeCBC
	SymModeCFB
	SymModeOFB
	SymModeCTR
	SymModeXTS
	symModeMax
)

func (m SymMode) valid() bool { return m > SymModeInvalid && m < symModeMax }

func (m SymMode) String() string {
	return statusText([]string{"INVALID", "ECB", "CBC", "CFB", "OFB", "CTR", "XTS"}, int(m))
}

// usesIV reports whether the mode consumes the caller IV.
func (m SymMode) usesIV() bool { return m != SymModeECB && m != SymModeXTS }

// HashAlgo identifies a hash function.
type HashAlgo int

const (
	HashInvalid HashAlgo = iota
	HashMD5
	HashRIPEMD160
	HashSHA1
	HashSHA224
	HashSHA256
	HashSHA384
	HashSHA512
	HashSHA512_224
	HashSHA512_256
	HashSHA3_224
	HashSHA3_256
	HashSHA3_384
	HashSHA3_512
	HashSHAKE128
	HashSHAKE256
	HashBLAKE2B
	HashBLAKE2S
	hashMax
)

var hashNames = []string{
	"INVALID", "MD5", "RIPEMD160", "SHA1", "SHA224", "SHA256", "SHA384", "SHA512",
	"SHA512_224", "SHA512_256", "SHA3_224", "SHA3_256", "SHA3_384", "SHA3_512",
	"SHAKE128", "SHAKE256", "BLAKE2B", "BLAKE2S",
}

func (a HashAlgo) String() string { return statusText(hashNames, int(a)) }

// Valid reports whether a is inside the known algorithm window.
func (a HashAlgo) Valid() bool { return a > HashInvalid && a < hashMax }

// ParseHashAlgo maps a name such as "SHA256" to its HashAlgo.
func ParseHashAlgo(s string) (HashAlgo, bool) {
	for i, n := range hashNames {
		if i > 0 && n == s {
			return HashAlgo(i), true
		}
	}
	return HashInvalid, false
}

// EccCurve identifies an elliptic curve.
type EccCurve int

const (
	CurveInvalid EccCurve = iota
	CurveP192
	CurveP224
	CurveP256
	CurveP384
	CurveP521
	CurveSECP256K1
	CurveX25519
	CurveX448
	curveMax
)

// EccMaxKeyLength is the largest private scalar accepted, in bytes (P-521).
const EccMaxKeyLength = 66

var curveNames = []string{
	"INVALID", "P192", "P224", "P256", "P384", "P521", "SECP256K1", "X25519", "X448",
}

func (c EccCurve) String() string { return statusText(curveNames, int(c)) }

// Valid reports whether c is inside the known curve window.
func (c EccCurve) Valid() bool { return c > CurveInvalid && c < curveMax }

// ParseCurve maps a name such as "P256" to its EccCurve.
func ParseCurve(s string) (EccCurve, bool) {
	for i, n := range curveNames {
		if i > 0 && n == s {
			return EccCurve(i), true
		}
	}
	return CurveInvalid, false
}

// montgomery reports whether the curve is an X25519/X448 style curve whose
// keys are raw u-coordinates without a point-encoding tag.
func (c EccCurve) montgomery() bool { return c == CurveX25519 || c == CurveX448 }

// orderLen is the byte length of the group order (signature component size).
func (c EccCurve) orderLen() int {
	switch c {
	case CurveP192:
		return 24
	case CurveP224:
		return 28
	case CurveP256, CurveSECP256K1, CurveX25519:
		return 32
	case CurveP384:
		return 48
	case CurveP521:
		return 66
	case CurveX448:
		return 56
	}
	return 0
}

// VerifyVerdict is the verification result reported next to a Verify status.
// A call may succeed while the verdict is VerdictFail.
type VerifyVerdict int

const (
	VerdictUnknown VerifyVerdict = iota
	VerdictPass
	VerdictFail
)

func (v VerifyVerdict) String() string {
	return statusText([]string{"UNKNOWN", "PASS", "FAIL"}, int(v))
}

// Backend-level errors. Backends wrap these so the dispatcher can map them to
// the family status of the caller.
var (
	// ErrAuthentication is returned when an authentication tag does not match.
	ErrAuthentication = errors.New("crypto: authentication failed")

	// ErrBackendArgument is returned when a backend rejects a parameter.
	ErrBackendArgument = errors.New("crypto: backend rejected argument")

	// ErrUnsupported is returned when a backend recognizes but cannot run an operation.
	ErrUnsupported = errors.New("crypto: operation not supported by backend")

	// ErrCurve is returned for a curve the backend cannot handle.
	ErrCurve = errors.New("crypto: unsupported curve")

	// ErrPrivateKey is returned when a private scalar is out of range.
	ErrPrivateKey = errors.New("crypto: invalid private key")

	// ErrPublicKey is returned when a public point cannot be decoded or is not on the curve.
	ErrPublicKey = errors.New("crypto: invalid public key")

	// ErrEntropy is returned when a random source fails.
	ErrEntropy = errors.New("crypto: entropy source failure")
)
