// status.go: Unified status enumerations returned by every dispatch family
//
// Each primitive family has its own closed status set whose zero value is
// success. Status values implement error so they can be matched with
// errors.Is after being wrapped together with a rich go-errors value.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"fmt"
	"strconv"
)

// status is satisfied by every family status enum.
type status interface {
	~int
	error
}

// fail wraps a family status together with a rich error carrying a code.
func fail[S status](s S, rich error) error {
	return fmt.Errorf("%w: %w", s, rich)
}

// failCause is fail for an error raised by a backend. cause stays reachable
// through errors.Is.
func failCause[S status](s S, rich, cause error) error {
	return fmt.Errorf("%w: %w: %w", s, rich, cause)
}

// statusOf extracts the family status from err. A nil error is success and an
// error carrying no status of that family maps to fallback.
func statusOf[S status](err error, fallback S) S {
	var s S
	if err == nil {
		return s
	}
	if errors.As(err, &s) {
		return s
	}
	return fallback
}

func statusText(names []string, v int) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return "UNKNOWN(" + strconv.Itoa(v) + ")"
}

// AeadStatus is the outcome of an authenticated-encryption call.
type AeadStatus int

const (
	AeadSuccess AeadStatus = iota
	AeadErrorCipContext
	AeadErrorInputData
	AeadErrorOutputData
	AeadErrorSID
	AeadErrorKey
	AeadErrorNonce
	AeadErrorAAD
	AeadErrorAuthTag
	AeadErrorCipOper
	AeadErrorHandler
	AeadErrorArg
	AeadErrorCipFail
	AeadErrorNotSupported
)

var aeadStatusNames = []string{
	"SUCCESS", "ERROR_CIPCONTEXT", "ERROR_INPUTDATA", "ERROR_OUTPUTDATA",
	"ERROR_SID", "ERROR_KEY", "ERROR_NONCE", "ERROR_AAD", "ERROR_AUTHTAG",
	"ERROR_CIPOPER", "ERROR_HANDLER", "ERROR_ARG", "ERROR_CIPFAIL",
	"ERROR_NOTSUPPTD",
}

func (s AeadStatus) String() string { return statusText(aeadStatusNames, int(s)) }
func (s AeadStatus) Error() string  { return "crypto/aead: " + s.String() }

// AeadStatusOf returns the AEAD status carried by err (AeadSuccess for nil).
func AeadStatusOf(err error) AeadStatus { return statusOf(err, AeadErrorCipFail) }

// SymStatus is the outcome of a symmetric block-cipher or key-wrap call.
type SymStatus int

const (
	SymSuccess SymStatus = iota
	SymErrorCipContext
	SymErrorInputData
	SymErrorOutputData
	SymErrorSID
	SymErrorOpMode
	SymErrorKey
	SymErrorIV
	SymErrorCipOper
	SymErrorHandler
	SymErrorArg
	SymErrorCipFail
	SymErrorNotSupported
)

var symStatusNames = []string{
	"SUCCESS", "ERROR_CIPCONTEXT", "ERROR_INPUTDATA", "ERROR_OUTPUTDATA",
	"ERROR_SID", "ERROR_OPMODE", "ERROR_KEY", "ERROR_IV", "ERROR_CIPOPER",
	"ERROR_HANDLER", "ERROR_ARG", "ERROR_CIPFAIL", "ERROR_NOTSUPPTD",
}

func (s SymStatus) String() string { return statusText(symStatusNames, int(s)) }
func (s SymStatus) Error() string  { return "crypto/sym: " + s.String() }

// SymStatusOf returns the symmetric status carried by err (SymSuccess for nil).
func SymStatusOf(err error) SymStatus { return statusOf(err, SymErrorCipFail) }

// HashStatus is the outcome of a hash call.
type HashStatus int

const (
	HashSuccess HashStatus = iota
	HashErrorContext
	HashErrorInputData
	HashErrorOutputData
	HashErrorSID
	HashErrorAlgo
	HashErrorKey
	HashErrorArg
	HashErrorHandler
	HashErrorFail
	HashErrorNotSupported
)

var hashStatusNames = []string{
	"SUCCESS", "ERROR_CTX", "ERROR_INPUTDATA", "ERROR_OUTPUTDATA", "ERROR_SID",
	"ERROR_ALGO", "ERROR_KEY", "ERROR_ARG", "ERROR_HANDLER", "ERROR_FAIL",
	"ERROR_NOTSUPPTD",
}

func (s HashStatus) String() string { return statusText(hashStatusNames, int(s)) }
func (s HashStatus) Error() string  { return "crypto/hash: " + s.String() }

// HashStatusOf returns the hash status carried by err (HashSuccess for nil).
func HashStatusOf(err error) HashStatus { return statusOf(err, HashErrorFail) }

// DigSignStatus is the outcome of a sign or verify call. It never encodes the
// verification verdict, which is reported separately.
type DigSignStatus int

const (
	DigSignSuccess DigSignStatus = iota
	DigSignErrorInputHash
	DigSignErrorInputData
	DigSignErrorSignature
	DigSignErrorPrivKey
	DigSignErrorPubKey
	DigSignErrorPubKeyCompress
	DigSignErrorCurve
	DigSignErrorHashType
	DigSignErrorSID
	DigSignErrorHandler
	DigSignErrorArg
	DigSignErrorRNG
	DigSignErrorFail
	DigSignErrorNotSupported
)

var digSignStatusNames = []string{
	"SUCCESS", "ERROR_INPUTHASH", "ERROR_INPUTDATA", "ERROR_SIGNATURE",
	"ERROR_PRIVKEY", "ERROR_PUBKEY", "ERROR_PUBKEYCOMPRESS", "ERROR_CURVE",
	"ERROR_HASHTYPE", "ERROR_SID", "ERROR_HANDLER", "ERROR_ARG", "ERROR_RNG",
	"ERROR_FAIL", "ERROR_NOTSUPPTD",
}

func (s DigSignStatus) String() string { return statusText(digSignStatusNames, int(s)) }
func (s DigSignStatus) Error() string  { return "crypto/digsign: " + s.String() }

// DigSignStatusOf returns the signature status carried by err.
func DigSignStatusOf(err error) DigSignStatus { return statusOf(err, DigSignErrorFail) }

// KasStatus is the outcome of a key-agreement call.
type KasStatus int

const (
	KasSuccess KasStatus = iota
	KasErrorPrivKey
	KasErrorPubKey
	KasErrorPubKeyCompress
	KasErrorOutputData
	KasErrorCurve
	KasErrorSID
	KasErrorHandler
	KasErrorArg
	KasErrorFail
	KasErrorNotSupported
)

var kasStatusNames = []string{
	"SUCCESS", "ERROR_PRIVKEY", "ERROR_PUBKEY", "ERROR_PUBKEYCOMPRESS",
	"ERROR_OUTPUTDATA", "ERROR_CURVE", "ERROR_SID", "ERROR_HANDLER",
	"ERROR_ARG", "ERROR_FAIL", "ERROR_NOTSUPPTD",
}

func (s KasStatus) String() string { return statusText(kasStatusNames, int(s)) }
func (s KasStatus) Error() string  { return "crypto/kas: " + s.String() }

// KasStatusOf returns the key-agreement status carried by err.
func KasStatusOf(err error) KasStatus { return statusOf(err, KasErrorFail) }

// RngStatus is the outcome of a random generation call.
type RngStatus int

const (
	RngSuccess RngStatus = iota
	RngErrorArg
	RngErrorNonce
	RngErrorSID
	RngErrorHandler
	RngErrorFail
	RngErrorNotSupported
)

var rngStatusNames = []string{
	"SUCCESS", "ERROR_ARG", "ERROR_NONCE", "ERROR_SID", "ERROR_HANDLER",
	"ERROR_FAIL", "ERROR_NOTSUPPTD",
}

func (s RngStatus) String() string { return statusText(rngStatusNames, int(s)) }
func (s RngStatus) Error() string  { return "crypto/rng: " + s.String() }

// RngStatusOf returns the RNG status carried by err.
func RngStatusOf(err error) RngStatus { return statusOf(err, RngErrorFail) }

// Rich error codes attached to status errors.
const (
	ErrCodeContext      = "CRYPTO_CONTEXT"
	ErrCodeSessionRange = "CRYPTO_SESSION_RANGE"
	ErrCodeSessionLost  = "CRYPTO_SESSION_REVOKED"
	ErrCodeHandler      = "CRYPTO_HANDLER"
	ErrCodeNotSupported = "CRYPTO_NOT_SUPPORTED"
	ErrCodeKey          = "CRYPTO_KEY"
	ErrCodeNonce        = "CRYPTO_NONCE"
	ErrCodeAAD          = "CRYPTO_AAD"
	ErrCodeTag          = "CRYPTO_AUTH_TAG"
	ErrCodeInput        = "CRYPTO_INPUT"
	ErrCodeOutput       = "CRYPTO_OUTPUT"
	ErrCodeDirection    = "CRYPTO_DIRECTION"
	ErrCodeArgument     = "CRYPTO_ARGUMENT"
	ErrCodeMode         = "CRYPTO_MODE"
	ErrCodeAlgorithm    = "CRYPTO_ALGORITHM"
	ErrCodeCurve        = "CRYPTO_CURVE"
	ErrCodePrivateKey   = "CRYPTO_PRIVATE_KEY"
	ErrCodePublicKey    = "CRYPTO_PUBLIC_KEY"
	ErrCodeSignature    = "CRYPTO_SIGNATURE"
	ErrCodeBackend      = "CRYPTO_BACKEND"
)
