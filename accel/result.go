// Package accel models the on-chip cryptographic accelerator driven by the
// hardware backend: a public-key coprocessor (PKCC) for elliptic-curve
// operations, a SHA block, an AES-GCM engine and a true random generator.
//
// Driver calls take raw byte buffers and return a small Result code in the
// manner of a register-level driver. Elliptic-curve operations stage their
// operands in a caller-owned Workspace and run through a fixed sequence of
// phases (see Phase). At most one PKCC operation is in flight per Engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package accel

import "strconv"

// Result is the status code returned by every driver call.
type Result int

const (
	OK Result = iota
	ErrParam
	ErrCurve
	ErrPoint
	ErrScalar
	ErrRNG
	ErrAuth
	ErrTimeout
	ErrNotSupported
	ErrFail
)

var resultNames = [...]string{
	"OK", "ERR_PARAM", "ERR_CURVE", "ERR_POINT", "ERR_SCALAR", "ERR_RNG",
	"ERR_AUTH", "ERR_TIMEOUT", "ERR_NOT_SUPPORTED", "ERR_FAIL",
}

func (r Result) String() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "RESULT(" + strconv.Itoa(int(r)) + ")"
}
