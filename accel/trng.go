// trng.go: True random number generator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import "io"

// Random fills out from the TRNG. An empty out is a no-op.
func (e *Engine) Random(out []byte) Result {
	if len(out) == 0 {
		return OK
	}
	if _, err := io.ReadFull(e.rand, out); err != nil {
		return ErrRNG
	}
	return OK
}
