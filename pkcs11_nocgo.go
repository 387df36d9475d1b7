//go:build !cgo

// pkcs11_nocgo.go: PKCS#11 provider stub for builds without cgo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import "fmt"

// errNoCGO is returned when PKCS#11 is requested without cgo.
var errNoCGO = fmt.Errorf("secure element support requires CGO (build with CGO_ENABLED=1)")

// NewPKCS11Provider always fails without cgo.
func NewPKCS11Provider(_ *SecureElementConfig) (SecureElementProvider, error) {
	return nil, errNoCGO
}
