// rng.go: Random generation dispatch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"

	goerrors "github.com/agilira/go-errors"
)

func (d *Dispatcher) rngBackendError(h HandlerType, err error) error {
	d.backendFailed(FamilyRNG, "generate", h, err)
	switch {
	case errors.Is(err, ErrUnsupported):
		return failCause(RngErrorNotSupported, goerrors.New(ErrCodeNotSupported, "backend does not implement the request"), err)
	case errors.Is(err, ErrBackendArgument):
		return failCause(RngErrorArg, goerrors.New(ErrCodeArgument, "backend rejected an argument"), err)
	}
	return failCause(RngErrorFail, goerrors.New(ErrCodeBackend, "random generation failed"), err)
}

// RngGenerate fills out with random bytes.
//
// The software backend instantiates a DRBG per call, seeds it from the
// configured EntropySource plus the optional nonce, generates, and wipes
// its state. The hardware and secure element backends read their true
// random sources and ignore the nonce.
//
// A nil nonce is absent; a non-nil empty nonce fails with RngErrorNonce.
func (d *Dispatcher) RngGenerate(handler HandlerType, out, nonce []byte, sid SessionID) error {
	if len(out) == 0 {
		return fail(RngErrorArg, goerrors.New(ErrCodeOutput, "output is nil or empty"))
	}
	if nonce != nil && len(nonce) == 0 {
		return fail(RngErrorNonce, goerrors.New(ErrCodeNonce, "nonce is present but empty"))
	}
	if err := checkSession(d, RngErrorSID, sid); err != nil {
		return err
	}
	if err := checkHandler(RngErrorHandler, handler); err != nil {
		return err
	}
	g, ok := capability[RandomGenerator](d, handler)
	if !ok {
		return notSupported(RngErrorNotSupported, "random generation", handler)
	}

	d.route(FamilyRNG, "generate", handler)
	if err := g.Generate(out, nonce); err != nil {
		return d.rngBackendError(handler, err)
	}
	return nil
}
