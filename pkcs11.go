//go:build cgo

// pkcs11.go: PKCS#11 secure element provider
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"context"
	"fmt"
	"sync"

	"github.com/miekg/pkcs11"
)

// PKCS11Provider talks to a token through a PKCS#11 module. One session is
// opened at Initialize and serialized by a mutex.
type PKCS11Provider struct {
	cfg SecureElementConfig

	mu       sync.Mutex
	ctx      *pkcs11.Ctx
	session  pkcs11.SessionHandle
	loggedIn bool
	ready    bool
}

// NewPKCS11Provider creates a provider for cfg. The module is loaded by Initialize.
func NewPKCS11Provider(cfg *SecureElementConfig) (SecureElementProvider, error) {
	if cfg == nil || cfg.Lib == "" {
		return nil, fmt.Errorf("PKCS#11 module path is required")
	}
	return &PKCS11Provider{cfg: *cfg}, nil
}

func (p *PKCS11Provider) Name() string { return "pkcs11" }

func (p *PKCS11Provider) Initialize(_ context.Context, _ map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx := pkcs11.New(p.cfg.Lib)
	if ctx == nil {
		return fmt.Errorf("failed to load PKCS#11 module: %s", p.cfg.Lib)
	}
	if err := ctx.Initialize(); err != nil {
		if e, ok := err.(pkcs11.Error); !ok || e != pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED {
			ctx.Destroy()
			return fmt.Errorf("failed to initialize PKCS#11 module: %w", err)
		}
	}

	slot, err := p.findSlot(ctx)
	if err != nil {
		ctx.Destroy()
		return err
	}
	session, err := ctx.OpenSession(slot, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		ctx.Destroy()
		return fmt.Errorf("failed to open session: %w", err)
	}
	if pin := p.cfg.PIN(); pin != "" {
		if err := ctx.Login(session, pkcs11.CKU_USER, pin); err != nil {
			if e, ok := err.(pkcs11.Error); !ok || e != pkcs11.CKR_USER_ALREADY_LOGGED_IN {
				_ = ctx.CloseSession(session)
				ctx.Destroy()
				return fmt.Errorf("failed to login: %w", err)
			}
		}
		p.loggedIn = true
	}

	p.ctx = ctx
	p.session = session
	p.ready = true
	return nil
}

func (p *PKCS11Provider) findSlot(ctx *pkcs11.Ctx) (uint, error) {
	if p.cfg.Slot != nil {
		return *p.cfg.Slot, nil
	}
	slots, err := ctx.GetSlotList(true)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot list: %w", err)
	}
	for _, slot := range slots {
		info, err := ctx.GetTokenInfo(slot)
		if err != nil {
			continue
		}
		if info.Label == p.cfg.Token {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("token with label %q not found", p.cfg.Token)
}

// Close logs out and closes the session. C_Finalize is not called because it
// is global to the process.
func (p *PKCS11Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil
	}
	p.ready = false

	var errs []error
	if p.loggedIn {
		if err := p.ctx.Logout(p.session); err != nil {
			if e, ok := err.(pkcs11.Error); !ok || e != pkcs11.CKR_USER_NOT_LOGGED_IN {
				errs = append(errs, fmt.Errorf("logout: %w", err))
			}
		}
	}
	if err := p.ctx.CloseSession(p.session); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	p.ctx.Destroy()
	if len(errs) > 0 {
		return fmt.Errorf("PKCS#11 close: %v", errs)
	}
	return nil
}

func (p *PKCS11Provider) IsHealthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *PKCS11Provider) GenerateRandom(_ context.Context, length int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil, ErrSENotInitialized
	}
	return p.ctx.GenerateRandom(p.session, length)
}

func (p *PKCS11Provider) Digest(_ context.Context, algo HashAlgo, data []byte) ([]byte, error) {
	var mech uint
	switch algo {
	case HashSHA1:
		mech = pkcs11.CKM_SHA_1
	case HashSHA224:
		mech = pkcs11.CKM_SHA224
	case HashSHA256:
		mech = pkcs11.CKM_SHA256
	case HashSHA384:
		mech = pkcs11.CKM_SHA384
	case HashSHA512:
		mech = pkcs11.CKM_SHA512
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, algo)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil, ErrSENotInitialized
	}
	if err := p.ctx.DigestInit(p.session, []*pkcs11.Mechanism{pkcs11.NewMechanism(mech, nil)}); err != nil {
		return nil, fmt.Errorf("digest init: %w", err)
	}
	return p.ctx.Digest(p.session, data)
}
