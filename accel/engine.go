// engine.go: Accelerator instance, status register and PKCC sequencing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"crypto/rand"
	"io"
	"sync"
	"sync/atomic"
)

// Op is a PKCC operation.
type Op int

const (
	OpSign Op = iota + 1
	OpVerify
	OpScalarMult
)

func (o Op) String() string {
	switch o {
	case OpSign:
		return "SIGN"
	case OpVerify:
		return "VERIFY"
	case OpScalarMult:
		return "SCALAR_MULT"
	}
	return "UNKNOWN"
}

// Phase is a step of a PKCC operation. Every successful operation visits the
// phases in declaration order.
type Phase int

const (
	PhaseInitCurveParams Phase = iota + 1
	PhaseCopyOperands
	PhaseLaunch
	PhasePoll
	PhaseCopyResult
)

func (p Phase) String() string {
	switch p {
	case PhaseInitCurveParams:
		return "INIT_CURVE_PARAMS"
	case PhaseCopyOperands:
		return "COPY_OPERANDS"
	case PhaseLaunch:
		return "LAUNCH"
	case PhasePoll:
		return "POLL"
	case PhaseCopyResult:
		return "COPY_RESULT"
	}
	return "UNKNOWN"
}

// status register values
const (
	statusIdle uint32 = iota
	statusBusy
	statusDone
)

// DefaultPollLimit bounds status polling when no limit is configured.
const DefaultPollLimit = 1024

// Engine is one accelerator instance.
type Engine struct {
	pkccMu    sync.Mutex
	status    atomic.Uint32
	result    atomic.Int32
	rand      io.Reader
	pollLimit int
	onPhase   func(Op, Phase)
	ops       atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandReader replaces the entropy source behind the TRNG.
func WithRandReader(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// WithPollLimit sets how many status reads a PKCC operation may take.
func WithPollLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pollLimit = n
		}
	}
}

// WithPhaseHook registers fn to observe PKCC phase transitions.
func WithPhaseHook(fn func(Op, Phase)) Option {
	return func(e *Engine) { e.onPhase = fn }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		rand:      rand.Reader,
		pollLimit: DefaultPollLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Operations returns the number of PKCC operations launched.
func (e *Engine) Operations() uint64 { return e.ops.Load() }

func (e *Engine) enter(op Op, p Phase) {
	if e.onPhase != nil {
		e.onPhase(op, p)
	}
}

// launch starts the coprocessor on compute and records its result in the
// status register.
func (e *Engine) launch(compute func() Result) {
	e.ops.Add(1)
	e.status.Store(statusBusy)
	r := compute()
	e.result.Store(int32(r))
	e.status.Store(statusDone)
}

// poll reads the status register until the operation completes.
func (e *Engine) poll() Result {
	for i := 0; i < e.pollLimit; i++ {
		if e.status.Load() == statusDone {
			e.status.Store(statusIdle)
			return Result(e.result.Load())
		}
	}
	e.status.Store(statusIdle)
	return ErrTimeout
}

// runPKCC sequences one PKCC operation. load stages operands into the
// workspace, compute runs on the coprocessor and unload copies results out.
func (e *Engine) runPKCC(op Op, ws *Workspace, c Curve,
	load func(*curveParams) Result,
	compute func(*curveParams) Result,
	unload func(*curveParams) Result,
) Result {
	if ws == nil {
		return ErrParam
	}
	e.pkccMu.Lock()
	defer e.pkccMu.Unlock()

	e.enter(op, PhaseInitCurveParams)
	params, ok := loadCurve(c)
	if !ok {
		return ErrCurve
	}

	e.enter(op, PhaseCopyOperands)
	if r := load(params); r != OK {
		return r
	}

	e.enter(op, PhaseLaunch)
	e.launch(func() Result { return compute(params) })

	e.enter(op, PhasePoll)
	if r := e.poll(); r != OK {
		return r
	}

	e.enter(op, PhaseCopyResult)
	return unload(params)
}
