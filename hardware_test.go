// hardware_test.go: Tests for the accelerator backend
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agilira/harmony-crypto/accel"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("trng fault") }

func TestHardware_PKCCSequence(t *testing.T) {
	var ops []accel.Op
	var phases []accel.Phase
	engine := accel.New(accel.WithPhaseHook(func(op accel.Op, p accel.Phase) {
		ops = append(ops, op)
		phases = append(phases, p)
	}))
	d := newTestDispatcher(t, WithEngine(engine))

	priv, pub, err := GenerateKeyPair(CurveP256)
	require.NoError(t, err)
	hash := messageDigest("pkcc")
	sig := make([]byte, 64)
	require.NoError(t, d.DigSignSign(HandlerHWInternal, hash, sig, priv, CurveP256, 1))

	assert.Equal(t, []accel.Phase{
		accel.PhaseInitCurveParams, accel.PhaseCopyOperands, accel.PhaseLaunch,
		accel.PhasePoll, accel.PhaseCopyResult,
	}, phases)
	for _, op := range ops {
		assert.Equal(t, accel.OpSign, op)
	}

	verdict, err := d.DigSignVerify(HandlerHWInternal, hash, sig, pub, CurveP256, 1)
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, verdict)
	assert.Equal(t, uint64(2), engine.Operations())

	// Software calls never reach the engine.
	require.NoError(t, d.DigSignSign(HandlerSWLibrary, hash, sig, priv, CurveP256, 1))
	assert.Equal(t, uint64(2), engine.Operations())
}

func TestHardware_TRNGFailure(t *testing.T) {
	d := newTestDispatcher(t, WithEngine(accel.New(accel.WithRandReader(failingReader{}))))

	err := d.RngGenerate(HandlerHWInternal, make([]byte, 16), nil, 1)
	assert.ErrorIs(t, err, RngErrorFail)
	assert.ErrorIs(t, err, ErrEntropy)

	priv, _, err := GenerateKeyPair(CurveP384)
	require.NoError(t, err)
	err = d.DigSignSign(HandlerHWInternal, messageDigest("nonce"), make([]byte, 96), priv, CurveP384, 1)
	assert.ErrorIs(t, err, DigSignErrorRNG)

	// The software backend keeps its own entropy.
	require.NoError(t, d.RngGenerate(HandlerSWLibrary, make([]byte, 16), nil, 1))
}

func TestResultError(t *testing.T) {
	tests := []struct {
		in   accel.Result
		want error
	}{
		{accel.ErrParam, ErrBackendArgument},
		{accel.ErrCurve, ErrCurve},
		{accel.ErrPoint, ErrPublicKey},
		{accel.ErrScalar, ErrPrivateKey},
		{accel.ErrRNG, ErrEntropy},
		{accel.ErrAuth, ErrAuthentication},
		{accel.ErrNotSupported, ErrUnsupported},
		{accel.ErrTimeout, ErrAccelerator},
		{accel.ErrFail, ErrAccelerator},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.ErrorIs(t, resultError(tt.in), tt.want)
		})
	}
	assert.NoError(t, resultError(accel.OK))
}

func TestHardware_Capabilities(t *testing.T) {
	hw := NewHardware(nil)
	assert.Equal(t, HandlerHWInternal, hw.Handler())
	assert.True(t, hw.SupportsAEAD(AeadModeGCM))
	assert.False(t, hw.SupportsAEAD(AeadModeCCM))
	assert.False(t, hw.SupportsAEAD(AeadModeEAX))

	var b Backend = hw
	_, streams := b.(AEADStreamer)
	_, blocks := b.(SymCipherer)
	_, wraps := b.(KeyWrapper)
	assert.False(t, streams)
	assert.False(t, blocks)
	assert.False(t, wraps)

	err := hw.SealAEAD(AeadModeCCM, make([]byte, 16), make([]byte, 12), nil, nil, nil, make([]byte, 16))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = hw.NewDigest(HashSHA256, []byte{1}, 0)
	assert.ErrorIs(t, err, ErrBackendArgument)
}
