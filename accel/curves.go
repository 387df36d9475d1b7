// curves.go: Curve parameter table loaded into the PKCC before each operation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"crypto/elliptic"
	"math/big"
	"sync"
)

// Curve identifies a curve supported by the PKCC.
type Curve int

const (
	CurveP192 Curve = iota + 1
	CurveP224
	CurveP256
	CurveP384
	CurveP521
)

var (
	p192Once sync.Once
	p192     *elliptic.CurveParams
)

// P192 returns the NIST P-192 (secp192r1) curve. It runs on the generic
// CurveParams arithmetic and is not constant time.
func P192() elliptic.Curve {
	p192Once.Do(func() {
		p192 = &elliptic.CurveParams{Name: "P-192", BitSize: 192}
		p192.P, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffeffffffffffffffff", 16)
		p192.N, _ = new(big.Int).SetString("ffffffffffffffffffffffff99def836146bc9b1b4d22831", 16)
		p192.B, _ = new(big.Int).SetString("64210519e59c80e70fa7e9ab72243049feb8deecc146b9b1", 16)
		p192.Gx, _ = new(big.Int).SetString("188da80eb03090f67cbf20eb43a18800f4ff0afd82ff1012", 16)
		p192.Gy, _ = new(big.Int).SetString("07192b95ffc8da78631011ed6b24cdd573f977a11e794811", 16)
	})
	return p192
}

// EllipticCurve returns the arithmetic for c, or nil if the PKCC lacks it.
func (c Curve) EllipticCurve() elliptic.Curve {
	switch c {
	case CurveP192:
		return P192()
	case CurveP224:
		return elliptic.P224()
	case CurveP256:
		return elliptic.P256()
	case CurveP384:
		return elliptic.P384()
	case CurveP521:
		return elliptic.P521()
	}
	return nil
}

// curveParams is what INIT_CURVE_PARAMS loads into the coprocessor.
type curveParams struct {
	curve    elliptic.Curve
	n        *big.Int
	fieldLen int
	orderLen int
}

func loadCurve(c Curve) (*curveParams, bool) {
	ec := c.EllipticCurve()
	if ec == nil {
		return nil, false
	}
	p := ec.Params()
	return &curveParams{
		curve:    ec,
		n:        p.N,
		fieldLen: (p.P.BitLen() + 7) / 8,
		orderLen: (p.N.BitLen() + 7) / 8,
	}, true
}

// FieldLen returns the coordinate size in bytes for c, or 0.
func (c Curve) FieldLen() int {
	p, ok := loadCurve(c)
	if !ok {
		return 0
	}
	return p.fieldLen
}

// OrderLen returns the scalar and signature-component size in bytes for c, or 0.
func (c Curve) OrderLen() int {
	p, ok := loadCurve(c)
	if !ok {
		return 0
	}
	return p.orderLen
}

// decodePoint accepts 0x04||X||Y or 0x02/0x03||X encodings and returns an
// affine point on the curve.
func (p *curveParams) decodePoint(enc []byte) (x, y *big.Int, ok bool) {
	if len(enc) == 0 {
		return nil, nil, false
	}
	switch enc[0] {
	case 0x04:
		if len(enc) != 1+2*p.fieldLen {
			return nil, nil, false
		}
		x = new(big.Int).SetBytes(enc[1 : 1+p.fieldLen])
		y = new(big.Int).SetBytes(enc[1+p.fieldLen:])
		if x.Cmp(p.curve.Params().P) >= 0 || y.Cmp(p.curve.Params().P) >= 0 {
			return nil, nil, false
		}
	case 0x02, 0x03:
		if len(enc) != 1+p.fieldLen {
			return nil, nil, false
		}
		x, y = elliptic.UnmarshalCompressed(p.curve, enc)
		if x == nil {
			return nil, nil, false
		}
	default:
		return nil, nil, false
	}
	if !p.curve.IsOnCurve(x, y) {
		return nil, nil, false
	}
	return x, y, true
}
