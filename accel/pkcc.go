// pkcc.go: ECDSA and ECDH primitives executed on the public-key coprocessor
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"io"
	"math/big"
)

// maxNonceAttempts bounds the retries when a drawn nonce yields r or s of zero.
const maxNonceAttempts = 32

// hashToInt converts a digest to an integer, keeping the leftmost bits of
// the curve order as FIPS 186-4 requires.
func hashToInt(hash []byte, n *big.Int) *big.Int {
	orderBits := n.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}
	e := new(big.Int).SetBytes(hash)
	if excess := len(hash)*8 - orderBits; excess > 0 {
		e.Rsh(e, uint(excess))
	}
	return e
}

// scalarInRange reports whether 1 <= k < n.
func scalarInRange(k, n *big.Int) bool {
	return k.Sign() > 0 && k.Cmp(n) < 0
}

// randScalar draws a uniform scalar in [1, n-1] from r.
func randScalar(r io.Reader, n *big.Int, buf []byte) (*big.Int, bool) {
	excess := len(buf)*8 - n.BitLen()
	for i := 0; i < maxNonceAttempts; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, false
		}
		if excess > 0 {
			buf[0] &= byte(0xff >> uint(excess))
		}
		k := new(big.Int).SetBytes(buf)
		if scalarInRange(k, n) {
			return k, true
		}
	}
	return nil, false
}

// ECDSASign signs hash with the private scalar priv and writes r||s into sig.
// priv must be exactly OrderLen bytes and sig must hold 2*OrderLen bytes.
func (e *Engine) ECDSASign(ws *Workspace, c Curve, priv, hash, sig []byte) Result {
	var d, z *big.Int
	var r, s *big.Int

	load := func(p *curveParams) Result {
		if len(priv) != p.orderLen || len(hash) == 0 || len(sig) < 2*p.orderLen {
			return ErrParam
		}
		d = new(big.Int).SetBytes(ws.load(RegScalar, priv, p.orderLen))
		if !scalarInRange(d, p.n) {
			return ErrScalar
		}
		z = hashToInt(ws.load(RegHash, hash, len(hash)), p.n)
		return OK
	}

	compute := func(p *curveParams) Result {
		for attempt := 0; attempt < maxNonceAttempts; attempt++ {
			k, ok := randScalar(e.rand, p.n, ws.slot(RegNonce, p.orderLen))
			if !ok {
				return ErrRNG
			}
			x, _ := p.curve.ScalarBaseMult(ws.load(RegNonce, k.Bytes(), p.orderLen))
			r = new(big.Int).Mod(x, p.n)
			if r.Sign() == 0 {
				continue
			}
			kInv := new(big.Int).ModInverse(k, p.n)
			s = new(big.Int).Mul(r, d)
			s.Add(s, z)
			s.Mul(s, kInv)
			s.Mod(s, p.n)
			if s.Sign() != 0 {
				return OK
			}
		}
		return ErrRNG
	}

	unload := func(p *curveParams) Result {
		copy(sig[:p.orderLen], ws.load(RegResultA, r.Bytes(), p.orderLen))
		copy(sig[p.orderLen:2*p.orderLen], ws.load(RegResultB, s.Bytes(), p.orderLen))
		return OK
	}

	return e.runPKCC(OpSign, ws, c, load, compute, unload)
}

// ECDSAVerify checks the r||s signature sig over hash against pub, which may
// be compressed or uncompressed. A well-formed but non-matching signature
// returns (false, OK).
func (e *Engine) ECDSAVerify(ws *Workspace, c Curve, pub, hash, sig []byte) (bool, Result) {
	var qx, qy, z, r, s *big.Int
	var valid bool

	load := func(p *curveParams) Result {
		if len(hash) == 0 || len(sig) != 2*p.orderLen {
			return ErrParam
		}
		var ok bool
		qx, qy, ok = p.decodePoint(pub)
		if !ok {
			return ErrPoint
		}
		ws.load(RegPointX, qx.Bytes(), p.fieldLen)
		ws.load(RegPointY, qy.Bytes(), p.fieldLen)
		z = hashToInt(ws.load(RegHash, hash, len(hash)), p.n)
		r = new(big.Int).SetBytes(ws.load(RegResultA, sig[:p.orderLen], p.orderLen))
		s = new(big.Int).SetBytes(ws.load(RegResultB, sig[p.orderLen:], p.orderLen))
		return OK
	}

	compute := func(p *curveParams) Result {
		if !scalarInRange(r, p.n) || !scalarInRange(s, p.n) {
			valid = false
			return OK
		}
		w := new(big.Int).ModInverse(s, p.n)
		u1 := new(big.Int).Mul(z, w)
		u1.Mod(u1, p.n)
		u2 := new(big.Int).Mul(r, w)
		u2.Mod(u2, p.n)

		x1, y1 := p.curve.ScalarBaseMult(u1.Bytes())
		x2, y2 := p.curve.ScalarMult(qx, qy, u2.Bytes())
		x, y := p.curve.Add(x1, y1, x2, y2)
		if x.Sign() == 0 && y.Sign() == 0 {
			valid = false
			return OK
		}
		x.Mod(x, p.n)
		valid = x.Cmp(r) == 0
		return OK
	}

	unload := func(*curveParams) Result { return OK }

	if res := e.runPKCC(OpVerify, ws, c, load, compute, unload); res != OK {
		return false, res
	}
	return valid, OK
}

// ECDHSharedX multiplies pub by the private scalar priv and writes the
// x-coordinate of the product into out, returning the number of bytes written.
func (e *Engine) ECDHSharedX(ws *Workspace, c Curve, priv, pub, out []byte) (int, Result) {
	var d, qx, qy, sx *big.Int
	var n int

	load := func(p *curveParams) Result {
		if len(priv) != p.orderLen || len(out) < p.fieldLen {
			return ErrParam
		}
		d = new(big.Int).SetBytes(ws.load(RegScalar, priv, p.orderLen))
		if !scalarInRange(d, p.n) {
			return ErrScalar
		}
		var ok bool
		qx, qy, ok = p.decodePoint(pub)
		if !ok {
			return ErrPoint
		}
		ws.load(RegPointX, qx.Bytes(), p.fieldLen)
		ws.load(RegPointY, qy.Bytes(), p.fieldLen)
		return OK
	}

	compute := func(p *curveParams) Result {
		var sy *big.Int
		sx, sy = p.curve.ScalarMult(qx, qy, ws.Bytes(RegScalar))
		if sx.Sign() == 0 && sy.Sign() == 0 {
			return ErrPoint
		}
		return OK
	}

	unload := func(p *curveParams) Result {
		n = copy(out, ws.load(RegResultA, sx.Bytes(), p.fieldLen))
		return OK
	}

	if res := e.runPKCC(OpScalarMult, ws, c, load, compute, unload); res != OK {
		return 0, res
	}
	return n, OK
}
