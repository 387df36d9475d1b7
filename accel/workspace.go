// workspace.go: Caller-owned operand staging area for PKCC operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

// Reg names an operand slot in the coprocessor memory.
type Reg int

const (
	RegHash Reg = iota
	RegScalar
	RegNonce
	RegPointX
	RegPointY
	RegResultA
	RegResultB
	regCount
)

// Workspace holds the operand slots of one PKCC operation. It replaces the
// driver-global scratch arrays: each caller owns its workspace and must
// Release it, which zeroes every slot.
type Workspace struct {
	regs [regCount]*[]byte
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// slot returns reg resized to size bytes, allocating it from the pool on first use.
func (w *Workspace) slot(reg Reg, size int) []byte {
	if cur := w.regs[reg]; cur != nil {
		if cap(*cur) >= size {
			*cur = (*cur)[:size]
			clearBuffer(*cur)
			return *cur
		}
		putOperand(cur)
	}
	w.regs[reg] = getOperand(size)
	clearBuffer(*w.regs[reg])
	return *w.regs[reg]
}

// load copies src right-aligned into a size-byte slot.
func (w *Workspace) load(reg Reg, src []byte, size int) []byte {
	dst := w.slot(reg, size)
	if len(src) > size {
		src = src[len(src)-size:]
	}
	copy(dst[size-len(src):], src)
	return dst
}

// Bytes returns the current contents of reg, or nil if unused.
func (w *Workspace) Bytes(reg Reg) []byte {
	if w == nil || w.regs[reg] == nil {
		return nil
	}
	return *w.regs[reg]
}

// Release zeroes and returns every slot to the pool.
func (w *Workspace) Release() {
	if w == nil {
		return
	}
	for i, buf := range w.regs {
		if buf != nil {
			putOperand(buf)
			w.regs[i] = nil
		}
	}
}
