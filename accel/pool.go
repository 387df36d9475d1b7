// pool.go: Pooled operand buffers backing PKCC workspaces
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"sync"
)

const (
	// smallOperandSize fits a P-521 scalar (66 bytes) with room for a tag byte.
	smallOperandSize = 80
	// largeOperandSize fits an uncompressed P-521 point (133 bytes) or r||s.
	largeOperandSize = 160
)

var (
	smallOperandPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallOperandSize)
			return &buf
		},
	}

	largeOperandPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, largeOperandSize)
			return &buf
		},
	}
)

func init() {
	WarmupPools(2)
}

// getOperand retrieves a buffer of length size from the matching pool.
func getOperand(size int) *[]byte {
	switch {
	case size <= smallOperandSize:
		buf := smallOperandPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	case size <= largeOperandSize:
		buf := largeOperandPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	default:
		buf := make([]byte, size)
		return &buf
	}
}

// clearBuffer zeroes buf, unrolled by eight for longer buffers.
func clearBuffer(buf []byte) {
	if len(buf) <= 64 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	i := 0
	for i < len(buf)-7 {
		buf[i] = 0
		buf[i+1] = 0
		buf[i+2] = 0
		buf[i+3] = 0
		buf[i+4] = 0
		buf[i+5] = 0
		buf[i+6] = 0
		buf[i+7] = 0
		i += 8
	}
	for i < len(buf) {
		buf[i] = 0
		i++
	}
}

// putOperand zeroes the full capacity of buf and returns it to its pool.
func putOperand(buf *[]byte) {
	if buf == nil {
		return
	}
	full := (*buf)[:cap(*buf)]
	clearBuffer(full)

	switch cap(*buf) {
	case smallOperandSize:
		smallOperandPool.Put(buf)
	case largeOperandSize:
		largeOperandPool.Put(buf)
	}
}

// WarmupPools pre-allocates count buffers in each pool.
func WarmupPools(count int) {
	small := make([]*[]byte, count)
	large := make([]*[]byte, count)
	for i := 0; i < count; i++ {
		small[i] = getOperand(smallOperandSize)
		large[i] = getOperand(largeOperandSize)
	}
	for i := 0; i < count; i++ {
		putOperand(small[i])
		putOperand(large[i])
	}
}
