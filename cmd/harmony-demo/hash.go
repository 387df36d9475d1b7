// hash.go: Hash command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	crypto "github.com/agilira/harmony-crypto"
)

var hashCmd = &cobra.Command{
	Use:   "hash [file]",
	Short: "Hash a file or standard input",
	Long: `Hash a file, or standard input when no file (or "-") is given, through a
streaming context on the selected backend.

Algorithms: MD5, RIPEMD160, SHA1, SHA224, SHA256, SHA384, SHA512,
SHA512_224, SHA512_256, SHA3_224, SHA3_256, SHA3_384, SHA3_512,
SHAKE128, SHAKE256, BLAKE2B, BLAKE2S.

Examples:
  harmony-demo hash ./image.bin
  harmony-demo hash --algorithm SHAKE256 --length 64 ./image.bin
  echo -n abc | harmony-demo hash --handler hw --algorithm SHA1
  harmony-demo hash --algorithm BLAKE2B --key 000102 --length 32 ./image.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHash,
}

var (
	hashAlgorithm string
	hashLength    int
	hashKeyHex    string
)

func init() {
	hashCmd.Flags().StringVar(&hashAlgorithm, "algorithm", "SHA256", "Hash algorithm")
	hashCmd.Flags().IntVar(&hashLength, "length", 0, "Output length in bytes (SHAKE and BLAKE2 only)")
	hashCmd.Flags().StringVar(&hashKeyHex, "key", "", "Hex key for keyed BLAKE2")
}

const hashChunk = 32 * 1024

// digestStream adapts the per-algorithm streaming contexts.
type digestStream struct {
	update func([]byte) error
	final  func([]byte) error
	reset  func()
	size   int
}

func openDigest(d *crypto.Dispatcher, h crypto.HandlerType, algo crypto.HashAlgo, key []byte, length int) (*digestStream, error) {
	const sid crypto.SessionID = 1
	size := crypto.HashSize(algo)

	switch algo {
	case crypto.HashMD5:
		ctx := new(crypto.Md5Context)
		if err := d.Md5Init(ctx, h, sid); err != nil {
			return nil, err
		}
		return &digestStream{
			update: func(p []byte) error { return crypto.Md5Update(ctx, p) },
			final:  func(out []byte) error { return crypto.Md5Final(ctx, out) },
			reset:  ctx.Reset,
			size:   size,
		}, nil
	case crypto.HashRIPEMD160:
		ctx := new(crypto.Ripemd160Context)
		if err := d.Ripemd160Init(ctx, h, sid); err != nil {
			return nil, err
		}
		return &digestStream{
			update: func(p []byte) error { return crypto.Ripemd160Update(ctx, p) },
			final:  func(out []byte) error { return crypto.Ripemd160Final(ctx, out) },
			reset:  ctx.Reset,
			size:   size,
		}, nil
	case crypto.HashSHAKE128, crypto.HashSHAKE256:
		ctx := new(crypto.ShakeContext)
		if err := d.ShakeInit(ctx, h, algo, sid); err != nil {
			return nil, err
		}
		if length > 0 {
			size = length
		}
		return &digestStream{
			update: func(p []byte) error { return crypto.ShakeUpdate(ctx, p) },
			final:  func(out []byte) error { return crypto.ShakeFinal(ctx, out) },
			reset:  ctx.Reset,
			size:   size,
		}, nil
	case crypto.HashBLAKE2B, crypto.HashBLAKE2S:
		if length > 0 {
			size = length
		}
		ctx := new(crypto.BlakeContext)
		if err := d.BlakeInit(ctx, h, algo, key, size, sid); err != nil {
			return nil, err
		}
		return &digestStream{
			update: func(p []byte) error { return crypto.BlakeUpdate(ctx, p) },
			final:  func(out []byte) error { return crypto.BlakeFinal(ctx, out) },
			reset:  ctx.Reset,
			size:   size,
		}, nil
	}

	ctx := new(crypto.ShaContext)
	if err := d.ShaInit(ctx, h, algo, sid); err != nil {
		return nil, err
	}
	return &digestStream{
		update: func(p []byte) error { return crypto.ShaUpdate(ctx, p) },
		final:  func(out []byte) error { return crypto.ShaFinal(ctx, out) },
		reset:  ctx.Reset,
		size:   size,
	}, nil
}

func runHash(cmd *cobra.Command, args []string) error {
	h, err := selectedHandler()
	if err != nil {
		return err
	}
	algo, ok := crypto.ParseHashAlgo(hashAlgorithm)
	if !ok {
		return fmt.Errorf("unknown hash algorithm %q", hashAlgorithm)
	}
	var key []byte
	if hashKeyHex != "" {
		if key, err = crypto.KeyFromHex(hashKeyHex); err != nil {
			return fmt.Errorf("invalid --key: %w", err)
		}
	}

	in := cmd.InOrStdin()
	name := "-"
	if len(args) == 1 && args[0] != "-" {
		name = args[0]
		f, err := os.Open(name) // #nosec G304 -- user supplied input file
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	d, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	ds, err := openDigest(d, h, algo, key, hashLength)
	if err != nil {
		return err
	}
	defer ds.reset()

	buf := make([]byte, hashChunk)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if err := ds.update(buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("failed to read input: %w", rerr)
		}
	}

	sum := make([]byte, ds.size)
	if err := ds.final(sum); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", hex.EncodeToString(sum), name)
	return err
}
