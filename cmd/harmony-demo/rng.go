// rng.go: Random generation command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	crypto "github.com/agilira/harmony-crypto"
)

var rngCmd = &cobra.Command{
	Use:   "rng",
	Short: "Generate random bytes",
	Long: `Generate random bytes on the selected backend.

The software backend runs a fresh DRBG per call; --nonce personalizes it.
The accelerator reads its TRNG and the secure element its own generator;
both ignore the nonce.

Examples:
  harmony-demo rng --length 32
  harmony-demo rng --handler hw --length 64 --encoding base64
  harmony-demo rng --nonce 6964656e74697479`,
	Args: cobra.NoArgs,
	RunE: runRNG,
}

var (
	rngLength   int
	rngNonceHex string
	rngEncoding string
)

func init() {
	rngCmd.Flags().IntVar(&rngLength, "length", 32, "Number of bytes to generate")
	rngCmd.Flags().StringVar(&rngNonceHex, "nonce", "", "Hex personalization nonce (software backend)")
	rngCmd.Flags().StringVar(&rngEncoding, "encoding", "hex", "Output encoding: hex or base64")
}

func runRNG(cmd *cobra.Command, args []string) error {
	h, err := selectedHandler()
	if err != nil {
		return err
	}
	if rngLength <= 0 {
		return fmt.Errorf("--length must be positive, got %d", rngLength)
	}
	encode := hex.EncodeToString
	switch rngEncoding {
	case "hex":
	case "base64":
		encode = base64.StdEncoding.EncodeToString
	default:
		return fmt.Errorf("unknown encoding %q (want hex or base64)", rngEncoding)
	}

	var nonce []byte
	if rngNonceHex != "" {
		if nonce, err = crypto.KeyFromHex(rngNonceHex); err != nil {
			return fmt.Errorf("invalid --nonce: %w", err)
		}
	}

	d, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	out := make([]byte, rngLength)
	if err := d.RngGenerate(h, out, nonce, 1); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), encode(out))
	return err
}
