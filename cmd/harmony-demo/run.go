// run.go: Self-test command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	crypto "github.com/agilira/harmony-crypto"
	"github.com/agilira/harmony-crypto/internal/harness"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the self-test vectors",
	Long: `Run known-answer and round-trip vectors through the dispatcher.

Cases a backend does not offer are reported as skipped with the family's
ERROR_NOTSUPPTD status. The command fails when any case fails.

Examples:
  harmony-demo run
  harmony-demo run --all --format json
  harmony-demo run --handler hw --vectors ./extra-vectors.yaml --format cbor > report.cbor`,
	Args: cobra.NoArgs,
	RunE: runSelfTest,
}

var (
	runFormat  string
	runVectors string
	runAll     bool
)

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Report format: text, json or cbor")
	runCmd.Flags().StringVar(&runVectors, "vectors", "", "Vector file to run instead of the built-in set")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Run on every backend instead of --handler")
}

func runSelfTest(cmd *cobra.Command, args []string) error {
	format, err := harness.ParseFormat(runFormat)
	if err != nil {
		return err
	}

	handlers := []crypto.HandlerType{crypto.HandlerHWInternal, crypto.HandlerSWLibrary, crypto.HandlerSecureElement}
	if !runAll {
		h, err := selectedHandler()
		if err != nil {
			return err
		}
		handlers = []crypto.HandlerType{h}
	}

	var vectors []harness.Vector
	if runVectors != "" {
		vectors, err = harness.LoadVectors(runVectors)
	} else {
		vectors, err = harness.Builtin()
	}
	if err != nil {
		return err
	}

	d, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	report := harness.RunVectors(d, handlers, vectors)
	if err := report.Encode(cmd.OutOrStdout(), format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if !report.OK() {
		return fmt.Errorf("self-test failed: %d of %d case(s)", report.Failed, len(report.Results))
	}
	return nil
}
