// version.go: Version command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	crypto "github.com/agilira/harmony-crypto"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and available backends",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "harmony-demo %s (commit: %s, built: %s, %s)\n", version, commit, date, runtime.Version())

	d, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	fmt.Fprintf(out, "session slots per family: %d\n", d.SessionMax())
	for _, h := range []crypto.HandlerType{crypto.HandlerHWInternal, crypto.HandlerSWLibrary, crypto.HandlerSecureElement} {
		name := "not configured"
		if b, ok := d.Backend(h); ok {
			name = b.Name()
		}
		fmt.Fprintf(out, "  %-15s %s\n", h, name)
	}
	return nil
}
