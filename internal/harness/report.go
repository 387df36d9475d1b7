// report.go: Self-test report and its text, JSON and CBOR encodings
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/fxamacker/cbor/v2"
)

// Outcome classifies one case run.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	OutcomeSkip Outcome = "skip" // handler does not offer the primitive
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ErrCodeFormat is the error code for an unknown report format.
const ErrCodeFormat = "HARNESS_FORMAT"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatCBOR:
		return f, nil
	}
	return "", goerrors.New(ErrCodeFormat, fmt.Sprintf("unknown report format %q (want text, json or cbor)", s))
}

// Result is the outcome of one case on one handler.
type Result struct {
	Case    string        `json:"case" cbor:"case"`
	Family  string        `json:"family" cbor:"family"`
	Handler string        `json:"handler" cbor:"handler"`
	Status  string        `json:"status" cbor:"status"`
	Outcome Outcome       `json:"outcome" cbor:"outcome"`
	Elapsed time.Duration `json:"elapsed_ns" cbor:"elapsed_ns"`
	Detail  string        `json:"detail,omitempty" cbor:"detail,omitempty"`
}

// Report collects the results of a run.
type Report struct {
	Started time.Time `json:"started" cbor:"started"`
	Results []Result  `json:"results" cbor:"results"`
	Passed  int       `json:"passed" cbor:"passed"`
	Failed  int       `json:"failed" cbor:"failed"`
	Skipped int       `json:"skipped" cbor:"skipped"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomePass:
		r.Passed++
	case OutcomeFail:
		r.Failed++
	case OutcomeSkip:
		r.Skipped++
	}
}

// OK reports whether no case failed.
func (r *Report) OK() bool { return r.Failed == 0 }

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFail {
			out = append(out, res)
		}
	}
	return out
}

// Encode writes r to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatText:
		return r.encodeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(r)
	}
	_, err := ParseFormat(string(format))
	return err
}

func (r *Report) encodeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tHANDLER\tSTATUS\tRESULT\tTIME")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", res.Case, res.Handler, res.Status, res.Outcome, res.Elapsed.Round(time.Microsecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, res := range r.Failures() {
		if _, err := fmt.Fprintf(w, "\nFAIL %s on %s: %s", res.Case, res.Handler, res.Detail); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped\n", r.Passed, r.Failed, r.Skipped)
	return err
}
