package main

import (
	"fmt"
	"strings"
)

// ConfigurationError is fatal and reported before any sample is processed.
type ConfigurationError struct {
	Option string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var msg = "configuration"
	if e.Option != "" {
		msg += " [" + e.Option + "]"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// PairingError means the mate-2 file of a mate-1 file is missing or does not match.
type PairingError struct {
	Read1  string
	Read2  string
	Reason string
	Err    error
}

func (e *PairingError) Error() string {
	var msg = fmt.Sprintf("pairing %s <-> %s: %s", e.Read1, e.Read2, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PairingError) Unwrap() error { return e.Err }

// LaneResolutionError is returned when zero or several fields look like a lane.
type LaneResolutionError struct {
	SampleName string
	Matches    []string
}

func (e *LaneResolutionError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("lane of %s: no field matches the lane pattern", e.SampleName)
	}
	return fmt.Sprintf("lane of %s: ambiguous lane fields [%s]", e.SampleName, strings.Join(e.Matches, ","))
}

// BarcodeResolutionError is returned when no field precedes the lane field.
type BarcodeResolutionError struct {
	SampleName string
	Lane       string
}

func (e *BarcodeResolutionError) Error() string {
	return fmt.Sprintf("barcode index of %s: lane field %s is the first field", e.SampleName, e.Lane)
}

// DuplicateSampleError is returned for a mate-1 file whose sample name was
// already resolved from another file, e.g. S1_L001_R1.fq next to S1_L001_R1.fastq.gz.
type DuplicateSampleError struct {
	SampleName string
	First      string
	Second     string
}

func (e *DuplicateSampleError) Error() string {
	return fmt.Sprintf("sample %s of %s already resolved from %s", e.SampleName, e.Second, e.First)
}

// CompositionError indicates an invalid SampleUnit reached the composer.
type CompositionError struct {
	SampleName string
	Reason     string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose job %q: %s", e.SampleName, e.Reason)
}

type SubmissionError struct {
	SampleName string
	Script     string
	Output     string
	Err        error
}

func (e *SubmissionError) Error() string {
	var msg = fmt.Sprintf("submit %s [%s]", e.SampleName, e.Script)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *SubmissionError) Unwrap() error { return e.Err }
