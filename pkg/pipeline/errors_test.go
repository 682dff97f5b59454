// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestFatalError_ErrorMessageWithoutCause(t *testing.T) {
	err := &FatalError{Phase: PhaseCallGraphBuilding, Message: "no metrics"}
	if !strings.Contains(err.Error(), "no metrics") {
		t.Errorf("Error() = %q, want it to mention the message", err.Error())
	}
}

func TestFatalError_ErrorMessageWithCause(t *testing.T) {
	cause := errors.New("boom")
	err := &FatalError{Phase: PhaseCoverageLoading, Message: "load failed", Cause: cause}
	msg := err.Error()
	if !strings.Contains(msg, "load failed") || !strings.Contains(msg, "boom") {
		t.Errorf("Error() = %q, want it to mention both message and cause", msg)
	}
}

func TestFatalError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &FatalError{Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestFileDiagnostic_String(t *testing.T) {
	d := FileDiagnostic{File: "a.go", Phase: PhaseInitialized, Message: "parse error"}
	s := d.String()
	if !strings.Contains(s, "a.go") || !strings.Contains(s, "parse error") {
		t.Errorf("String() = %q, want it to mention file and message", s)
	}
}

func TestDiagnosticCollector_AccumulatesInOrder(t *testing.T) {
	var c DiagnosticCollector
	c.Add(FileDiagnostic{File: "a.go", Message: "first"})
	c.Add(FileDiagnostic{File: "b.go", Message: "second"})

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d diagnostics, want 2", len(all))
	}
	if all[0].File != "a.go" || all[1].File != "b.go" {
		t.Errorf("All() = %+v, want diagnostics preserved in add order", all)
	}
}
