// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package extract

import "testing"

func TestGoExtractor_Language(t *testing.T) {
	g := NewGoExtractor()
	if g.Language() != LangGo {
		t.Errorf("Language() = %v, want LangGo", g.Language())
	}
}

func TestGoExtractor_ExtractFile_FunctionsAndMethods(t *testing.T) {
	src := []byte(`package sample

import (
	"fmt"
	. "strings"
)

type Server struct{}

func (s *Server) Handle(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	s.log(name)
	return nil
}

func (s *Server) log(name string) {
	fmt.Println(name)
}

func TestHandle(t *testing.T) {
	s := &Server{}
	s.Handle("x")
}
`)

	g := NewGoExtractor()
	data, err := g.ExtractFile("server.go", src)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	if data.PackageName != "sample" {
		t.Errorf("PackageName = %q, want sample", data.PackageName)
	}
	if len(data.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d: %+v", len(data.Imports), data.Imports)
	}

	var foundDot bool
	for _, imp := range data.Imports {
		if imp.Path == "strings" && imp.Dot {
			foundDot = true
		}
	}
	if !foundDot {
		t.Errorf("expected dot-import of strings, got %+v", data.Imports)
	}

	if len(data.Functions) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(data.Functions))
	}

	var handle *ExtractedFunctionData
	for i := range data.Functions {
		if data.Functions[i].Metrics.Name == "Server.Handle" {
			handle = &data.Functions[i]
		}
	}
	if handle == nil {
		t.Fatalf("expected to find method Server.Handle, got names: %v", funcNames(data.Functions))
	}
	if handle.Metrics.Visibility != VisibilityPublic {
		t.Errorf("expected Handle to be public, got %v", handle.Metrics.Visibility)
	}
	if handle.Metrics.Cyclomatic < 2 {
		t.Errorf("expected Cyclomatic >= 2 for Handle's if-branch, got %d", handle.Metrics.Cyclomatic)
	}

	var calleeNames []string
	for _, cs := range handle.CallSites {
		calleeNames = append(calleeNames, cs.CalleeName)
	}
	if !containsStr(calleeNames, "Errorf") || !containsStr(calleeNames, "log") {
		t.Errorf("expected Handle's call sites to include Errorf and log, got %v", calleeNames)
	}
}

func TestGoExtractor_TestFunctionDetection(t *testing.T) {
	src := []byte(`package sample

func TestFoo(t *testing.T) {}
func BenchmarkFoo(b *testing.B) {}
func doWork() {}
`)
	g := NewGoExtractor()
	data, err := g.ExtractFile("sample_test.go", src)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	for _, fn := range data.Functions {
		switch fn.Metrics.Name {
		case "TestFoo", "BenchmarkFoo":
			if !fn.Metrics.IsTest {
				t.Errorf("expected %s to be flagged IsTest", fn.Metrics.Name)
			}
		case "doWork":
			if fn.Metrics.IsTest {
				t.Errorf("expected doWork to not be flagged IsTest")
			}
		}
		if !fn.Metrics.InTestModule {
			t.Errorf("expected InTestModule true for file ending _test.go")
		}
	}
}

func TestGoExtractor_UnexportedVisibility(t *testing.T) {
	src := []byte(`package sample

func helper() {}
func Exported() {}
`)
	g := NewGoExtractor()
	data, err := g.ExtractFile("vis.go", src)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	for _, fn := range data.Functions {
		switch fn.Metrics.Name {
		case "helper":
			if fn.Metrics.Visibility != VisibilityPackage {
				t.Errorf("expected helper to be package-visible, got %v", fn.Metrics.Visibility)
			}
		case "Exported":
			if fn.Metrics.Visibility != VisibilityPublic {
				t.Errorf("expected Exported to be public, got %v", fn.Metrics.Visibility)
			}
		}
	}
}

func funcNames(fns []ExtractedFunctionData) []string {
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Metrics.Name
	}
	return names
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
