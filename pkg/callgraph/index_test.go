// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/extract"

	fixtures "github.com/iepathos/debtmap-sub009/internal/testing"
)

func TestNewFunctionIndex_BySimpleName(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Server.Start", 1)
	file := fixtures.NewFile("pkg/foo", extract.LangGo, fn)
	file.PackageName = "foo"

	idx := NewFunctionIndex([]extract.ExtractedFileData{file})

	matches := idx.BySimpleName("Start")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match for simple name Start, got %d", len(matches))
	}
}

func TestNewFunctionIndex_ByQualifiedName(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Server.Start", 1)
	file := fixtures.NewFile("pkg/foo", extract.LangGo, fn)

	idx := NewFunctionIndex([]extract.ExtractedFileData{file})

	id, ok := idx.ByQualifiedName(extract.BuildQualifiedName("pkg/foo", "Server.Start"))
	if !ok {
		t.Fatal("expected qualified-name lookup to succeed")
	}
	if id.Name != "Server.Start" {
		t.Errorf("resolved wrong function: %+v", id)
	}
}

func TestNewFunctionIndex_ByPackage(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Foo", 1)
	file := fixtures.NewFile("a.go", extract.LangGo, fn)
	file.PackageName = "widgets"

	idx := NewFunctionIndex([]extract.ExtractedFileData{file})
	got := idx.ByPackage("widgets")
	if len(got) != 1 {
		t.Fatalf("expected 1 function in package widgets, got %d", len(got))
	}
}

func TestNewFunctionIndex_EmptyInput(t *testing.T) {
	idx := NewFunctionIndex(nil)
	if len(idx.BySimpleName("anything")) != 0 {
		t.Error("expected no matches from an empty index")
	}
}
