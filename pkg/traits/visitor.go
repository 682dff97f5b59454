// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package traits

import "strings"

// visitorPatternTraits is the curated set of trait/interface names whose
// methods are treated as implicit entry points: an implementation is
// reachable through generic dispatch machinery the call graph cannot
// see directly (visitor.Visit(node), ast.Visitor and similar visitor
// conventions).
var visitorPatternTraits = map[string]bool{
	"Visit":        true,
	"Visitor":      true,
	"ast.Visitor":  true,
	"NodeVisitor":  true,
}

// implicitEntryPointTraits is the curated set of trait methods assumed
// reachable regardless of whether any call site in the source resolves
// to them, because language runtimes or common frameworks invoke them
// implicitly (construction/conversion/formatting hooks).
var implicitEntryPointTraits = map[string]bool{
	"Default::default": true,
	"Clone::clone":      true,
	"From::from":        true,
	"Display::fmt":      true,
	"Debug::fmt":        true,
	"Drop::drop":        true,
	"String":            true, // fmt.Stringer
	"Error":              true, // error interface
}

// IsVisitorPatternTrait reports whether traitName matches the curated
// visitor-pattern set, checked case-sensitively against both the bare
// name and any dotted-package-qualified form.
func IsVisitorPatternTrait(traitName string) bool {
	if visitorPatternTraits[traitName] {
		return true
	}
	if idx := strings.LastIndex(traitName, "."); idx >= 0 {
		return visitorPatternTraits[traitName[idx+1:]]
	}
	return IsGenericVisitorTrait(traitName) || IsQualifiedVisitorTrait(traitName)
}

// IsGenericVisitorTrait matches names following the "XVisitor" or
// "VisitX" convention even when X isn't in the curated set, to catch
// project-specific visitor traits without needing per-project config.
func IsGenericVisitorTrait(traitName string) bool {
	return strings.HasSuffix(traitName, "Visitor") || strings.HasPrefix(traitName, "Visit")
}

// IsQualifiedVisitorTrait matches a package-qualified visitor trait name
// such as "ast.Visitor" or "parser.NodeVisitor".
func IsQualifiedVisitorTrait(traitName string) bool {
	idx := strings.LastIndex(traitName, ".")
	if idx < 0 {
		return false
	}
	return IsGenericVisitorTrait(traitName[idx+1:])
}

// IsImplicitEntryPoint reports whether a trait method name is in the
// curated implicit entry-point set. The lookup is exact: Rust-style
// entries use "Trait::method" and Go entries are bare method names
// ("String", "Error"); a "Trait.method" form never matches.
func IsImplicitEntryPoint(qualifiedMethod string) bool {
	return implicitEntryPointTraits[qualifiedMethod]
}
