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

// Package traits tracks trait/interface definitions and implementations
// so that dynamic-dispatch call sites (an interface method call, a Go
// type switch over an interface) can be resolved to every concrete
// implementer rather than left dangling, which would otherwise make
// correctly-used implementations look like dead code.
package traits

import "github.com/iepathos/debtmap-sub009/pkg/extract"

// Implementation records one concrete type implementing one trait
// method.
type Implementation struct {
	TraitName string
	TypeName  string
	Method    string
	FuncID    extract.FunctionId
}

// MethodCall is an unresolved dynamic-dispatch call: "something.Method()"
// where the receiver's concrete type is not known statically.
type MethodCall struct {
	TraitName string // empty if unknown; resolution falls back to method name alone
	Method    string
	Caller    extract.FunctionId
}

// Statistics summarizes registry contents for diagnostics.
type Statistics struct {
	TraitCount          int
	ImplementationCount int
	UnresolvedCallCount int
	VisitMethodCount    int
}

// Registry coordinates trait-method tracking: definitions, concrete
// implementations, and the secondary indices used to resolve dispatch.
// It follows a pure-core/imperative-shell split: AddImplementation and
// AddTraitMethod mutate state, while resolution logic (in resolution.go)
// stays pure over the accumulated data.
type Registry struct {
	traitMethods     map[string][]string                 // trait name -> method names
	implementations  map[string][]Implementation          // trait name -> implementations
	typeToTraits     map[string]map[string]bool           // type name -> trait names
	unresolvedCalls  []MethodCall
	visitTraitMethods map[extract.FunctionId]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		traitMethods:      make(map[string][]string),
		implementations:   make(map[string][]Implementation),
		typeToTraits:      make(map[string]map[string]bool),
		visitTraitMethods: make(map[extract.FunctionId]bool),
	}
}

// AddTraitMethod registers a method as belonging to a trait's interface.
func (r *Registry) AddTraitMethod(traitName, method string) {
	for _, m := range r.traitMethods[traitName] {
		if m == method {
			return
		}
	}
	r.traitMethods[traitName] = append(r.traitMethods[traitName], method)
}

// AddImplementation registers a concrete implementation of a trait
// method, and seeds it as an entry point if the trait is a recognized
// visitor-pattern trait.
func (r *Registry) AddImplementation(impl Implementation) {
	r.implementations[impl.TraitName] = append(r.implementations[impl.TraitName], impl)

	if r.typeToTraits[impl.TypeName] == nil {
		r.typeToTraits[impl.TypeName] = make(map[string]bool)
	}
	r.typeToTraits[impl.TypeName][impl.TraitName] = true

	if IsVisitorPatternTrait(impl.TraitName) {
		r.visitTraitMethods[impl.FuncID] = true
	}
}

// RecordUnresolvedCall queues a dynamic-dispatch call site for later
// resolution.
func (r *Registry) RecordUnresolvedCall(call MethodCall) {
	r.unresolvedCalls = append(r.unresolvedCalls, call)
}

// UnresolvedCalls returns every call queued via RecordUnresolvedCall.
func (r *Registry) UnresolvedCalls() []MethodCall {
	return r.unresolvedCalls
}

// HasImplementations reports whether a function ID is registered as any
// trait's implementation.
func (r *Registry) HasImplementations(id extract.FunctionId) bool {
	for _, impls := range r.implementations {
		for _, impl := range impls {
			if impl.FuncID == id {
				return true
			}
		}
	}
	return false
}

// TypeImplementsTrait reports whether typeName has a registered
// implementation of traitName.
func (r *Registry) TypeImplementsTrait(typeName, traitName string) bool {
	return r.typeToTraits[typeName][traitName]
}

// IsVisitTraitMethod reports whether id is an implementation of a
// visitor-pattern trait, and therefore an implicit entry point.
func (r *Registry) IsVisitTraitMethod(id extract.FunctionId) bool {
	return r.visitTraitMethods[id]
}

// VisitTraitMethods returns every function registered as a visitor-trait
// implementation.
func (r *Registry) VisitTraitMethods() []extract.FunctionId {
	ids := make([]extract.FunctionId, 0, len(r.visitTraitMethods))
	for id := range r.visitTraitMethods {
		ids = append(ids, id)
	}
	return ids
}

// Statistics returns registry summary counts.
func (r *Registry) Statistics() Statistics {
	implCount := 0
	for _, impls := range r.implementations {
		implCount += len(impls)
	}
	return Statistics{
		TraitCount:          len(r.traitMethods),
		ImplementationCount: implCount,
		UnresolvedCallCount: len(r.unresolvedCalls),
		VisitMethodCount:    len(r.visitTraitMethods),
	}
}
