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

import "github.com/iepathos/debtmap-sub009/pkg/extract"

// ResolveCall resolves a single dynamic-dispatch call against the
// registry's known implementations, using the receiver's static type
// when known and falling back to every implementer of the method name
// when it is not. This pure function never mutates the registry.
//
// Resolution strategy, in order:
//  1. Known receiver type: resolve directly to that type's implementation.
//  2. Known trait, unknown receiver: resolve to every implementer of the
//     trait's method (dynamic-dispatch-to-all).
//  3. Unknown trait: resolve to every implementation anywhere whose
//     method name matches (last resort, widest net).
func ResolveCall(r *Registry, call MethodCall, receiverType string) []extract.FunctionId {
	if receiverType != "" {
		if ids := resolveKnownReceiver(r, call, receiverType); len(ids) > 0 {
			return ids
		}
	}
	if call.TraitName != "" {
		return resolveAllImplementers(r, call.TraitName, call.Method)
	}
	return resolveByMethodNameOnly(r, call.Method)
}

func resolveKnownReceiver(r *Registry, call MethodCall, receiverType string) []extract.FunctionId {
	var out []extract.FunctionId
	traitName := call.TraitName
	for trait := range r.typeToTraits[receiverType] {
		if traitName != "" && trait != traitName {
			continue
		}
		for _, impl := range r.implementations[trait] {
			if impl.TypeName == receiverType && impl.Method == call.Method {
				out = append(out, impl.FuncID)
			}
		}
	}
	return out
}

func resolveAllImplementers(r *Registry, traitName, method string) []extract.FunctionId {
	var out []extract.FunctionId
	for _, impl := range r.implementations[traitName] {
		if impl.Method == method {
			out = append(out, impl.FuncID)
		}
	}
	return out
}

func resolveByMethodNameOnly(r *Registry, method string) []extract.FunctionId {
	var out []extract.FunctionId
	for _, impls := range r.implementations {
		for _, impl := range impls {
			if impl.Method == method {
				out = append(out, impl.FuncID)
			}
		}
	}
	return out
}

// ResolveAll resolves every call queued in the registry and returns the
// full caller->implementation edge list, ready to be merged into the
// call graph by the caller of this function.
func ResolveAll(r *Registry, receiverTypes map[extract.FunctionId]string) map[extract.FunctionId][]extract.FunctionId {
	result := make(map[extract.FunctionId][]extract.FunctionId)
	for _, call := range r.UnresolvedCalls() {
		receiver := receiverTypes[call.Caller]
		result[call.Caller] = append(result[call.Caller], ResolveCall(r, call, receiver)...)
	}
	return result
}
