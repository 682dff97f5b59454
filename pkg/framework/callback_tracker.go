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

package framework

import "github.com/iepathos/debtmap-sub009/pkg/extract"

// registrationNames is the set of call names that bind a function value
// to a runtime event rather than invoking it directly: decorator-based
// registration (Flask's @app.route, pytest fixtures), event-emitter
// subscriptions, and callback-accepting APIs generally.
var registrationNames = map[string]bool{
	"route":           true,
	"on":              true,
	"connect":         true,
	"subscribe":       true,
	"add_event_listener": true,
	"addEventListener":   true,
	"fixture":         true,
	"register":        true,
	"callback":        true,
}

// PendingCallback is a function value passed to a registration call
// whose eventual invocation the call graph cannot see directly.
type PendingCallback struct {
	FuncName string
	Site     extract.CallSite
	Caller   extract.FunctionId
}

// CallbackTracker collects PendingCallback entries while a file is
// walked, then resolves them against a name index once traversal
// finishes, mirroring event-tracking's two-phase "observe, then bind"
// shape for calls whose receiver is only known after the fact (a
// Python decorator, a JS `.on("event", fn)` registration).
type CallbackTracker struct {
	pending []PendingCallback
}

// NewCallbackTracker returns an empty tracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Observe inspects a call site and, if it matches a known registration
// pattern, records its argument names as pending callbacks. calleeArgs
// are the bare identifier names passed as arguments to the call, as
// extracted alongside the call site.
func (t *CallbackTracker) Observe(site extract.CallSite, caller extract.FunctionId, calleeArgs []string) {
	name := site.CalleeName
	if !registrationNames[name] && !registrationNames[lastDotComponent(name)] {
		return
	}
	for _, arg := range calleeArgs {
		t.pending = append(t.pending, PendingCallback{FuncName: arg, Site: site, Caller: caller})
	}
}

// Pending returns every callback observed but not yet resolved.
func (t *CallbackTracker) Pending() []PendingCallback {
	return t.pending
}

// Resolve matches pending callbacks against a simple-name index (as
// produced by callgraph.FunctionIndex.BySimpleName) and returns the
// resolved callees keyed by caller. The result carries no call type and
// no confidence; every name match is returned.
func Resolve(pending []PendingCallback, lookup func(name string) []extract.FunctionId) map[extract.FunctionId][]extract.FunctionId {
	out := make(map[extract.FunctionId][]extract.FunctionId)
	for _, cb := range pending {
		for _, callee := range lookup(cb.FuncName) {
			out[cb.Caller] = append(out[cb.Caller], callee)
		}
	}
	return out
}

func lastDotComponent(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}
