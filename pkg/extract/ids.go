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

package extract

import "path/filepath"

// NewFunctionID builds a deterministic FunctionId from the file path a
// function was declared in, its name, and its starting line. Unlike a
// hash-based ID, this stays human readable in diagnostics while still
// being unique enough for the (file, name, line) triples extraction
// produces.
func NewFunctionID(file, name string, startLine int) FunctionId {
	return FunctionId{
		File:      normalizePath(file),
		Name:      name,
		StartLine: startLine,
	}
}

// BuildQualifiedName joins a module path and a function name with "::",
// the form the call-graph index uses for its qualified-name keys, e.g.
// "pkg/foo::Bar.Method" or "pkg/foo::Func".
func BuildQualifiedName(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "::" + name
}

// normalizePath makes a path comparable across platforms: forward
// slashes, no leading "./", no leading "/".
func normalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}
