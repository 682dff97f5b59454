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

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor extracts function metrics and call sites from Go source
// using tree-sitter. Complexity is computed by walking each function's
// body and counting branch points, the same traversal the teacher's
// parser uses to find calls, just accumulating a different tally.
type GoExtractor struct {
	parser *sitter.Parser
}

// NewGoExtractor builds a GoExtractor with a fresh tree-sitter parser
// configured for the Go grammar.
func NewGoExtractor() *GoExtractor {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoExtractor{parser: p}
}

// Language reports LangGo.
func (g *GoExtractor) Language() Language { return LangGo }

// goWalkCtx carries per-file state while walking the tree.
type goWalkCtx struct {
	content     []byte
	filePath    string
	packageName string
	modulePath  string
	anonCounter int
}

// ExtractFile parses path's Go source and returns its functions, methods
// and imports.
func (g *GoExtractor) ExtractFile(path string, source []byte) (ExtractedFileData, error) {
	tree, err := g.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ExtractedFileData{}, fmt.Errorf("extract: go tree-sitter parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pkgName := extractGoPackageName(root, source)
	imports := extractGoImports(root, source)

	wctx := &goWalkCtx{content: source, filePath: path, packageName: pkgName, modulePath: pkgName}

	var funcs []ExtractedFunctionData
	walkGoNode(root, wctx, &funcs)

	return ExtractedFileData{
		Path:        path,
		Language:    LangGo,
		Functions:   funcs,
		Imports:     imports,
		PackageName: pkgName,
	}, nil
}

func extractGoPackageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "package_clause" {
			for j := 0; j < int(child.ChildCount()); j++ {
				id := child.Child(j)
				if id.Type() == "package_identifier" {
					return string(content[id.StartByte():id.EndByte()])
				}
			}
		}
	}
	return ""
}

func extractGoImports(root *sitter.Node, content []byte) []Import {
	var imports []Import
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "import_spec" {
			var path, alias string
			pathNode := n.ChildByFieldName("path")
			if pathNode != nil {
				path = strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), `"`)
			}
			nameNode := n.ChildByFieldName("name")
			dot := false
			if nameNode != nil {
				alias = string(content[nameNode.StartByte():nameNode.EndByte()])
				dot = alias == "."
			}
			if path != "" {
				imports = append(imports, Import{Path: path, Alias: alias, Dot: dot})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return imports
}

// walkGoNode recursively finds function/method declarations, building one
// ExtractedFunctionData per declaration found.
func walkGoNode(node *sitter.Node, ctx *goWalkCtx, out *[]ExtractedFunctionData) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration":
		if fn := extractGoFunction(node, ctx, ""); fn != nil {
			*out = append(*out, *fn)
		}
	case "method_declaration":
		receiverType := goReceiverType(node, ctx.content)
		if fn := extractGoFunction(node, ctx, receiverType); fn != nil {
			*out = append(*out, *fn)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoNode(node.Child(i), ctx, out)
	}
}

func goReceiverType(node *sitter.Node, content []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := string(content[recv.StartByte():recv.EndByte()])
	// receiver text looks like "(s *Server)" or "(s Server)"; take the
	// last whitespace-separated token and strip a leading pointer star.
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	t := strings.TrimPrefix(fields[len(fields)-1], "*")
	return strings.TrimSuffix(strings.TrimPrefix(t, "("), ")")
}

func extractGoFunction(node *sitter.Node, ctx *goWalkCtx, receiverType string) *ExtractedFunctionData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := string(ctx.content[nameNode.StartByte():nameNode.EndByte()])
	fullName := name
	if receiverType != "" {
		fullName = receiverType + "." + name
	}

	bodyNode := node.ChildByFieldName("body")

	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	if bodyNode != nil {
		endLine = int(bodyNode.EndPoint().Row) + 1
	}

	cyclomatic, cognitive, nesting := computeGoComplexity(bodyNode)
	length := endLine - startLine + 1

	isTest := strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Example") || strings.HasPrefix(name, "Fuzz")
	vis := VisibilityPackage
	if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		vis = VisibilityPublic
	}

	calls := extractGoCallSites(bodyNode, ctx.content)

	id := NewFunctionID(ctx.filePath, fullName, startLine)

	metrics := FunctionMetrics{
		ID:         id,
		File:       ctx.filePath,
		Name:       fullName,
		StartLine:  startLine,
		EndLine:    endLine,
		Visibility: vis,
		Cyclomatic: cyclomatic,
		Cognitive:  cognitive,
		Nesting:    nesting,
		Length:     length,
		IsTest:     isTest,
		InTestModule: strings.HasSuffix(ctx.filePath, "_test.go"),
	}

	modulePath := ctx.modulePath
	if receiverType != "" {
		modulePath = BuildQualifiedName(ctx.modulePath, receiverType)
	}

	return &ExtractedFunctionData{
		Metrics:    metrics,
		CallSites:  calls,
		ModulePath: modulePath,
	}
}

// goCyclomaticNodeTypes increment cyclomatic complexity by one occurrence each;
// this mirrors McCabe's definition (decision points + 1).
var goCyclomaticNodeTypes = map[string]bool{
	"if_statement":          true,
	"for_statement":         true,
	"expression_case":       true, // switch/select case arms
	"default_case":          false,
	"communication_case":    true,
	"type_case":             true,
	"binary_expression":     false, // handled separately for && / ||
}

func computeGoComplexity(body *sitter.Node) (cyclomatic, cognitive, nesting int) {
	if body == nil {
		return 1, 0, 0
	}
	cyclomatic = 1
	var walk func(n *sitter.Node, depth int)
	maxNesting := 0
	walk = func(n *sitter.Node, depth int) {
		if n == nil {
			return
		}
		nested := false
		switch n.Type() {
		case "if_statement":
			cyclomatic++
			cognitive += 1 + depth
			nested = true
		case "for_statement":
			cyclomatic++
			cognitive += 1 + depth
			nested = true
		case "expression_case", "communication_case", "type_case":
			cyclomatic++
			cognitive++
		case "binary_expression":
			op := n.ChildByFieldName("operator")
			if op != nil {
				txt := op.Type()
				if txt == "&&" || txt == "||" {
					cyclomatic++
					cognitive++
				}
			}
		case "func_literal":
			nested = true
		}
		if depth > maxNesting {
			maxNesting = depth
		}
		next := depth
		if nested {
			next = depth + 1
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), next)
		}
	}
	walk(body, 0)
	return cyclomatic, cognitive, maxNesting
}

func extractGoCallSites(body *sitter.Node, content []byte) []CallSite {
	if body == nil {
		return nil
	}
	var sites []CallSite
	var walk func(n *sitter.Node, category ExprCategory)
	walk = func(n *sitter.Node, category ExprCategory) {
		if n == nil {
			return
		}
		nextCategory := category
		switch n.Type() {
		case "func_literal":
			nextCategory = ExprClosure
		case "go_statement":
			nextCategory = ExprAsync
		case "defer_statement":
			nextCategory = ExprTry
		}

		if n.Type() == "call_expression" {
			fn := n.ChildByFieldName("function")
			if fn != nil {
				name, hint, isMethod := splitGoCallTarget(fn, content)
				if name != "" {
					sites = append(sites, CallSite{
						CalleeName:   name,
						Line:         int(n.StartPoint().Row) + 1,
						Hint:         hint,
						IsMethodCall: isMethod,
						ExprCategory: nextCategory,
					})
				}
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), nextCategory)
		}
	}
	walk(body, ExprRegular)
	return sites
}

// splitGoCallTarget extracts the callee name, an optional qualifier hint
// (package alias or receiver expression text), and whether the call was
// written in method-call form (`recv.Name(...)`).
func splitGoCallTarget(fn *sitter.Node, content []byte) (name, hint string, isMethod bool) {
	switch fn.Type() {
	case "identifier":
		return string(content[fn.StartByte():fn.EndByte()]), "", false
	case "selector_expression":
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if field == nil {
			return "", "", false
		}
		name = string(content[field.StartByte():field.EndByte()])
		if operand != nil {
			hint = string(content[operand.StartByte():operand.EndByte()])
		}
		return name, hint, true
	default:
		text := string(content[fn.StartByte():fn.EndByte()])
		return text, "", false
	}
}
