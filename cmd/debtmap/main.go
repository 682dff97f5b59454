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

// Package main implements the debtmap CLI: a static analyzer that ranks
// functions across a source tree by technical debt.
//
// Usage:
//
//	debtmap analyze [path] [flags]   Analyze a source tree and print a ranked report
//	debtmap --version                Show version and exit
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/iepathos/debtmap-sub009/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the flags available to every subcommand.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	Verbose int
	NoColor bool
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("debtmap version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `debtmap - technical debt prioritization CLI

Usage:
  debtmap <command> [options]

Commands:
  analyze    Analyze a source tree and print a ranked debt report

Global Options:
  --version  Show version and exit

Examples:
  debtmap analyze
  debtmap analyze ./src --coverage coverage.lcov
  debtmap analyze . --format json --top 20

`)
}

func initColors(noColor bool) {
	ui.InitColors(noColor || os.Getenv("NO_COLOR") != "")
}
