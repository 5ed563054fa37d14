// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the nmt command line tool.
package main

import "github.com/born-ml/nmt/cmd/nmt/cmd"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.0.1-dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
