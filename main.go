// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the polarisdesk CLI.
package main

import (
	"polarisdesk/cli/cmd"
)

func main() {
	cmd.Execute()
}
