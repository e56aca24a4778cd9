// Package main provides the relmap CLI.
package main

import "github.com/mesh-intelligence/relmap/internal/cli"

func main() {
	cli.Execute()
}
