// Package main provides the showcase CLI.
package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/mesh-intelligence/showcase/internal/cli"
)

func main() {
	cli.Execute()
}
