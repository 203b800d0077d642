package main

import (
	"raic-cli/internal/cli"
)

func main() {
	cli.Execute()
}
