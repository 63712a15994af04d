package main

import (
	"github.com/wardle/synthds/cmd"
)

// Version is set at build time via the linker.
var Version = "dev"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
