package main

import (
	"os"

	"github.com/hashicorp-forge/docstore/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
