package main

import (
	"os"

	"github.com/hashicorp-forge/dropinblog/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
