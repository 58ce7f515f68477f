package main

import (
	"os"

	"github.com/go-delve/uleb128/cmd/uleb128/cmds"
	"github.com/go-delve/uleb128/pkg/version"
)

func main() {
	if version.ToolVersion.Build == "$Id$" {
		version.ToolVersion.Build = ""
	}
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
