package main

import (
	"github.com/robotalks/telecortex.go/pkg/cli/sh"
	"github.com/robotalks/telecortex.go/pkg/client"

	_ "github.com/robotalks/telecortex.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	client.SetupFlags()
}

func main() {
	sh.Main()
}
