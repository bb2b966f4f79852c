package main

import (
	"github.com/satlink/sat.go/pkg/cli/sh"

	_ "github.com/satlink/sat.go/pkg/cli/cmds/codec"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
