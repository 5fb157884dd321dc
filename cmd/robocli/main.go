// Command robocli is an interactive client of controllers reachable
// through the registry, with commands for PicoBorg daemons.
package main

import (
	"flag"

	"github.com/robotalks/picoborg.go/pkg/borg"
	"github.com/robotalks/picoborg.go/pkg/cli/sh"
	env "github.com/robotalks/picoborg.go/pkg/l1/env/connector"

	_ "github.com/robotalks/picoborg.go/pkg/cli/cmds/all"
)

func main() {
	env.SetupFlags()
	flag.Parse()
	conf := env.NewConfig()
	if conf.Ref.ID != "" && conf.Ref.Type == "" {
		conf.Ref.Type = borg.ControllerType
	}
	sh.New(conf).WithAutoConnect(true).Run(flag.Args()...)
}
