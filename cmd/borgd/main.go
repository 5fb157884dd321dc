package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/picoborg.go/pkg/borg"
	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	env "github.com/robotalks/picoborg.go/pkg/l1/env/controller"

	_ "github.com/robotalks/picoborg.go/pkg/picoborg/bridge"
	_ "github.com/robotalks/picoborg.go/pkg/picoborg/i2cdev"
	_ "github.com/robotalks/picoborg.go/pkg/picoborg/sim"
)

func init() {
	env.SetControllerType(borg.ControllerType, l1.ControllerMeta{Description: "PicoBorg Reverse motor controller"})
	env.SetupFlags()
	borg.SetupFlags()
}

func main() {
	flag.Parse()

	conf := borg.NewConfig()
	if err := conf.Load(); err != nil {
		glog.Exitf("load config: %v", err)
	}
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}
	env := env.NewConfig().MustNewEnv()
	dev, err := conf.OpenDevice()
	if err != nil {
		glog.Exitf("open %s: %v", conf.Device, err)
	}
	ctl := conf.NewController(env.Registrar, dev)
	glog.Infof("%s registered at %v", env.Config.Info.Ref.Name(), env.RegistryURLs)
	fx.NewLoop().Add(env, ctl).RunOrFail()
}
