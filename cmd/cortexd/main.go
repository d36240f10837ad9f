package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/server"

	_ "github.com/robotalks/telecortex.go/pkg/transport/all"
)

func init() {
	server.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := server.Default()
	env := conf.MustNewServer()
	defer env.Close()

	glog.Infof("controller %s serving %s", env.Settings.Current().ControllerID, conf.TransportURL)
	loop := fx.NewLoop().Add(env)
	loop.Interval = conf.Interval

	runner := fx.NewRunnerWith(context.Background()).HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Errorf("stopped: %v", err)
	}
}
