package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deedles.dev/scanout/internal/headless"
	"deedles.dev/scanout/internal/util"
	"deedles.dev/scanout/internal/wlrbackend"
	"deedles.dev/scanout/output"
	"github.com/sirupsen/logrus"
)

const (
	exitOK = iota
	exitInit
	exitNoSocket
	exitBackendStart
)

func main() {
	backend := flag.String("backend", "wlr", "output backend to use: wlr or headless")
	outputs := util.StringsFlag("outputs", []string{"1280x720@60"}, "comma separated headless outputs, as WxH[@Hz][/WxH[@Hz]...] or virtual:WxH[@Hz]")
	fill := util.ColorFlag("color", output.DefaultColor, "color to fill outputs with, as #RRGGBB[AA]")
	level := util.LevelFlag("loglevel", logrus.InfoLevel, "log level")
	flag.Parse()

	log := logrus.New()
	log.SetLevel(*level)

	env, cleanup, err := open(*backend, *outputs)
	if err != nil {
		log.WithError(err).Error("open backend")
		os.Exit(exitInit)
	}

	go terminateOnSignal(env.Display, log)

	err = output.Run(env, output.Config{
		Color: *fill,
		Log:   log,
	})
	if err != nil {
		log.WithError(err).Error("output management failed to start")
	}

	cleanup()
	os.Exit(exitCode(err))
}

func open(backend string, outputs []string) (env output.Env, cleanup func(), err error) {
	switch backend {
	case "wlr":
		env, err = wlrbackend.Open()
		return env, func() {}, err

	case "headless":
		configs, err := headless.ParseOutputs(outputs)
		if err != nil {
			return env, nil, err
		}

		display := headless.NewDisplay()
		b := headless.NewBackend(display, configs...)
		env = output.Env{
			Display:   display,
			Backend:   b,
			Renderer:  headless.NewRenderer(),
			Allocator: headless.NewAllocator(),
		}
		return env, b.Destroy, nil

	default:
		return env, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func terminateOnSignal(display output.Display, log logrus.FieldLogger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	log.WithField("signal", sig).Info("terminating")
	display.Terminate()
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, output.ErrNoSocket):
		return exitNoSocket
	case errors.Is(err, output.ErrBackendStart):
		return exitBackendStart
	default:
		return exitInit
	}
}
