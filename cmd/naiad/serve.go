package main

import (
	"os"
	"os/signal"

	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type ServeCommand struct {
	Args struct {
		Config flags.Filename
	} `positional-args:"yes"`

	Verbose []bool         `short:"v" long:"verbose" description:"enables verbose output, repeat for more"`
	Program flags.Filename `short:"f" long:"program" description:"program file to apply at start"`
}

func (c *ServeCommand) Execute(args []string) error {
	config, err := OpenConfigFromArg(c.Args.Config)
	if err != nil {
		return err
	}
	config.Verbosity = len(c.Verbose)
	if len(c.Program) > 0 {
		config.Program = string(c.Program)
	}
	setLogLevel(config.Verbosity)

	n, err := OpenNaiad(*config)
	if err != nil {
		return err
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint
		n.shutdown()
	}()

	return n.run()
}

func setLogLevel(verbosity int) {
	switch {
	case verbosity >= 2:
		logrus.SetLevel(logrus.TraceLevel)
	case verbosity == 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func init() {
	_, err := parser.AddCommand("serve",
		"serve irrigation control",
		"serves irrigation control from this computer",
		&ServeCommand{})
	if err != nil {
		panic(err.Error())
	}
}
