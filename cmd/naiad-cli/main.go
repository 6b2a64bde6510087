package main

import (
	"os"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/jessevdk/go-flags"
)

type Options struct {
}

var opts = &Options{}

var parser = flags.NewParser(opts, flags.Default)

var instrumentationName = "github.com/formicidae-tracker/naiad/cmd/naiad-cli"

func Execute() error {
	if _, err := parser.Parse(); err != nil {
		return err
	}

	return nil
}

func main() {
	setUpTelemetry()

	if err := Execute(); err != nil {
		if ferr, ok := err.(*flags.Error); ok == true && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func setUpTelemetry() {
	otel := os.Getenv("NAIAD_CLI_OTEL_ENDPOINT")
	if len(otel) == 0 {
		return
	}
	tm.SetUpTelemetry(tm.OtelProviderArgs{
		CollectorURL:         otel,
		ServiceName:          "naiad-cli",
		ServiceVersion:       naiad.NAIAD_VERSION,
		ForceFlushOnShutdown: true,
	})
}
