package main

import (
	"context"
	"fmt"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type InterruptCommand struct {
	Zone  int `short:"z" long:"zone" description:"zone for zone scoped interrupts"`
	Value int `short:"v" long:"value" description:"measured value, for invalid humidity"`
	Args  struct {
		Node Nodename
		Code int
	} `positional-args:"yes" required:"yes"`
}

func (c *InterruptCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"naiad-cli/Interrupt")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "naiad-cli error")
			span.RecordError(err)
		}
		span.End()
	}()

	i, err := naiad.InterruptForKind(naiad.InterruptKind(c.Args.Code))
	if err != nil {
		return err
	}
	if i.Flags()&naiad.ZoneScoped != 0 && c.Zone <= 0 {
		return fmt.Errorf("%s: a zone is required", i.Identifier())
	}

	node, err := GetNode(c.Args.Node)
	if err != nil {
		return err
	}
	return node.Interrupt(ctx, i.Kind(), c.Zone, c.Value)
}

type ResumeAllCommand struct {
	Args struct {
		Node Nodename
	} `positional-args:"yes" required:"yes"`
}

func (c *ResumeAllCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"naiad-cli/ResumeAll")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "naiad-cli error")
			span.RecordError(err)
		}
		span.End()
	}()

	node, err := GetNode(c.Args.Node)
	if err != nil {
		return err
	}
	return node.ResumeAll(ctx)
}

func init() {
	_, err := parser.AddCommand("interrupt",
		"raises an interrupt on a node",
		`raises an interrupt on a node. Codes are:
  1: system reset
  2: invalid humidity (zone, value)
  3: water shortage
  4: fertilizer shortage
  5: water sensor fault (zone)
  6: fertilizer sensor fault (zone)`,
		&InterruptCommand{})
	if err != nil {
		panic(err.Error())
	}

	_, err = parser.AddCommand("resume-all",
		"resumes a node after a reset",
		"resumes every zone of a node after a system reset",
		&ResumeAllCommand{})
	if err != nil {
		panic(err.Error())
	}
}
