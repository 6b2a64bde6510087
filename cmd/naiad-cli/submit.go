package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/jessevdk/go-flags"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SubmitCommand struct {
	Args struct {
		Node    Nodename
		Program flags.Filename
	} `positional-args:"yes" required:"yes"`
}

func (c *SubmitCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"naiad-cli/Submit")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "naiad-cli error")
			span.RecordError(err)
		}
		span.End()
	}()

	program, err := naiad.ReadProgramFile(string(c.Args.Program))
	if err != nil {
		return fmt.Errorf("could not read '%s': %w", c.Args.Program, err)
	}
	commands, err := naiad.Parse(program)
	if err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	span.SetAttributes(attribute.Int("commands", len(commands)))

	node, err := GetNode(c.Args.Node)
	if err != nil {
		return err
	}

	applied, err := node.Submit(ctx, program)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d command(s) applied on %s\n", applied, node.Name)
	return nil
}

type CheckCommand struct {
	Args struct {
		Program flags.Filename
	} `positional-args:"yes" required:"yes"`
}

func printCommands(w io.Writer, commands []naiad.Command) {
	for i, cmd := range commands {
		zones := make([]string, 0, len(cmd.Zones()))
		for _, z := range cmd.Zones() {
			zones = append(zones, fmt.Sprintf("%d", z))
		}
		fmt.Fprintf(w, "%3d: %-28s zones: %s\n", i+1, cmd.Name(), strings.Join(zones, ","))
	}
}

func (c *CheckCommand) Execute(args []string) error {
	commands, err := naiad.ParseProgramFile(string(c.Args.Program))
	if err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	printCommands(os.Stdout, commands)
	return nil
}

func init() {
	_, err := parser.AddCommand("submit",
		"submits a program to a node",
		"submits a program file to a specified node. The program is checked locally first.",
		&SubmitCommand{})
	if err != nil {
		panic(err.Error())
	}

	_, err = parser.AddCommand("check",
		"checks a program file",
		"parses a program file locally and list its commands",
		&CheckCommand{})
	if err != nil {
		panic(err.Error())
	}
}
