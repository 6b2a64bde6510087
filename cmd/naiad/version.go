package main

import (
	"fmt"

	"github.com/formicidae-tracker/naiad/internal/naiad"
)

type VersionCommand struct {
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Printf("%s\n", naiad.NAIAD_VERSION)
	return nil
}

func init() {
	_, err := parser.AddCommand("version",
		"print naiad version",
		"prints naiad version on stdout and exit",
		&VersionCommand{})
	if err != nil {
		panic(err.Error())
	}
}
