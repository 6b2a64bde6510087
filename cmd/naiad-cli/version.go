package main

import (
	"fmt"
	"os"

	"github.com/formicidae-tracker/naiad/internal/naiad"
)

type VersionCommand struct {
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Fprintf(os.Stdout, "naiad-cli version %s\n", naiad.NAIAD_VERSION)
	return nil
}

func init() {
	_, err := parser.AddCommand("version",
		"print version",
		"prints version on stdout",
		&VersionCommand{})
	if err != nil {
		panic(err.Error())
	}

}
