package main

import (
	"context"
	"fmt"
	"time"

	"github.com/formicidae-tracker/naiad/internal/naiad"
)

type ScanCommand struct {
}

func (c *ScanCommand) Execute(args []string) error {
	now := time.Now()
	nodes, err := Nodes()
	if err != nil {
		return err
	}
	fmt.Println("┌──────────────────────┬─────────┬─────────────┬──────────────────────┬────────────┐")
	format := "│ %20s │ %-7s │ %-11s │ %-20s │ %-10s │\n"
	fmt.Printf(format, "Node", "Zones", "Since", "Version", "Compatible")
	fmt.Println("├──────────────────────┼─────────┼─────────────┼──────────────────────┼────────────┤")

	for _, node := range nodes {
		zones, since, version := "n.a.", "n.a.", "n.a."
		if node.Zones > 0 {
			zones = fmt.Sprintf("%d", node.Zones)
		}
		if len(node.Version) > 0 {
			version = node.Version
		}
		if err := checkNode(node); err != nil {
			fmt.Printf(format, node.Name, zones, since, version, "✗")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		st, err := node.Status(ctx)
		cancel()
		if err != nil {
			fmt.Printf(format, node.Name, zones, since, version, "✗")
			continue
		}
		since = now.Sub(st.Since.AsTime()).Truncate(time.Second).String()

		compatibleValue := "✓"
		compatible, err := naiad.VersionAreCompatible(naiad.NAIAD_VERSION, st.Version)
		if err != nil || compatible == false {
			compatibleValue = "✗"
		}

		fmt.Printf(format, node.Name, fmt.Sprintf("%d", len(st.Zones)), since, st.Version, compatibleValue)
	}
	fmt.Println("└──────────────────────┴─────────┴─────────────┴──────────────────────┴────────────┘")

	return nil
}

func init() {
	_, err := parser.AddCommand("scan",
		"scan node on local network",
		"scans naiad node available on local network",
		&ScanCommand{})
	if err != nil {
		panic(err.Error())
	}

}
