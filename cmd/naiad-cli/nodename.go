package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jessevdk/go-flags"
)

// Nodename is a positional argument naming a discovered naiad node.
type Nodename string

var lister *NodeLister

func (n *Nodename) Complete(match string) []flags.Completion {
	nodes, err := Nodes()
	if err != nil {
		return nil
	}
	res := []flags.Completion{}
	for _, node := range nodes {
		if strings.HasPrefix(node.Name, match) == false {
			continue
		}
		if ok, _ := node.Compatible(); ok == false {
			continue
		}
		res = append(res, flags.Completion{Item: node.Name, Description: node.Describe()})
	}
	return res
}

// GetNode returns a discovered node. It fails for nodes advertising an
// incompatible version, so no request is sent to them.
func GetNode(name Nodename) (Node, error) {
	nodes, err := lister.ListNodes()
	if err != nil {
		return Node{}, err
	}
	node, ok := nodes[string(name)]
	if ok == false {
		return Node{}, fmt.Errorf("could not find node '%s'", name)
	}
	return node, checkNode(node)
}

func checkNode(node Node) error {
	compatible, err := node.Compatible()
	if err != nil {
		return fmt.Errorf("node '%s': %w", node.Name, err)
	}
	if compatible == false {
		return fmt.Errorf("node '%s' runs naiad %s, which is incompatible with naiad-cli", node.Name, node.Version)
	}
	return nil
}

// Nodes returns every discovered node, sorted by name.
func Nodes() ([]Node, error) {
	nodes, err := lister.ListNodes()
	if err != nil {
		return nil, err
	}
	res := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func init() {
	lister = NewLister()
}
