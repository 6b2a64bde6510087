package main

import (
	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/grandcat/zeroconf"
	. "gopkg.in/check.v1"
)

type NodeSuite struct {
	version string
}

var _ = Suite(&NodeSuite{})

func (s *NodeSuite) SetUpTest(c *C) {
	s.version = naiad.NAIAD_VERSION
	naiad.NAIAD_VERSION = "v0.4.2"
}

func (s *NodeSuite) TearDownTest(c *C) {
	naiad.NAIAD_VERSION = s.version
}

func (s *NodeSuite) TestNodeFromEntry(c *C) {
	e := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "naiad.greenhouse"},
		HostName:      "greenhouse.local.",
		Port:          4730,
		Text:          naiad.ServiceInfo{Version: "v0.4.0", Zones: 12}.TXT(),
	}
	node, ok := nodeFromEntry(e)
	c.Assert(ok, Equals, true)
	c.Check(node, Equals, Node{
		Name:    "greenhouse",
		Address: "greenhouse.local",
		Port:    4730,
		Version: "v0.4.0",
		Zones:   12,
	})
	c.Check(node.Describe(), Equals, "greenhouse.local:4730 naiad v0.4.0, 12 zones")

	e.Instance = "zeus.greenhouse"
	_, ok = nodeFromEntry(e)
	c.Check(ok, Equals, false)
}

func (s *NodeSuite) TestCompatibility(c *C) {
	c.Check(checkNode(Node{Name: "a", Version: "v0.4.0"}), IsNil)
	c.Check(checkNode(Node{Name: "b"}), IsNil)
	c.Check(checkNode(Node{Name: "c", Version: "v0.5.0"}), ErrorMatches,
		"node 'c' runs naiad v0.5.0, which is incompatible with naiad-cli")
	c.Check(checkNode(Node{Name: "d", Version: "garbage"}), ErrorMatches,
		"node 'd': invalid version 'garbage': .*")
}
