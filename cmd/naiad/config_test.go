package main

import (
	"os"
	"path/filepath"
	"time"

	. "gopkg.in/check.v1"
)

type ConfigSuite struct {
	dir string
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) SetUpTest(c *C) {
	s.dir = c.MkDir()
}

func (s *ConfigSuite) write(c *C, content string) string {
	fpath := filepath.Join(s.dir, "naiad.yml")
	c.Assert(os.WriteFile(fpath, []byte(content), 0644), IsNil)
	return fpath
}

func (s *ConfigSuite) TestLoad(c *C) {
	content := `---
zones: 12
columns: 4
sensors-check-interval: 2m
journal-dir: /var/lib/naiad
mqtt:
  broker: tcp://localhost:1883
  topic-prefix: greenhouse
metrics:
  address: :9102
`
	config, err := OpenConfig(s.write(c, content))
	c.Assert(err, IsNil)
	c.Check(config.Zones, Equals, 12)
	c.Check(config.Columns, Equals, 4)
	c.Check(config.SensorsCheckInterval, Equals, 2*time.Minute)
	c.Check(config.RPCPort, Equals, 4730)
	c.Check(config.JournalDir, Equals, "/var/lib/naiad")
	c.Check(config.MQTT, Equals, MQTTConfig{
		Broker:      "tcp://localhost:1883",
		TopicPrefix: "greenhouse",
		ClientID:    "naiad",
		MaxFailures: DefaultMaxFailures,
	})
	c.Check(config.Metrics.Address, Equals, ":9102")
	c.Check(config.Check(), IsNil)
}

func (s *ConfigSuite) TestDefaults(c *C) {
	config, err := OpenConfig(s.write(c, "---\n"))
	c.Assert(err, IsNil)
	c.Check(config.Zones, Equals, 15)
	c.Check(config.Columns, Equals, 3)
	c.Check(config.SensorsCheckInterval, Equals, 5*time.Minute)
	c.Check(filepath.Base(config.JournalDir), Equals, "journal")
	c.Check(config.Check(), IsNil)
}

func (s *ConfigSuite) TestCheck(c *C) {
	testdata := []struct {
		Content string
		Error   string
	}{
		{"zones: 0", "invalid zones 0: should be strictly positive"},
		{"columns: -1", "invalid columns -1: should be strictly positive"},
		{"sensors-check-interval: 0s", "invalid sensors-check-interval 0s: should be strictly positive"},
		{"rpc-port: 70000", "invalid rpc-port 70000"},
		{"mqtt:\n  broker: tcp://localhost:1883\n  topic-prefix: \"\"", "invalid mqtt definition: empty topic-prefix"},
	}
	for _, d := range testdata {
		config, err := OpenConfig(s.write(c, d.Content))
		if c.Check(err, IsNil) == false {
			continue
		}
		c.Check(config.Check(), ErrorMatches, d.Error)
	}
}

func (s *ConfigSuite) TestMissingFile(c *C) {
	_, err := OpenConfig(filepath.Join(s.dir, "does-not-exist.yml"))
	c.Check(os.IsNotExist(err), Equals, true)
}
