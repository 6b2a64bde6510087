package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/grandcat/zeroconf"
	"gopkg.in/yaml.v2"
)

const (
	CACHE_TTL      = 5 * time.Second
	browseDuration = 200 * time.Millisecond
)

// NodeLister discovers naiad daemons on the local network. Results are
// cached on disk for CACHE_TTL, since every completion request runs a
// new naiad-cli process.
type NodeLister struct {
	CacheDate time.Time       `yaml:"date"`
	Cache     map[string]Node `yaml:"nodes"`

	path string
}

func NewLister() *NodeLister {
	l := &NodeLister{path: filepath.Join(xdg.CacheHome, "fort", "naiad", "node.cache")}
	l.load()
	return l
}

func (l *NodeLister) ListNodes() (map[string]Node, error) {
	if time.Since(l.CacheDate) < CACHE_TTL {
		return l.Cache, nil
	}
	nodes, err := l.browse()
	if err != nil {
		return nil, err
	}
	l.Cache = nodes
	l.CacheDate = time.Now()
	l.save()
	return nodes, nil
}

func (l *NodeLister) load() {
	content, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	if err := yaml.Unmarshal(content, l); err != nil {
		l.CacheDate = time.Time{}
		l.Cache = nil
	}
}

func (l *NodeLister) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	content, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, content, 0644)
}

// nodeFromEntry builds a Node from a zeroconf entry, and returns false
// for services not advertised by naiad.
func nodeFromEntry(e *zeroconf.ServiceEntry) (Node, bool) {
	name, ok := naiad.HostFromInstance(e.Instance)
	if ok == false {
		return Node{}, false
	}
	info := naiad.ParseServiceInfo(e.Text)
	return Node{
		Name:    name,
		Address: strings.TrimSuffix(e.HostName, "."),
		Port:    e.Port,
		Version: info.Version,
		Zones:   info.Zones,
	}, true
}

func (l *NodeLister) browse() (map[string]Node, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	entries := make(chan *zeroconf.ServiceEntry, 100)
	ctx, cancel := context.WithTimeout(context.Background(), browseDuration)
	defer cancel()
	if err := resolver.Browse(ctx, naiad.ServiceType, naiad.ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("could not browse for naiad nodes: %w", err)
	}

	nodes := make(map[string]Node)
	for e := range entries {
		if node, ok := nodeFromEntry(e); ok == true {
			nodes[node.Name] = node
		}
	}
	return nodes, nil
}
