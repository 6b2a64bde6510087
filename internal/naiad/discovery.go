package naiad

import (
	"strconv"
	"strings"
)

const (
	ServiceType     = "_naiad._tcp"
	ServiceDomain   = "local."
	instancePrefix  = "naiad."
	txtVersionKey   = "version"
	txtZonesKey     = "zones"
	txtKeySeparator = "="
)

// ServiceInfo is advertised by a daemon in its zeroconf TXT record.
type ServiceInfo struct {
	Version string
	Zones   int
}

func ServiceInstance(host string) string {
	return instancePrefix + host
}

// HostFromInstance returns the host of a naiad service instance, and
// false for instances not advertised by naiad.
func HostFromInstance(instance string) (string, bool) {
	if strings.HasPrefix(instance, instancePrefix) == false {
		return "", false
	}
	return strings.TrimPrefix(instance, instancePrefix), true
}

func (i ServiceInfo) TXT() []string {
	return []string{
		txtVersionKey + txtKeySeparator + i.Version,
		txtZonesKey + txtKeySeparator + strconv.Itoa(i.Zones),
	}
}

// ParseServiceInfo reads a TXT record. Unknown or malformed entries
// are ignored.
func ParseServiceInfo(txt []string) ServiceInfo {
	res := ServiceInfo{}
	for _, entry := range txt {
		key, value, ok := strings.Cut(entry, txtKeySeparator)
		if ok == false {
			continue
		}
		switch key {
		case txtVersionKey:
			res.Version = value
		case txtZonesKey:
			if zones, err := strconv.Atoi(value); err == nil && zones > 0 {
				res.Zones = zones
			}
		}
	}
	return res
}
