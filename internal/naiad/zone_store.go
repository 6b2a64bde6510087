package naiad

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrZoneExists   = errors.New("zone already exists")
)

// RegistryError wraps ErrZoneNotFound or ErrZoneExists with the
// operation and zone it occurred on.
type RegistryError struct {
	Op  string
	ID  int
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s zone %d: %s", e.Op, e.ID, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ZoneStore is the registry of all zones. Zones are handed out by
// value: modifications must be saved with Update.
type ZoneStore interface {
	Find(ID int) (Zone, error)
	FindAll() []Zone
	Add(z Zone) error
	Update(z Zone) error
	Delete(ID int) error
}

type memoryZoneStore struct {
	mx    sync.RWMutex
	zones map[int]Zone
}

func NewMemoryZoneStore() ZoneStore {
	return &memoryZoneStore{zones: make(map[int]Zone)}
}

// NewZoneStoreWithZones returns a store holding default zones 1 to n.
func NewZoneStoreWithZones(n int) ZoneStore {
	s := &memoryZoneStore{zones: make(map[int]Zone, n)}
	for i := 1; i <= n; i++ {
		s.zones[i] = NewZone(i)
	}
	return s
}

func (s *memoryZoneStore) Find(ID int) (Zone, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	z, ok := s.zones[ID]
	if ok == false {
		return Zone{}, &RegistryError{Op: "find", ID: ID, Err: ErrZoneNotFound}
	}
	return z, nil
}

func (s *memoryZoneStore) FindAll() []Zone {
	s.mx.RLock()
	defer s.mx.RUnlock()
	res := make([]Zone, 0, len(s.zones))
	for _, z := range s.zones {
		res = append(res, z)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *memoryZoneStore) Add(z Zone) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if _, ok := s.zones[z.ID]; ok == true {
		return &RegistryError{Op: "add", ID: z.ID, Err: ErrZoneExists}
	}
	s.zones[z.ID] = z
	return nil
}

func (s *memoryZoneStore) Update(z Zone) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if _, ok := s.zones[z.ID]; ok == false {
		return &RegistryError{Op: "update", ID: z.ID, Err: ErrZoneNotFound}
	}
	s.zones[z.ID] = z
	return nil
}

func (s *memoryZoneStore) Delete(ID int) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if _, ok := s.zones[ID]; ok == false {
		return &RegistryError{Op: "delete", ID: ID, Err: ErrZoneNotFound}
	}
	delete(s.zones, ID)
	return nil
}
