package domain

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentRecord is produced once per successful deployment
type DeploymentRecord struct {
	Name     string
	Address  common.Address
	Position int
}

// Manifest maps component names to deployed addresses for one network.
// Records are append-only; a name can only be recorded once.
type Manifest struct {
	Network string
	records []DeploymentRecord
	index   map[string]int
}

// NewManifest creates an empty manifest for the network
func NewManifest(network string) *Manifest {
	return &Manifest{
		Network: network,
		index:   make(map[string]int),
	}
}

// ManifestFromAddresses builds a manifest from a persisted mapping. Records are
// ordered by name since the persisted form carries no deploy order.
func ManifestFromAddresses(network string, addresses map[string]common.Address) *Manifest {
	m := NewManifest(network)
	names := make([]string, 0, len(addresses))
	for name := range addresses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_ = m.Record(name, addresses[name])
	}
	return m
}

// Record appends a deployment record
func (m *Manifest) Record(name string, address common.Address) error {
	if _, exists := m.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, name)
	}
	m.index[name] = len(m.records)
	m.records = append(m.records, DeploymentRecord{
		Name:     name,
		Address:  address,
		Position: len(m.records),
	})
	return nil
}

// Lookup returns the recorded address of a component
func (m *Manifest) Lookup(name string) (common.Address, bool) {
	if m == nil {
		return common.Address{}, false
	}
	i, ok := m.index[name]
	if !ok {
		return common.Address{}, false
	}
	return m.records[i].Address, true
}

// Has reports whether the component has been recorded
func (m *Manifest) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Records returns a copy of the records in recording order
func (m *Manifest) Records() []DeploymentRecord {
	out := make([]DeploymentRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of records
func (m *Manifest) Len() int {
	return len(m.records)
}

// Addresses returns the flat name -> address mapping
func (m *Manifest) Addresses() map[string]common.Address {
	out := make(map[string]common.Address, len(m.records))
	for _, r := range m.records {
		out[r.Name] = r.Address
	}
	return out
}

// Without returns a copy of the manifest omitting the named components
func (m *Manifest) Without(names ...string) *Manifest {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	out := NewManifest(m.Network)
	for _, r := range m.records {
		if drop[r.Name] {
			continue
		}
		_ = out.Record(r.Name, r.Address)
	}
	return out
}

// Clone returns an independent copy
func (m *Manifest) Clone() *Manifest {
	return m.Without()
}
