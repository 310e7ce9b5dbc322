package domain

import (
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
)

// Component names of the vault system. These are also the manifest keys.
const (
	ComponentBaseVault           = "base-vault"
	ComponentBuyout              = "buyout"
	ComponentClonesLibrary       = "clones-library"
	ComponentFNFTProxy           = "fnft-proxy"
	ComponentFNFTImplementation  = "fnft-implementation"
	ComponentMetadata            = "metadata"
	ComponentSupply              = "supply"
	ComponentTransfer            = "transfer"
	ComponentVaultImplementation = "vault-implementation"
	ComponentVaultFactory        = "vault-factory"
	ComponentVaultRegistry       = "vault-registry"
)

// ClonesLibraryName is the library linked into the factory and the registry
const ClonesLibraryName = "Create2ClonesWithImmutableArgs"

// LegacyManifestKeys maps the keys written by the hardhat scripts to component names
var LegacyManifestKeys = map[string]string{
	"BaseVault":      ComponentBaseVault,
	"Buyout":         ComponentBuyout,
	"Clones":         ComponentClonesLibrary,
	"FERC1155":       ComponentFNFTProxy,
	"Implementation": ComponentFNFTImplementation,
	"Metadata":       ComponentMetadata,
	"Supply":         ComponentSupply,
	"Transfer":       ComponentTransfer,
	"Vault":          ComponentVaultImplementation,
	"VaultFactory":   ComponentVaultFactory,
	"VaultRegistry":  ComponentVaultRegistry,
}

// Catalogue is the static set of components and named deploy groups
type Catalogue struct {
	components map[string]*Component
	groups     map[string][]string
}

// NewCatalogue validates the declarations and builds a catalogue
func NewCatalogue(components []*Component, groups map[string][]string) (*Catalogue, error) {
	c := &Catalogue{
		components: make(map[string]*Component, len(components)),
		groups:     make(map[string][]string, len(groups)),
	}
	for _, comp := range components {
		if err := comp.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.components[comp.Name]; exists {
			return nil, fmt.Errorf("%w: component %s declared twice", ErrInvalidComponent, comp.Name)
		}
		c.components[comp.Name] = comp
	}
	for _, comp := range components {
		for _, dep := range comp.Dependencies() {
			if dep == comp.Name {
				return nil, fmt.Errorf("%w: component %s references itself", ErrInvalidComponent, comp.Name)
			}
			if _, ok := c.components[dep]; !ok {
				return nil, fmt.Errorf("%w: component %s references unknown component %s", ErrInvalidComponent, comp.Name, dep)
			}
		}
	}
	for group, members := range groups {
		for _, name := range members {
			if _, ok := c.components[name]; !ok {
				return nil, fmt.Errorf("%w: group %s lists unknown component %s", ErrInvalidComponent, group, name)
			}
		}
		c.groups[group] = append([]string(nil), members...)
	}
	return c, nil
}

// Get returns a component by name
func (c *Catalogue) Get(name string) (*Component, bool) {
	comp, ok := c.components[name]
	return comp, ok
}

// Names returns all component names, sorted
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all components sorted by name
func (c *Catalogue) All() []*Component {
	out := make([]*Component, 0, len(c.components))
	for _, name := range c.Names() {
		out = append(out, c.components[name])
	}
	return out
}

// GroupNames returns the names of the deploy groups, sorted
func (c *Catalogue) GroupNames() []string {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the members of a deploy group
func (c *Catalogue) Group(name string) ([]string, bool) {
	members, ok := c.groups[name]
	return members, ok
}

// Select returns the named components. Unknown names produce an
// UnknownComponentError carrying fuzzy-matched suggestions.
func (c *Catalogue) Select(names []string) ([]*Component, error) {
	seen := make(map[string]bool, len(names))
	out := make([]*Component, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		comp, ok := c.components[name]
		if !ok {
			return nil, UnknownComponentError{Name: name, Suggestions: c.suggest(name)}
		}
		seen[name] = true
		out = append(out, comp)
	}
	return out, nil
}

func (c *Catalogue) suggest(name string) []string {
	matches := fuzzy.Find(name, c.Names())
	var suggestions []string
	for i, match := range matches {
		if i == 3 {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}

// DefaultCatalogue returns the vault system's dependency graph as deployed by the
// original scripts.
func DefaultCatalogue() *Catalogue {
	clones := map[string]Arg{ClonesLibraryName: Reference(ComponentClonesLibrary)}

	components := []*Component{
		{
			Name:     ComponentClonesLibrary,
			Artifact: ArtifactRef{Name: ClonesLibraryName, Path: "src/utils/Create2ClonesWithImmutableArgs.sol"},
		},
		{
			Name:      ComponentVaultFactory,
			Artifact:  ArtifactRef{Name: "VaultFactory", Path: "src/VaultFactory.sol"},
			Libraries: clones,
		},
		{
			Name:     ComponentVaultImplementation,
			Artifact: ArtifactRef{Name: "Vault", Path: "src/Vault.sol"},
			Source:   &DerivedSource{From: ComponentVaultFactory, Field: "implementation"},
		},
		{
			Name:      ComponentVaultRegistry,
			Artifact:  ArtifactRef{Name: "VaultRegistry", Path: "src/VaultRegistry.sol"},
			Libraries: clones,
		},
		{
			Name:     ComponentFNFTImplementation,
			Artifact: ArtifactRef{Name: "FERC1155", Path: "src/FERC1155.sol"},
			Source:   &DerivedSource{From: ComponentVaultRegistry, Field: "fNFTImplementation"},
		},
		{
			Name:     ComponentFNFTProxy,
			Artifact: ArtifactRef{Name: "FERC1155", Path: "src/FERC1155.sol"},
			Source:   &DerivedSource{From: ComponentVaultRegistry, Field: "fNFT"},
		},
		{
			Name:     ComponentMetadata,
			Artifact: ArtifactRef{Name: "Metadata", Path: "src/utils/Metadata.sol"},
			Args:     []Arg{Reference(ComponentFNFTProxy)},
		},
		{
			Name:     ComponentSupply,
			Artifact: ArtifactRef{Name: "Supply", Path: "src/targets/Supply.sol"},
			Args:     []Arg{Reference(ComponentVaultRegistry)},
		},
		{
			Name:     ComponentTransfer,
			Artifact: ArtifactRef{Name: "Transfer", Path: "src/targets/Transfer.sol"},
		},
		{
			Name:     ComponentBuyout,
			Artifact: ArtifactRef{Name: "Buyout", Path: "src/modules/Buyout.sol"},
			Args: []Arg{
				Reference(ComponentVaultRegistry),
				Reference(ComponentSupply),
				Reference(ComponentTransfer),
			},
		},
		{
			Name:     ComponentBaseVault,
			Artifact: ArtifactRef{Name: "BaseVault", Path: "src/modules/protoforms/BaseVault.sol"},
			Args: []Arg{
				Reference(ComponentVaultRegistry),
				Reference(ComponentSupply),
			},
		},
	}

	groups := map[string][]string{
		"library":  {ComponentClonesLibrary},
		"factory":  {ComponentVaultFactory, ComponentVaultImplementation},
		"registry": {ComponentVaultRegistry, ComponentFNFTImplementation, ComponentFNFTProxy, ComponentMetadata},
		"targets":  {ComponentSupply, ComponentTransfer},
		"modules":  {ComponentBaseVault, ComponentBuyout},
	}

	catalogue, err := NewCatalogue(components, groups)
	if err != nil {
		panic(err)
	}
	return catalogue
}
