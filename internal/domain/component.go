package domain

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ArtifactRef identifies the compiled contract a component is built from
type ArtifactRef struct {
	// Name is the contract name, e.g. VaultRegistry
	Name string `yaml:"name" json:"name"`
	// Path is the source file, e.g. src/VaultRegistry.sol. Used to locate the
	// artifact and for explorer verification.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// String returns the forge-style "path:Name" identifier
func (a ArtifactRef) String() string {
	if a.Path == "" {
		return a.Name
	}
	return a.Path + ":" + a.Name
}

// Arg is a constructor argument or library binding: either a literal value or a
// reference to another component's address.
type Arg struct {
	Ref   string `yaml:"ref,omitempty" json:"ref,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

// Literal creates a literal argument
func Literal(value string) Arg {
	return Arg{Value: value}
}

// Reference creates an argument resolved to the address of the named component
func Reference(component string) Arg {
	return Arg{Ref: component}
}

// IsReference reports whether the argument names another component
func (a Arg) IsReference() bool {
	return a.Ref != ""
}

func (a Arg) String() string {
	if a.IsReference() {
		return "@" + a.Ref
	}
	return a.Value
}

// Resolve returns the literal value of the argument, looking references up in the manifest.
func (a Arg) Resolve(m *Manifest) (string, bool) {
	if !a.IsReference() {
		return a.Value, true
	}
	addr, ok := m.Lookup(a.Ref)
	if !ok {
		return "", false
	}
	return addr.Hex(), true
}

// DerivedSource describes a component that is not deployed directly but created
// by another component and exposed through an immutable getter.
type DerivedSource struct {
	From  string `yaml:"from" json:"from"`
	Field string `yaml:"field" json:"field"`
}

// Component is one deployable unit
type Component struct {
	Name      string
	Artifact  ArtifactRef
	Args      []Arg
	Libraries map[string]Arg
	Source    *DerivedSource
}

// IsDerived reports whether the address is read from another component instead of deployed
func (c *Component) IsDerived() bool {
	return c.Source != nil
}

// Dependencies returns the sorted set of components this one references
func (c *Component) Dependencies() []string {
	seen := make(map[string]bool)
	for _, arg := range c.Args {
		if arg.IsReference() {
			seen[arg.Ref] = true
		}
	}
	for _, lib := range c.Libraries {
		if lib.IsReference() {
			seen[lib.Ref] = true
		}
	}
	if c.Source != nil {
		seen[c.Source.From] = true
	}

	deps := make([]string, 0, len(seen))
	for name := range seen {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

// LibraryNames returns the linked library names in sorted order
func (c *Component) LibraryNames() []string {
	names := make([]string, 0, len(c.Libraries))
	for name := range c.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the declaration is well formed
func (c *Component) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: component name is required", ErrInvalidComponent)
	}
	if c.Artifact.Name == "" {
		return fmt.Errorf("%w: component %s must name an artifact", ErrInvalidComponent, c.Name)
	}
	for i, arg := range c.Args {
		if arg.Ref != "" && arg.Value != "" {
			return fmt.Errorf("%w: %s argument %d sets both ref and value", ErrInvalidComponent, c.Name, i)
		}
	}
	for name, lib := range c.Libraries {
		if !lib.IsReference() && !common.IsHexAddress(lib.Value) {
			return fmt.Errorf("%w: %s library %s must reference a component or an address", ErrInvalidComponent, c.Name, name)
		}
	}
	if c.Source != nil {
		if c.Source.From == "" || c.Source.Field == "" {
			return fmt.Errorf("%w: %s derived source needs both from and field", ErrInvalidComponent, c.Name)
		}
		if len(c.Args) > 0 || len(c.Libraries) > 0 {
			return fmt.Errorf("%w: derived component %s cannot declare constructor args or libraries", ErrInvalidComponent, c.Name)
		}
	}
	return nil
}

// ResolveArgs resolves constructor arguments and library links against the manifest.
// The first reference without an address yields an UnresolvedReferenceError.
func ResolveArgs(c *Component, m *Manifest) ([]string, map[string]common.Address, error) {
	args := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		value, ok := arg.Resolve(m)
		if !ok {
			return nil, nil, UnresolvedReferenceError{Component: c.Name, Reference: arg.Ref}
		}
		args = append(args, value)
	}

	libs := make(map[string]common.Address, len(c.Libraries))
	for _, name := range c.LibraryNames() {
		lib := c.Libraries[name]
		value, ok := lib.Resolve(m)
		if !ok {
			return nil, nil, UnresolvedReferenceError{Component: c.Name, Reference: lib.Ref}
		}
		if !common.IsHexAddress(value) {
			return nil, nil, fmt.Errorf("%w: library %s of %s: %s", ErrInvalidAddress, name, c.Name, value)
		}
		libs[name] = common.HexToAddress(value)
	}

	return args, libs, nil
}

// DeployRequest is what the deploy collaborator receives for one directly deployed component
type DeployRequest struct {
	Component       string
	Artifact        ArtifactRef
	ConstructorArgs []string
	Libraries       map[string]common.Address
}

// VerificationRequest is derived from a component declaration and the manifest; it must
// reproduce the arguments used at deploy time.
type VerificationRequest struct {
	Component       string
	Address         common.Address
	Artifact        ArtifactRef
	ConstructorArgs []string
	Libraries       map[string]common.Address
}

// NewVerificationRequest resolves the component's own address, arguments and libraries.
func NewVerificationRequest(c *Component, m *Manifest) (*VerificationRequest, error) {
	addr, ok := m.Lookup(c.Name)
	if !ok {
		return nil, UnresolvedReferenceError{Component: c.Name, Reference: c.Name}
	}
	args, libs, err := ResolveArgs(c, m)
	if err != nil {
		return nil, err
	}
	return &VerificationRequest{
		Component:       c.Name,
		Address:         addr,
		Artifact:        c.Artifact,
		ConstructorArgs: args,
		Libraries:       libs,
	}, nil
}
