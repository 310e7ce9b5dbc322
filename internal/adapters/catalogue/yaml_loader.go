package catalogue

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"gopkg.in/yaml.v3"
)

// File is the components file layout
//
//	components:
//	  vault-registry:
//	    artifact: src/VaultRegistry.sol:VaultRegistry
//	    libraries:
//	      Create2ClonesWithImmutableArgs: "@clones-library"
//	  fnft-proxy:
//	    artifact: FERC1155
//	    source: {from: vault-registry, field: fNFT}
//	groups:
//	  registry: [vault-registry, fnft-proxy]
type File struct {
	Components map[string]*ComponentConfig `yaml:"components"`
	Groups     map[string][]string         `yaml:"groups,omitempty"`
}

// ComponentConfig is one entry of the components map
type ComponentConfig struct {
	Artifact  artifactField         `yaml:"artifact"`
	Args      []argField            `yaml:"args,omitempty"`
	Libraries map[string]argField   `yaml:"libraries,omitempty"`
	Source    *domain.DerivedSource `yaml:"source,omitempty"`
}

// argField accepts "@name" for a reference, any other scalar as a literal, or
// the explicit {ref: name} / {value: literal} mapping.
type argField domain.Arg

func (a *argField) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if ref, ok := strings.CutPrefix(node.Value, "@"); ok {
			*a = argField(domain.Reference(ref))
		} else {
			*a = argField(domain.Literal(node.Value))
		}
		return nil
	case yaml.MappingNode:
		var arg domain.Arg
		if err := node.Decode(&arg); err != nil {
			return err
		}
		*a = argField(arg)
		return nil
	case yaml.SequenceNode:
		// array arguments are passed to the encoder as a JSON list literal
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = fmt.Sprintf("%q", item)
		}
		*a = argField(domain.Literal("[" + strings.Join(quoted, ",") + "]"))
		return nil
	default:
		return fmt.Errorf("line %d: unsupported argument", node.Line)
	}
}

// artifactField accepts "path:Name", a bare "Name" or {name, path}
type artifactField domain.ArtifactRef

func (a *artifactField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if path, name, ok := strings.Cut(node.Value, ":"); ok {
			*a = artifactField{Name: name, Path: path}
		} else {
			*a = artifactField{Name: node.Value}
		}
		return nil
	}
	var ref domain.ArtifactRef
	if err := node.Decode(&ref); err != nil {
		return err
	}
	*a = artifactField(ref)
	return nil
}

// Parse builds a catalogue from a components document
func Parse(data []byte) (*domain.Catalogue, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse components file: %w", err)
	}
	if len(file.Components) == 0 {
		return nil, fmt.Errorf("%w: components file declares no components", domain.ErrInvalidComponent)
	}

	names := make([]string, 0, len(file.Components))
	for name := range file.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make([]*domain.Component, 0, len(names))
	for _, name := range names {
		cfg := file.Components[name]
		if cfg == nil {
			return nil, fmt.Errorf("%w: component %s has no definition", domain.ErrInvalidComponent, name)
		}
		comp := &domain.Component{
			Name:     name,
			Artifact: domain.ArtifactRef(cfg.Artifact),
			Source:   cfg.Source,
		}
		for _, arg := range cfg.Args {
			comp.Args = append(comp.Args, domain.Arg(arg))
		}
		if len(cfg.Libraries) > 0 {
			comp.Libraries = make(map[string]domain.Arg, len(cfg.Libraries))
			for lib, arg := range cfg.Libraries {
				comp.Libraries[lib] = domain.Arg(arg)
			}
		}
		components = append(components, comp)
	}

	return domain.NewCatalogue(components, file.Groups)
}

// Load reads and parses a components file
func Load(path string) (*domain.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read components file: %w", err)
	}
	return Parse(data)
}

// Provide returns the catalogue named by the config, or the built-in one
func Provide(cfg *config.RuntimeConfig, log *slog.Logger) (*domain.Catalogue, error) {
	if cfg.ComponentsFile == "" {
		return domain.DefaultCatalogue(), nil
	}
	path := cfg.ComponentsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	log.Debug("loading components file", "path", path)
	return Load(path)
}
