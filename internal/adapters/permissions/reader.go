package permissions

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fractional-company/vaultctl/internal/domain/merkle"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"gopkg.in/yaml.v3"
)

// FileSource reads permission lists from YAML or JSON files. The document is
// either a list or a mapping with a permissions list. Each item is a 32-byte
// hex permission or a {module, target, selector} mapping.
type FileSource struct {
	log *slog.Logger
}

// NewFileSource creates a permission source
func NewFileSource(log *slog.Logger) *FileSource {
	return &FileSource{log: log.With("component", "PermissionSource")}
}

type permissionItem struct {
	Module   string `yaml:"module"`
	Target   string `yaml:"target"`
	Selector string `yaml:"selector"`
}

type permissionDocument struct {
	Permissions []yaml.Node `yaml:"permissions"`
}

// ReadPermissions parses the file at path
func (s *FileSource) ReadPermissions(ctx context.Context, path string) ([]merkle.Permission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions file: %w", err)
	}
	perms, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.log.Debug("permissions loaded", "path", path, "count", len(perms))
	return perms, nil
}

// Parse decodes a permission document
func Parse(data []byte) ([]merkle.Permission, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid permissions document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty permissions document")
	}

	var items []yaml.Node
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&items); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var wrapped permissionDocument
		if err := doc.Decode(&wrapped); err != nil {
			return nil, err
		}
		items = wrapped.Permissions
	default:
		return nil, fmt.Errorf("line %d: expected a list of permissions", doc.Line)
	}

	perms := make([]merkle.Permission, 0, len(items))
	for i := range items {
		p, err := parseItem(&items[i])
		if err != nil {
			return nil, fmt.Errorf("permission %d (line %d): %w", i, items[i].Line, err)
		}
		perms = append(perms, p)
	}
	return perms, nil
}

func parseItem(node *yaml.Node) (merkle.Permission, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		b, err := hexutil.Decode(node.Value)
		if err != nil {
			return merkle.Permission{}, fmt.Errorf("invalid hex %q: %w", node.Value, err)
		}
		if len(b) != common.HashLength {
			return merkle.Permission{}, fmt.Errorf("permission %q must be 32 bytes, got %d", node.Value, len(b))
		}
		hash := common.BytesToHash(b)
		return merkle.Permission{Hash: &hash}, nil

	case yaml.MappingNode:
		var item permissionItem
		if err := node.Decode(&item); err != nil {
			return merkle.Permission{}, err
		}
		if !common.IsHexAddress(item.Module) {
			return merkle.Permission{}, fmt.Errorf("invalid module address %q", item.Module)
		}
		if !common.IsHexAddress(item.Target) {
			return merkle.Permission{}, fmt.Errorf("invalid target address %q", item.Target)
		}
		sel, err := hexutil.Decode(item.Selector)
		if err != nil || len(sel) != 4 {
			return merkle.Permission{}, fmt.Errorf("selector %q must be 4 bytes of hex", item.Selector)
		}
		p := merkle.Permission{
			Module: common.HexToAddress(item.Module),
			Target: common.HexToAddress(item.Target),
		}
		copy(p.Selector[:], sel)
		return p, nil

	default:
		return merkle.Permission{}, fmt.Errorf("expected a hex string or a {module, target, selector} mapping")
	}
}

var _ usecase.PermissionSource = (*FileSource)(nil)
