package artifacts

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
)

// LinkReference is one placeholder position in the bytecode, in bytes
type LinkReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Artifact is a compiled contract loaded from a Foundry or hardhat artifact file
type Artifact struct {
	Name string
	File string // artifact file on disk
	ABI  abi.ABI
	// Bytecode is the creation code as hex without 0x, possibly with library placeholders
	Bytecode string
	// LinkReferences maps source file -> library name -> placeholder positions
	LinkReferences map[string]map[string][]LinkReference
}

// rawArtifact accepts both layouts: Foundry nests bytecode in an object with
// its link references, hardhat keeps a string and a top-level linkReferences.
type rawArtifact struct {
	ContractName   string                                `json:"contractName"`
	ABI            json.RawMessage                       `json:"abi"`
	Bytecode       json.RawMessage                       `json:"bytecode"`
	LinkReferences map[string]map[string][]LinkReference `json:"linkReferences"`
}

type foundryBytecode struct {
	Object         string                                `json:"object"`
	LinkReferences map[string]map[string][]LinkReference `json:"linkReferences"`
}

// Repository resolves artifact references against the artifacts directory
type Repository struct {
	dir   string
	log   *slog.Logger
	mu    sync.Mutex
	cache map[string]*Artifact
}

// NewRepository creates a repository over dir
func NewRepository(dir string, log *slog.Logger) *Repository {
	return &Repository{
		dir:   dir,
		log:   log.With("component", "ArtifactRepository"),
		cache: make(map[string]*Artifact),
	}
}

// ProvideRepository creates the repository from the runtime config
func ProvideRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return NewRepository(cfg.ArtifactsDir, log)
}

// Load returns the artifact of ref. It looks for out/<File>.sol/<Name>.json
// (Foundry) and artifacts/<path>/<Name>.json (hardhat), then searches by name.
func (r *Repository) Load(ref domain.ArtifactRef) (*Artifact, error) {
	key := ref.String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.cache[key]; ok {
		return a, nil
	}

	path, err := r.locate(ref)
	if err != nil {
		return nil, err
	}
	a, err := parseFile(path, ref.Name)
	if err != nil {
		return nil, err
	}

	r.log.Debug("artifact loaded", "artifact", key, "path", path)
	r.cache[key] = a
	return a, nil
}

func (r *Repository) locate(ref domain.ArtifactRef) (string, error) {
	file := ref.Name + ".json"
	var candidates []string
	if ref.Path != "" {
		candidates = append(candidates,
			filepath.Join(r.dir, filepath.Base(ref.Path), file),
			filepath.Join(r.dir, ref.Path, file),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(r.dir, "*", file))
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	if len(matches) > 1 {
		r.log.Warn("artifact name is ambiguous, using first match", "artifact", ref.Name, "matches", matches)
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: artifact for %s under %s", domain.ErrNotFound, ref.String(), r.dir)
}

func parseFile(path, name string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	a.Name = name
	a.File = path
	return a, nil
}

// Parse decodes an artifact document
func Parse(data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}

	a := &Artifact{
		Name:           raw.ContractName,
		ABI:            parsed,
		LinkReferences: raw.LinkReferences,
	}

	var code string
	if err := json.Unmarshal(raw.Bytecode, &code); err != nil {
		var nested foundryBytecode
		if err := json.Unmarshal(raw.Bytecode, &nested); err != nil {
			return nil, fmt.Errorf("unrecognized bytecode field: %w", err)
		}
		code = nested.Object
		if len(nested.LinkReferences) > 0 {
			a.LinkReferences = nested.LinkReferences
		}
	}
	a.Bytecode = strings.TrimPrefix(code, "0x")
	if a.Bytecode == "" {
		return nil, errors.New("artifact has no bytecode (abstract contract or interface?)")
	}
	return a, nil
}

// LibraryNames returns the libraries that must be linked, sorted
func (a *Artifact) LibraryNames() []string {
	var names []string
	for _, libs := range a.LinkReferences {
		for name := range libs {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LibrarySource returns the source file declaring the library
func (a *Artifact) LibrarySource(library string) (string, bool) {
	for file, libs := range a.LinkReferences {
		if _, ok := libs[library]; ok {
			return file, true
		}
	}
	return "", false
}

// Link substitutes library addresses into the bytecode placeholders. Every
// referenced library must be given and every given library must be referenced.
func (a *Artifact) Link(libraries map[string]common.Address) ([]byte, error) {
	code := []byte(a.Bytecode)

	linked := make(map[string]bool, len(libraries))
	for _, libs := range a.LinkReferences {
		for name, refs := range libs {
			addr, ok := libraries[name]
			if !ok {
				return nil, fmt.Errorf("%s requires library %s", a.Name, name)
			}
			hexAddr := strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))
			for _, ref := range refs {
				start, end := ref.Start*2, (ref.Start+ref.Length)*2
				if ref.Length != common.AddressLength || end > len(code) {
					return nil, fmt.Errorf("%s has an invalid link reference for %s at %d", a.Name, name, ref.Start)
				}
				copy(code[start:end], hexAddr)
			}
			linked[name] = true
		}
	}
	for name := range libraries {
		if !linked[name] {
			return nil, fmt.Errorf("%s does not link library %s", a.Name, name)
		}
	}

	out, err := hex.DecodeString(string(code))
	if err != nil {
		return nil, fmt.Errorf("%s bytecode is not valid hex after linking: %w", a.Name, err)
	}
	return out, nil
}
