// Package config resolves the settings of the shadowtree CLI from an
// optional shadow.yaml and the enclosing Go module.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/shadow/pkg/shadowtree"
)

// FileName is the name of the optional configuration file.
const FileName = "shadow.yaml"

// ProtocolVersion is the tree protocol this build implements. A config that
// requires a newer major or minor version is rejected.
const ProtocolVersion = "v1.2.0"

// Config represents the optional shadow.yaml configuration.
type Config struct {
	Surface  SurfaceConfig  `yaml:"surface"`
	Tree     TreeConfig     `yaml:"tree"`
	Debug    DebugConfig    `yaml:"debug"`
	Protocol ProtocolConfig `yaml:"protocol"`
}

// SurfaceConfig names the surface the tree renders into.
type SurfaceConfig struct {
	Name string `yaml:"name,omitempty"`
	ID   int32  `yaml:"id,omitempty"`
}

// TreeConfig tunes tree commits.
type TreeConfig struct {
	MaxAttempts   int  `yaml:"maxAttempts,omitempty"`
	ProgressState bool `yaml:"progressState,omitempty"`
}

// DebugConfig configures the inspector.
type DebugConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// ProtocolConfig pins the tree protocol a project expects.
type ProtocolConfig struct {
	Version string `yaml:"version,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root            string
	ModulePath      string
	SurfaceName     string
	SurfaceID       int32
	MaxAttempts     int
	ProgressState   bool
	DebugAddr       string
	ProtocolVersion string
}

// TreeOptions returns the tree options the configuration selects.
func (r *Resolved) TreeOptions() shadowtree.Options {
	return shadowtree.Options{
		MaxAttempts:   r.MaxAttempts,
		ProgressState: r.ProgressState,
	}
}

// LoadOptional reads shadow.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads shadow.yaml (if present) and resolves defaults. dir need not
// be a Go module; without go.mod the surface name falls back to the
// directory name.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	surfaceName := strings.TrimSpace(cfg.Surface.Name)
	if surfaceName == "" {
		surfaceName = defaultSurfaceName(modulePath, dir)
	}

	surfaceID := cfg.Surface.ID
	if surfaceID == 0 {
		surfaceID = 1
	}
	if surfaceID < 0 {
		return nil, fmt.Errorf("surface.id must be positive (got %d)", surfaceID)
	}

	maxAttempts := cfg.Tree.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = shadowtree.DefaultMaxAttempts
	}
	if maxAttempts < 0 {
		return nil, fmt.Errorf("tree.maxAttempts must be positive (got %d)", maxAttempts)
	}

	debugAddr := strings.TrimSpace(cfg.Debug.Addr)
	if debugAddr == "" {
		debugAddr = "127.0.0.1:9339"
	}

	protocol, err := resolveProtocol(cfg.Protocol.Version)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:            dir,
		ModulePath:      modulePath,
		SurfaceName:     surfaceName,
		SurfaceID:       surfaceID,
		MaxAttempts:     maxAttempts,
		ProgressState:   cfg.Tree.ProgressState,
		DebugAddr:       debugAddr,
		ProtocolVersion: protocol,
	}, nil
}

// FindProjectRoot walks up from the current directory to find shadow.yaml
// or go.mod, returning the current directory if neither exists.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := start; ; {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultSurfaceName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "surface"
	}
	return base
}

// resolveProtocol normalizes a requested protocol version and checks that
// this build can serve it.
func resolveProtocol(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return ProtocolVersion, nil
	}
	if !strings.HasPrefix(requested, "v") {
		requested = "v" + requested
	}
	if !semver.IsValid(requested) {
		return "", fmt.Errorf("protocol.version %q is not a semantic version", requested)
	}
	if semver.Major(requested) != semver.Major(ProtocolVersion) {
		return "", fmt.Errorf("protocol.version %s is incompatible with %s", requested, ProtocolVersion)
	}
	if semver.Compare(semver.MajorMinor(requested), semver.MajorMinor(ProtocolVersion)) > 0 {
		return "", fmt.Errorf("protocol.version %s is newer than %s", requested, ProtocolVersion)
	}
	return semver.Canonical(requested), nil
}
