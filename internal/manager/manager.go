// Package manager installs, updates and removes explanation packs in the
// user pack directory, using the registry client as its source.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"qinter/internal/client"
	"qinter/internal/pack"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyInstalled is returned by Install when the pack exists locally
// and force was not requested.
var ErrAlreadyInstalled = errors.New("pack already installed")

// ErrNotInstalled is returned when an operation targets a pack that is not
// in the pack directory.
var ErrNotInstalled = errors.New("pack not installed")

// updateConcurrency bounds parallel registry requests during UpdateAll.
const updateConcurrency = 4

// InstalledPack summarizes one pack present in the pack directory.
type InstalledPack struct {
	Name        string
	Version     string
	Author      string
	Description string
	Path        string
	Rules       int
	Targets     []string
	Tags        []string
}

// Manager performs pack lifecycle operations against one pack directory.
type Manager struct {
	client *client.Client
	loader *pack.Loader
	dir    string
	logger *zap.Logger
}

// New returns a manager writing packs into dir.
func New(c *client.Client, loader *pack.Loader, dir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: c, loader: loader, dir: dir, logger: logger.Named("manager")}
}

// Install downloads a pack from the registry, validates it, and writes it
// into the pack directory. The write happens only after the downloaded
// content parsed and validated whole.
func (m *Manager) Install(ctx context.Context, name, version string, force bool) error {
	if m.IsInstalled(name) && !force {
		return fmt.Errorf("%w: %s", ErrAlreadyInstalled, name)
	}

	content, err := m.client.Download(ctx, name, version)
	if err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}

	p, err := m.loader.Parse([]byte(content))
	if err != nil {
		return fmt.Errorf("downloaded pack %s is invalid: %w", name, err)
	}
	if p.Metadata.Name != name {
		return fmt.Errorf("registry returned pack %q when %q was requested", p.Metadata.Name, name)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create pack directory: %w", err)
	}
	path := m.packPath(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write pack %s: %w", path, err)
	}

	m.logger.Info("installed pack",
		zap.String("pack", name),
		zap.String("version", p.Metadata.Version),
		zap.Int("rules", len(p.Rules)))
	return nil
}

// Uninstall removes a pack file from the pack directory.
func (m *Manager) Uninstall(name string) error {
	path := m.packPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove pack %s: %w", path, err)
	}
	m.logger.Info("uninstalled pack", zap.String("pack", name))
	return nil
}

// Update reinstalls a pack when the registry has a newer version than the
// local copy. It reports whether anything changed.
func (m *Manager) Update(ctx context.Context, name string) (bool, error) {
	current, err := m.InstalledVersion(name)
	if err != nil {
		return false, err
	}
	info, err := m.client.Info(ctx, name)
	if err != nil {
		return false, fmt.Errorf("query registry for %s: %w", name, err)
	}
	if info.Version == current {
		return false, nil
	}
	if err := m.Install(ctx, name, "latest", true); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateAll updates every installed pack with bounded concurrency. The
// returned map holds the per-pack outcome; the error covers setup failures
// only.
func (m *Manager) UpdateAll(ctx context.Context) (map[string]error, error) {
	installed, err := m.Installed()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string]error, len(installed))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(updateConcurrency)
	for _, ip := range installed {
		g.Go(func() error {
			_, uerr := m.Update(ctx, ip.Name)
			mu.Lock()
			results[ip.Name] = uerr
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Installed loads every pack in the pack directory and summarizes it.
func (m *Manager) Installed() ([]InstalledPack, error) {
	packs := m.loader.LoadDirectory(m.dir)
	out := make([]InstalledPack, 0, len(packs))
	for _, p := range packs {
		out = append(out, InstalledPack{
			Name:        p.Metadata.Name,
			Version:     p.Metadata.Version,
			Author:      p.Metadata.Author,
			Description: p.Metadata.Description,
			Path:        p.Path,
			Rules:       len(p.Rules),
			Targets:     p.Metadata.Targets,
			Tags:        p.Metadata.Tags,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// IsInstalled reports whether a pack file exists for name.
func (m *Manager) IsInstalled(name string) bool {
	_, err := os.Stat(m.packPath(name))
	return err == nil
}

// InstalledVersion returns the version of the locally installed pack.
func (m *Manager) InstalledVersion(name string) (string, error) {
	if !m.IsInstalled(name) {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	p, err := m.loader.Load(m.packPath(name))
	if err != nil {
		return "", err
	}
	return p.Metadata.Version, nil
}

// Dir returns the pack directory the manager operates on.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) packPath(name string) string {
	return filepath.Join(m.dir, name+".yaml")
}
