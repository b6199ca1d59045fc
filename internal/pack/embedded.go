package pack

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Core packs baked into the binary so the engine works with no pack
// directory configured.
//
//go:embed packs
var embeddedPacks embed.FS

// LoadEmbedded parses the built-in core packs. Embedded packs go through the
// same schema validation as user packs; a failure here is a build defect and
// is returned rather than recorded.
func (l *Loader) LoadEmbedded() ([]*Pack, error) {
	var names []string
	err := fs.WalkDir(embeddedPacks, "packs", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk embedded packs: %w", err)
	}
	sort.Strings(names)

	packs := make([]*Pack, 0, len(names))
	for _, name := range names {
		data, err := embeddedPacks.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded pack %s: %w", name, err)
		}
		p, err := l.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded pack %s: %w", name, err)
		}
		p.Path = "embedded:" + name
		packs = append(packs, p)
		l.logger.Debug("loaded embedded pack",
			zap.String("pack", p.Metadata.Name),
			zap.Int("rules", len(p.Rules)))
	}
	return packs, nil
}
