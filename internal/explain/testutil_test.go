package explain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"qinter/internal/pack"
)

// packYAML wraps rule YAML with the metadata boilerplate a valid pack needs.
func packYAML(name string, rules string) string {
	return fmt.Sprintf(`metadata:
  name: %s
  version: "1.0.0"
  description: "test pack"
  author: "tester"
  license: "MIT"
  qinter_version: ">=0.2.0"
explanations:
%s`, name, rules)
}

func mustPack(t *testing.T, name, rules string) *pack.Pack {
	t.Helper()
	p, err := pack.NewLoader(nil).Parse([]byte(packYAML(name, rules)))
	require.NoError(t, err)
	return p
}

// fakeSource feeds fixed packs to the engine.
type fakeSource struct {
	core    []*pack.Pack
	user    []*pack.Pack
	errs    []string
	coreErr error
	resets  int
}

func (f *fakeSource) Reset() { f.resets++ }

func (f *fakeSource) CorePacks() ([]*pack.Pack, error) { return f.core, f.coreErr }

func (f *fakeSource) UserPacks() ([]*pack.Pack, error) { return f.user, nil }

func (f *fakeSource) ValidationErrors() []string { return f.errs }
