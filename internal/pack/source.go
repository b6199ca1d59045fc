package pack

// Source adapts a Loader and a user pack directory to the engine's pack
// source contract: embedded packs are the core set, the directory supplies
// user-installed packs.
type Source struct {
	loader *Loader
	dir    string
}

// NewSource returns a Source loading user packs from dir. An empty dir
// disables user packs.
func NewSource(loader *Loader, dir string) *Source {
	return &Source{loader: loader, dir: dir}
}

// Reset starts a fresh load cycle.
func (s *Source) Reset() {
	s.loader.ClearValidationErrors()
}

// CorePacks returns the packs baked into the binary.
func (s *Source) CorePacks() ([]*Pack, error) {
	return s.loader.LoadEmbedded()
}

// UserPacks loads the user pack directory. Absence of the directory is not
// an error.
func (s *Source) UserPacks() ([]*Pack, error) {
	if s.dir == "" {
		return nil, nil
	}
	return s.loader.LoadDirectory(s.dir), nil
}

// ValidationErrors reports load failures from the current cycle.
func (s *Source) ValidationErrors() []string {
	return s.loader.ValidationErrors()
}
