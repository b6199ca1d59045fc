package explain

import (
	"sync"

	"qinter/internal/pack"

	"go.uber.org/zap"
)

// PackSource supplies the engine with parsed packs. The loader in
// internal/pack implements it; tests substitute their own.
type PackSource interface {
	// Reset drops state from a previous load cycle, notably accumulated
	// validation errors. Called at the start of every initialization.
	Reset()
	// CorePacks returns the built-in packs.
	CorePacks() ([]*pack.Pack, error)
	// UserPacks returns packs from the configured pack directory. A
	// missing directory yields no packs and no error.
	UserPacks() ([]*pack.Pack, error)
	// ValidationErrors reports the pack-load failures accumulated during
	// the current load cycle.
	ValidationErrors() []string
}

// Statistics summarizes the engine's loaded state.
type Statistics struct {
	Packs            int
	Rules            int
	Categories       []string
	ValidationErrors []string
}

// Engine orchestrates registry, analyzer, matcher and renderer behind one
// Explain call. Construct it once and pass it to whatever captures errors;
// there is no package-level instance.
type Engine struct {
	mu       sync.RWMutex
	source   PackSource
	registry *Registry
	matcher  *Matcher
	renderer *Renderer
	logger   *zap.Logger

	initialized bool
}

// NewEngine returns an engine backed by source. A nil logger is replaced
// with a no-op logger.
func NewEngine(source PackSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("engine")
	registry := NewRegistry()
	return &Engine{
		source:   source,
		registry: registry,
		matcher:  NewMatcher(registry, NewAnalyzer(), logger),
		renderer: NewRenderer(),
		logger:   logger,
	}
}

// Initialize loads core and user packs into the registry. It is idempotent:
// a second call while initialized is a no-op. Initialization completes even
// when zero rules load; callers then always get "no explanation available".
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initializeLocked()
}

func (e *Engine) initializeLocked() {
	if e.initialized {
		return
	}
	e.source.Reset()

	core, err := e.source.CorePacks()
	if err != nil {
		e.logger.Warn("loading core packs failed", zap.Error(err))
	}
	for _, p := range core {
		e.registry.Register(p)
	}

	user, err := e.source.UserPacks()
	if err != nil {
		e.logger.Warn("loading user packs failed", zap.Error(err))
	}
	for _, p := range user {
		e.registry.Register(p)
	}

	e.initialized = true
	e.logger.Info("explanation engine initialized",
		zap.Int("core_packs", len(core)),
		zap.Int("user_packs", len(user)),
		zap.Int("rules", e.registry.RuleCount()))
}

// Explain returns the rendered explanation for an error, or ok=false when no
// rule matches. Any internal failure during matching or rendering is
// absorbed into an absent result: an explainer must never interfere with the
// error it is explaining.
func (e *Engine) Explain(category, message string, ctx ErrorContext) (expl *Explanation, ok bool) {
	e.mu.Lock()
	e.initializeLocked()
	e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during explanation", zap.Any("panic", r))
			expl, ok = nil, false
		}
	}()

	e.mu.RLock()
	defer e.mu.RUnlock()

	match, found := e.matcher.FindBest(category, message, ctx)
	if !found {
		return nil, false
	}

	rendered, err := e.renderer.Render(match)
	if err != nil {
		e.logger.Warn("rendering failed",
			zap.String("rule", match.Rule.ID),
			zap.String("pack", match.Pack.Metadata.Name),
			zap.Error(err))
		return nil, false
	}
	return rendered, true
}

// ReloadPacks clears the registry and re-initializes from the pack source.
func (e *Engine) ReloadPacks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialized = false
	e.registry.Clear()
	e.initializeLocked()
}

// Statistics reports the currently loaded packs, rules, covered categories
// and accumulated pack-validation errors.
func (e *Engine) Statistics() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Statistics{
		Packs:            e.registry.Len(),
		Rules:            e.registry.RuleCount(),
		Categories:       e.registry.Categories(),
		ValidationErrors: e.source.ValidationErrors(),
	}
}
