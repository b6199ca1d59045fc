// Package explain implements the matching-and-rendering core: an in-memory
// registry of explanation packs, a context analyzer that derives signals from
// the error's surroundings, a matcher that selects the best rule for an error,
// a template renderer, and the engine that orchestrates them behind a single
// Explain call.
package explain
