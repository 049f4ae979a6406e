package provider

import (
	"sort"

	"ludex/internal/romid"
)

// Registry holds providers in a fixed registration order, one per console
// family. It is built once at startup and read-only thereafter.
type Registry struct {
	providers []Provider
	bySystem  map[string]Provider
}

// NewRegistry constructs a registry with the default provider set. The
// registration order doubles as the tie-break order for content-scoped
// resolution and must stay stable.
func NewRegistry(source romid.ByteSource) *Registry {
	r := &Registry{bySystem: map[string]Provider{}}
	for _, p := range []Provider{
		NewPS2(source),
		NewPSX(source),
		NewSwitch(source),
		NewGameCube(source),
		NewWii(source),
		NewN3DS(source),
		NewPSP(source),
		NewPS3(source),
	} {
		r.Register(p)
	}
	return r
}

// Register appends a provider; a duplicate system id replaces the earlier
// registration in place.
func (r *Registry) Register(p Provider) {
	if existing, ok := r.bySystem[p.SystemID()]; ok {
		for i, candidate := range r.providers {
			if candidate == existing {
				r.providers[i] = p
				break
			}
		}
		r.bySystem[p.SystemID()] = p
		return
	}
	r.providers = append(r.providers, p)
	r.bySystem[p.SystemID()] = p
}

// BySystem resolves a provider by console-family id. Used by the scanner,
// which derives the id from the top-level directory name.
func (r *Registry) BySystem(systemID string) (Provider, bool) {
	p, ok := r.bySystem[systemID]
	return p, ok
}

// ForFile resolves a provider for a standalone file by extension. When
// several families share the extension, candidates are probed with
// ValidateFile in registration order; if none validates, the first candidate
// is returned as a deterministic fallback. Returns nil only when no provider
// supports the extension.
func (r *Registry) ForFile(path string) Provider {
	var candidates []Provider
	for _, p := range r.providers {
		if supportsExtension(p, path) {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	for _, p := range candidates {
		if p.ValidateFile(path) {
			return p
		}
	}
	return candidates[0]
}

// Systems returns the sorted list of registered console-family ids.
func (r *Registry) Systems() []string {
	ids := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		ids = append(ids, p.SystemID())
	}
	sort.Strings(ids)
	return ids
}

// Providers returns providers in registration order.
func (r *Registry) Providers() []Provider {
	return r.providers
}
