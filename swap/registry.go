package swap

// Registry is the static catalog of providers. Declaration order is
// significant: it is the tie-break order for quote selection and is stable
// across runs for a fixed configuration.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// All returns the providers in declaration order.
func (r *Registry) All() []Provider {
	return r.providers
}

// ByID returns the provider with the given identifier, nil if absent.
func (r *Registry) ByID(id ProviderID) Provider {
	for _, p := range r.providers {
		if p.Provider().ID == id {
			return p
		}
	}
	return nil
}

func modeMatches(t ProviderType, from, to Chain) bool {
	switch t.Mode {
	case ModeOnChain:
		return from == to
	case ModeCrossChain, ModeBridge:
		return from != to
	case ModeOmniChain:
		if from != to {
			return true
		}
		for _, c := range t.OmniChains {
			if c == from {
				return true
			}
		}
		return false
	}
	return false
}

func chainsCover(supported []Chain, from, to Chain) bool {
	var hasFrom, hasTo bool
	for _, c := range supported {
		if c == from {
			hasFrom = true
		}
		if c == to {
			hasTo = true
		}
	}
	return hasFrom && hasTo
}

// Covered reports whether any provider can route the chain pair, regardless
// of caller preferences.
func (r *Registry) Covered(from, to Chain) bool {
	for _, p := range r.providers {
		if modeMatches(p.Provider(), from, to) && chainsCover(p.SupportedChains(), from, to) {
			return true
		}
	}
	return false
}

// Eligible returns the providers able to serve a swap between the two chains.
// With no preferences the result follows registry declaration order;
// otherwise it is filtered to the preferred set in the order the caller gave.
func (r *Registry) Eligible(from, to Chain, preferred []ProviderID) []Provider {
	var matched []Provider
	for _, p := range r.providers {
		t := p.Provider()
		if !modeMatches(t, from, to) {
			continue
		}
		if !chainsCover(p.SupportedChains(), from, to) {
			continue
		}
		matched = append(matched, p)
	}

	if len(preferred) == 0 {
		return matched
	}

	var filtered []Provider
	for _, id := range preferred {
		for _, p := range matched {
			if p.Provider().ID == id {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}
