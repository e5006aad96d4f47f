package equipment

import (
	"context"
	"sync"
)

// Provider resolves equipment names to profiles. Resolution always
// succeeds with at least a default profile; an error indicates the
// provider itself failed, not that the equipment is unknown.
type Provider interface {
	Console(ctx context.Context, name string) (ConsoleProfile, error)
	PA(ctx context.Context, name string) (PAProfile, error)
}

// StaticProvider resolves against the built-in tables plus any overlay
// entries loaded at construction.
type StaticProvider struct {
	overlayConsoles []struct {
		key     string
		profile ConsoleProfile
	}
	overlayPAs []struct {
		key     string
		profile PAProfile
	}
}

// NewStaticProvider resolves from the built-in tables alone.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (p *StaticProvider) Console(_ context.Context, name string) (ConsoleProfile, error) {
	n := normalize(name)
	for _, e := range p.overlayConsoles {
		if n != "" && containsKey(n, e.key) {
			return e.profile, nil
		}
	}
	return lookupConsole(name), nil
}

func (p *StaticProvider) PA(_ context.Context, name string) (PAProfile, error) {
	n := normalize(name)
	for _, e := range p.overlayPAs {
		if n != "" && containsKey(n, e.key) {
			return e.profile, nil
		}
	}
	return lookupPA(name), nil
}

// CachingProvider memoizes another provider by normalized name. Entries
// are never evicted; equipment profiles are small and stable for the
// lifetime of a run.
type CachingProvider struct {
	inner Provider

	mu       sync.Mutex
	consoles map[string]ConsoleProfile
	pas      map[string]PAProfile
}

func NewCachingProvider(inner Provider) *CachingProvider {
	return &CachingProvider{
		inner:    inner,
		consoles: make(map[string]ConsoleProfile),
		pas:      make(map[string]PAProfile),
	}
}

func (p *CachingProvider) Console(ctx context.Context, name string) (ConsoleProfile, error) {
	key := normalize(name)
	p.mu.Lock()
	cached, ok := p.consoles[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	profile, err := p.inner.Console(ctx, name)
	if err != nil {
		return ConsoleProfile{}, err
	}
	p.mu.Lock()
	p.consoles[key] = profile
	p.mu.Unlock()
	return profile, nil
}

func (p *CachingProvider) PA(ctx context.Context, name string) (PAProfile, error) {
	key := normalize(name)
	p.mu.Lock()
	cached, ok := p.pas[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	profile, err := p.inner.PA(ctx, name)
	if err != nil {
		return PAProfile{}, err
	}
	p.mu.Lock()
	p.pas[key] = profile
	p.mu.Unlock()
	return profile, nil
}
