package equipment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupConsoleKnown(t *testing.T) {
	for _, tc := range []struct {
		name       string
		wantName   string
		deEsser    bool
		dynamicEQ  bool
		wantTier   float64
		wantEQBand int
	}{
		{"Yamaha CL5", "Yamaha CL", true, true, 1.0, 8},
		{"YAMAHA QL1", "Yamaha QL", true, false, 0.8, 8},
		{"Allen & Heath SQ-6", "Allen & Heath SQ", true, false, 0.7, 4},
		{"Behringer X32 Compact", "Behringer X32", false, false, 0.5, 4},
	} {
		p := lookupConsole(tc.name)
		assert.True(t, p.Known, tc.name)
		assert.Equal(t, tc.wantName, p.Name)
		assert.Equal(t, tc.deEsser, p.HasDeEsser)
		assert.Equal(t, tc.dynamicEQ, p.HasDynamicEQ)
		assert.Equal(t, tc.wantTier, p.Tier)
		assert.Equal(t, tc.wantEQBand, p.EQBands)
	}
}

func TestLookupConsoleUnknown(t *testing.T) {
	p := lookupConsole("Mystery Desk 3000")
	assert.False(t, p.Known)
	assert.Equal(t, 4, p.EQBands)
	assert.Equal(t, 0.5, p.Tier)
}

func TestLookupPA(t *testing.T) {
	jbl := lookupPA("JBL VTX A8")
	assert.True(t, jbl.Known)
	assert.Equal(t, 50.0, jbl.LowExtensionHz)
	assert.Equal(t, 2.0, jbl.Brightness)

	db := lookupPA("d&b audiotechnik Y-Series")
	assert.Equal(t, 45.0, db.LowExtensionHz)

	unknown := lookupPA("house rig")
	assert.False(t, unknown.Known)
	assert.Equal(t, 50.0, unknown.LowExtensionHz)
	assert.Equal(t, 18000.0, unknown.HighExtensionHz)
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Console(_ context.Context, name string) (ConsoleProfile, error) {
	c.calls++
	return lookupConsole(name), nil
}

func (c *countingProvider) PA(_ context.Context, name string) (PAProfile, error) {
	c.calls++
	return lookupPA(name), nil
}

func TestCachingProviderMemoizes(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner)
	ctx := context.Background()

	first, err := p.Console(ctx, "Yamaha CL5")
	require.NoError(t, err)
	second, err := p.Console(ctx, "yamaha cl5")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "normalized names share a cache entry")
}

type failingProvider struct{}

func (failingProvider) Console(context.Context, string) (ConsoleProfile, error) {
	return ConsoleProfile{}, errors.New("boom")
}

func (failingProvider) PA(context.Context, string) (PAProfile, error) {
	return PAProfile{}, errors.New("boom")
}

func TestCachingProviderDoesNotCacheErrors(t *testing.T) {
	p := NewCachingProvider(failingProvider{})
	_, err := p.Console(context.Background(), "Yamaha CL5")
	assert.Error(t, err)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "equipment.yaml")
	content := `
consoles:
  - match: dlive
    name: Allen & Heath dLive
    eq_bands: 8
    has_de_esser: true
    has_dynamic_eq: true
    tier: 1.0
pa_systems:
  - match: funktion
    name: Funktion-One
    low_extension_hz: 40
    high_extension_hz: 20000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	o, err := LoadOverlay(path)
	require.NoError(t, err)

	p := NewStaticProviderWithOverlay(o)
	ctx := context.Background()

	console, err := p.Console(ctx, "A&H dLive S5000")
	require.NoError(t, err)
	assert.Equal(t, "Allen & Heath dLive", console.Name)
	assert.True(t, console.HasDynamicEQ)
	assert.True(t, console.Known)

	pa, err := p.PA(ctx, "Funktion-One Evo 7")
	require.NoError(t, err)
	assert.Equal(t, 40.0, pa.LowExtensionHz)

	// Built-in tables still work underneath the overlay.
	builtin, err := p.Console(ctx, "X32")
	require.NoError(t, err)
	assert.Equal(t, "Behringer X32", builtin.Name)
}

func TestLoadOverlayMissingFile(t *testing.T) {
	o, err := LoadOverlay(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, o.Consoles)
}

func TestRemoteProviderFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, NewStaticProvider())
	console, err := p.Console(context.Background(), "Yamaha CL5")
	require.NoError(t, err)
	assert.Equal(t, "Yamaha CL", console.Name)
}

func TestRemoteProviderFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/consoles", r.URL.Path)
		assert.Equal(t, "DiGiCo SD12", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"DiGiCo SD12","eq_bands":8,"has_de_esser":true,"has_dynamic_eq":true,"tier":1.0}`))
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, NewStaticProvider())
	console, err := p.Console(context.Background(), "DiGiCo SD12")
	require.NoError(t, err)
	assert.Equal(t, "DiGiCo SD12", console.Name)
	assert.True(t, console.Known)
	assert.True(t, console.HasDynamicEQ)
}
