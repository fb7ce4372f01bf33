package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadEmbedded()
	require.NoError(t, err)
	return catalog
}

func TestLoadEmbeddedPutsBaseLanguageFirst(t *testing.T) {
	catalog := loadTestCatalog(t)

	codes := catalog.Codes()
	require.NotEmpty(t, codes)
	assert.Equal(t, BaseLanguage, codes[0])
	assert.ElementsMatch(t, []string{"en", "es", "fr", "pt-BR"}, codes)
}

func TestLookupUsesActiveBundle(t *testing.T) {
	catalog := loadTestCatalog(t)

	assert.Equal(t, "Paramètres", catalog.Lookup("nav.settings", "fr"))
	assert.Equal(t, "Settings", catalog.Lookup("nav.settings", "en"))
}

func TestLookupFallsBackToBaseLanguage(t *testing.T) {
	catalog := loadTestCatalog(t)

	assert.Equal(t, "Support inbox for agents", catalog.Lookup("app.tagline", "fr"))
}

func TestLookupMissingKeyReturnsKey(t *testing.T) {
	catalog := loadTestCatalog(t)

	assert.Equal(t, "missing_key", catalog.Lookup("missing_key", "fr"))
	assert.Equal(t, "missing_key", catalog.Lookup("missing_key", "xx"))
}

func TestLookupUnknownLanguageUsesBase(t *testing.T) {
	catalog := loadTestCatalog(t)

	assert.Equal(t, "Reports", catalog.Lookup("nav.reports", "de"))
}

func TestLookupRegionalBundleFallsBackToEnglish(t *testing.T) {
	catalog := loadTestCatalog(t)

	assert.Equal(t, "Conversas", catalog.Lookup("nav.conversations", "pt-BR"))
	assert.Equal(t, "Choose a language", catalog.Lookup("language.title", "pt-BR"))
}

func TestNormalize(t *testing.T) {
	catalog := loadTestCatalog(t)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "fr", want: "fr", ok: true},
		{in: " es ", want: "es", ok: true},
		{in: "pt_BR", want: "pt-BR", ok: true},
		{in: "fr-CA", want: "fr", ok: true},
		{in: "en-GB", want: "en", ok: true},
		{in: "ja", ok: false},
		{in: "", ok: false},
		{in: "not a tag", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := catalog.Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDetectFromEnv(t *testing.T) {
	catalog := loadTestCatalog(t)
	env := map[string]string{
		"LC_ALL": "C",
		"LANG":   "fr_FR.UTF-8",
	}

	code, ok := catalog.DetectFromEnv(func(name string) string { return env[name] })

	require.True(t, ok)
	assert.Equal(t, "fr", code)
}

func TestDetectFromEnvPrefersLCAll(t *testing.T) {
	catalog := loadTestCatalog(t)
	env := map[string]string{
		"LC_ALL":      "es_ES.UTF-8",
		"LC_MESSAGES": "fr_FR",
		"LANG":        "en_US.UTF-8",
	}

	code, ok := catalog.DetectFromEnv(func(name string) string { return env[name] })

	require.True(t, ok)
	assert.Equal(t, "es", code)
}

func TestDetectFromEnvNothingUsable(t *testing.T) {
	catalog := loadTestCatalog(t)

	_, ok := catalog.DetectFromEnv(func(string) string { return "POSIX" })

	assert.False(t, ok)
}

func TestLoadFromFSAcceptsComments(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.json": {Data: []byte(`// base
{"language": "en", "messages": {"hello": "Hello",},}`)},
	}

	catalog, err := LoadFromFS(fsys)

	require.NoError(t, err)
	assert.Equal(t, "Hello", catalog.Lookup("hello", "en"))
	bundle, ok := catalog.Bundle("en")
	require.True(t, ok)
	assert.Equal(t, "en", bundle.Name)
}

func TestLoadFromFSRejectsBadBundles(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"empty": {},
		"missing base": {
			"locales/fr.json": {Data: []byte(`{"language":"fr","messages":{}}`)},
		},
		"name mismatch": {
			"locales/en.json": {Data: []byte(`{"language":"en","messages":{}}`)},
			"locales/fr.json": {Data: []byte(`{"language":"es","messages":{}}`)},
		},
		"blank key": {
			"locales/en.json": {Data: []byte(`{"language":"en","messages":{" ":"x"}}`)},
		},
		"no messages": {
			"locales/en.json": {Data: []byte(`{"language":"en"}`)},
		},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFS(fsys)
			assert.Error(t, err)
		})
	}
}
