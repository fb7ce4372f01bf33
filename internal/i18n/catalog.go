// Package i18n loads the per-language message bundles shipped with the shell
// and tracks the language the agent is working in.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"golang.org/x/text/language"
)

// BaseLanguage is consulted whenever the active bundle lacks a key.
const BaseLanguage = "en"

//go:embed locales/*.json
var embeddedLocalesFS embed.FS

type bundleFile struct {
	Language string            `json:"language"`
	Name     string            `json:"name"`
	Messages map[string]string `json:"messages"`
}

// Bundle is one language's messages. It is immutable after load.
type Bundle struct {
	Code     string
	Name     string
	Tag      language.Tag
	messages map[string]string
}

// Catalog holds every bundle loaded at startup.
type Catalog struct {
	bundles map[string]*Bundle
	codes   []string
	matcher language.Matcher
}

// LoadEmbedded loads the bundles compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedLocalesFS)
}

// LoadFromFS loads locales/*.json from fsys. Bundles may carry comments and
// trailing commas.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locale bundles: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale bundles found")
	}
	sort.Strings(paths)

	catalog := &Catalog{bundles: map[string]*Bundle{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", p, err)
		}
		bundle, err := parseBundle(p, data)
		if err != nil {
			return nil, err
		}
		if _, exists := catalog.bundles[bundle.Code]; exists {
			return nil, fmt.Errorf("bundle %s: language %q already defined", p, bundle.Code)
		}
		catalog.bundles[bundle.Code] = bundle
		catalog.codes = append(catalog.codes, bundle.Code)
	}

	if !catalog.Has(BaseLanguage) {
		return nil, fmt.Errorf("base language %s is not defined in bundles", BaseLanguage)
	}

	// The base language goes first so the matcher prefers it on ties.
	sort.SliceStable(catalog.codes, func(i, j int) bool {
		if catalog.codes[i] == BaseLanguage {
			return true
		}
		if catalog.codes[j] == BaseLanguage {
			return false
		}
		return catalog.codes[i] < catalog.codes[j]
	})
	tags := make([]language.Tag, 0, len(catalog.codes))
	for _, code := range catalog.codes {
		tags = append(tags, catalog.bundles[code].Tag)
	}
	catalog.matcher = language.NewMatcher(tags)
	return catalog, nil
}

func parseBundle(p string, data []byte) (*Bundle, error) {
	var file bundleFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", p, err)
	}

	codeFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
	code := strings.TrimSpace(file.Language)
	if code == "" {
		return nil, fmt.Errorf("bundle %s: language is required", p)
	}
	if code != codeFromPath {
		return nil, fmt.Errorf("bundle %s: language %q must match file name %q", p, code, codeFromPath)
	}
	tag, err := language.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: parse language %q: %w", p, code, err)
	}
	if file.Messages == nil {
		return nil, fmt.Errorf("bundle %s: messages map is required", p)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return nil, fmt.Errorf("bundle %s: message key cannot be blank", p)
		}
		messages[trimmed] = value
	}

	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = code
	}
	return &Bundle{Code: code, Name: name, Tag: tag, messages: messages}, nil
}

// Has reports whether a bundle exists for code exactly.
func (c *Catalog) Has(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.bundles[strings.TrimSpace(code)]
	return ok
}

// Codes returns the bundled language codes, base language first.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.codes...)
}

// Bundle returns the bundle for code.
func (c *Catalog) Bundle(code string) (*Bundle, bool) {
	if c == nil {
		return nil, false
	}
	bundle, ok := c.bundles[strings.TrimSpace(code)]
	return bundle, ok
}

// Normalize maps any BCP 47 or POSIX-ish language code onto a bundled code.
// The bool is false when no bundle is a reasonable match.
func (c *Catalog) Normalize(code string) (string, bool) {
	if c == nil {
		return "", false
	}
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", false
	}
	if _, ok := c.bundles[code]; ok {
		return code, true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return c.codes[index], true
}

// Lookup returns the message for key in code. It falls back to the parent
// language bundle, then the base language, then the key itself.
func (c *Catalog) Lookup(key, code string) string {
	if value, ok := c.Message(key, code); ok {
		return value
	}
	return strings.TrimSpace(key)
}

// Message is Lookup without the key fallback.
func (c *Catalog) Message(key, code string) (string, bool) {
	key = strings.TrimSpace(key)
	if c == nil || key == "" {
		return "", false
	}
	for _, candidate := range c.fallbackChain(code) {
		if bundle, ok := c.bundles[candidate]; ok {
			if value, exists := bundle.messages[key]; exists {
				return value, true
			}
		}
	}
	return "", false
}

func (c *Catalog) fallbackChain(code string) []string {
	code = strings.TrimSpace(code)
	chain := make([]string, 0, 3)
	if code != "" {
		chain = append(chain, code)
		if tag, err := language.Parse(code); err == nil {
			if base, confidence := tag.Base(); confidence != language.No && base.String() != code {
				chain = append(chain, base.String())
			}
		}
	}
	if code != BaseLanguage {
		chain = append(chain, BaseLanguage)
	}
	return chain
}
