package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultFile = "messages.en.yaml"

//go:embed messages.en.yaml
var defaultFiles embed.FS

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrDuplicateKey    = errors.New("duplicate message key")
)

// Catalog holds message templates under flattened dot keys, e.g. "game.won".
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// New loads the embedded messages and then the *.yaml / *.yml files of overrideDir, if set.
func New(overrideDir string) (*Catalog, error) {
	catalog := &Catalog{
		templates: make(map[string]*template.Template),
	}

	raw, err := defaultFiles.ReadFile(defaultFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded messages: %w", err)
	}

	if err = catalog.apply(raw); err != nil {
		return nil, fmt.Errorf("failed to load embedded messages: %w", err)
	}

	if strings.TrimSpace(overrideDir) == "" {
		return catalog, nil
	}

	if err = catalog.applyDir(overrideDir); err != nil {
		return nil, fmt.Errorf("failed to load messages from %s: %w", overrideDir, err)
	}

	return catalog, nil
}

// MustNew panics if the embedded messages are broken.
func MustNew() *Catalog {
	catalog, err := New("")
	if err != nil {
		panic(err)
	}

	return catalog
}

// Render executes the template stored under key. Missing template fields are errors.
func (that *Catalog) Render(key string, data any) (string, error) {
	that.mu.RLock()
	tpl, ok := that.templates[strings.TrimSpace(key)]
	that.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMessageNotFound, key)
	}

	var out strings.Builder
	if err := tpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", key, err)
	}

	return out.String(), nil
}

// Keys returns every loaded key in sorted order.
func (that *Catalog) Keys() []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	keys := make([]string, 0, len(that.templates))
	for key := range that.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func (that *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	// an override key may appear in one file only
	owners := make(map[string]string)
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		flat, err := flatten(raw)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for key := range flat {
			if owner, ok := owners[key]; ok {
				return fmt.Errorf("%w %q in %s and %s", ErrDuplicateKey, key, owner, name)
			}
			owners[key] = name
		}

		if err = that.store(flat); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func (that *Catalog) apply(raw []byte) error {
	flat, err := flatten(raw)
	if err != nil {
		return err
	}

	return that.store(flat)
}

func (that *Catalog) store(flat map[string]string) error {
	parsed := make(map[string]*template.Template, len(flat))
	for key, text := range flat {
		tpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", key, err)
		}
		parsed[key] = tpl
	}

	that.mu.Lock()
	for key, tpl := range parsed {
		that.templates[key] = tpl
	}
	that.mu.Unlock()

	return nil
}

func flatten(raw []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	flat := make(map[string]string)
	if err := flattenNode(tree, "", flat); err != nil {
		return nil, err
	}

	return flat, nil
}

func flattenNode(node any, prefix string, out map[string]string) error {
	switch value := node.(type) {
	case map[string]any:
		for key, child := range value {
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flattenNode(child, key, out); err != nil {
				return err
			}
		}
	case string:
		if prefix == "" {
			return errors.New("message without a key")
		}
		out[prefix] = value
	case nil:
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, value)
	}

	return nil
}
