// Package i18n provides the translated strings of the terminal client.
//
// Catalogs are nested JSON files under locales/, one per language, whose
// leaves are flattened to dotted keys such as "todos.createTodo". Values are
// fmt-style formats.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*.json
var embedded embed.FS

// Base is the language used when nothing better matches.
var Base = language.English

var supported = []language.Tag{language.English, language.Vietnamese}

var matcher = language.NewMatcher(supported)

// Supported returns the languages with a catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match returns the supported language for code. The bool is false when
// code is unparsable or nothing matches, in which case Base is returned.
func Match(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Base, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Base, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Base, false
	}
	return supported[idx], true
}

// Bundle holds the loaded catalogs.
type Bundle struct {
	builder  *catalog.Builder
	messages map[language.Tag]map[string]string
	defined  map[language.Tag][]string
}

// Load reads the embedded catalogs.
func Load() (*Bundle, error) {
	return LoadFS(embedded)
}

// LoadFS reads catalogs named locales/<lang>.json from fsys. The base
// language must be present.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	files, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	sort.Strings(files)

	b := &Bundle{
		builder:  catalog.NewBuilder(catalog.Fallback(Base)),
		messages: make(map[language.Tag]map[string]string),
		defined:  make(map[language.Tag][]string),
	}
	for _, f := range files {
		code := strings.TrimSuffix(path.Base(f), ".json")
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", f, err)
		}

		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", f, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", f, err)
		}

		msgs := make(map[string]string)
		if err := flatten("", tree, msgs); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", f, err)
		}
		b.messages[tag] = msgs
		b.defined[tag] = sortedKeys(msgs)
	}

	base, ok := b.messages[Base]
	if !ok {
		return nil, fmt.Errorf("base language %s has no catalog", Base)
	}
	for tag, msgs := range b.messages {
		for key, value := range base {
			if _, ok := msgs[key]; !ok {
				msgs[key] = value
			}
		}
		for key, value := range msgs {
			if err := b.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", tag, key, err)
			}
		}
	}
	return b, nil
}

// MustLoad is Load for package-level initialisation.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: value must be a string or an object", key)
		}
	}
	return nil
}

// Keys returns the sorted keys the catalog of tag defines itself, without
// the ones inherited from the base language.
func (b *Bundle) Keys(tag language.Tag) []string {
	return append([]string(nil), b.defined[tag]...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Printer returns a Printer for tag. Keys missing from tag fall back to the
// base language.
func (b *Bundle) Printer(tag language.Tag) *Printer {
	return &Printer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}

// Printer renders catalog messages in one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

func (p *Printer) Language() language.Tag {
	return p.tag
}

// T renders the message under key with args.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// LanguageName is the localized display name of tag.
func (p *Printer) LanguageName(tag language.Tag) string {
	switch tag {
	case language.Vietnamese:
		return p.T("language.vietnamese")
	default:
		return p.T("language.english")
	}
}
