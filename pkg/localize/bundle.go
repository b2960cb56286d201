package localize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultTable is the table used by Localizer.Localize.
const DefaultTable = "Localizable"

// ErrNoLanguage is returned for a table file without a language field.
var ErrNoLanguage = errors.New("missing language")

// LoadError describes a table file that could not be loaded.
type LoadError struct {
	// File is the path of the file, empty for in-memory data.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// tableFile is the YAML layout of one language file.
type tableFile struct {
	Language string                       `yaml:"language"`
	Tables   map[string]map[string]string `yaml:"tables"`
}

// Bundle holds translation tables for a set of languages.
type Bundle struct {
	mu       sync.RWMutex
	fallback language.Tag
	tags     []language.Tag // fallback first, then in load order
	tables   map[language.Tag]map[string]map[string]string
	matcher  language.Matcher
}

// NewBundle creates an empty bundle. Lookups that match no loaded language
// use fallback.
func NewBundle(fallback language.Tag) *Bundle {
	b := &Bundle{
		fallback: fallback,
		tags:     []language.Tag{fallback},
		tables:   make(map[language.Tag]map[string]map[string]string),
	}
	b.matcher = language.NewMatcher(b.tags)
	return b
}

// Fallback returns the fallback language.
func (b *Bundle) Fallback() language.Tag {
	return b.fallback
}

// Languages returns the languages known to the bundle, fallback first.
func (b *Bundle) Languages() []language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]language.Tag, len(b.tags))
	copy(out, b.tags)
	return out
}

// LoadYAML merges one language file into the bundle. Entries already
// present for the same language and table are overwritten.
func (b *Bundle) LoadYAML(data []byte) error {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if f.Language == "" {
		return &LoadError{Message: "invalid table file", Cause: ErrNoLanguage}
	}
	tag, err := language.Parse(f.Language)
	if err != nil {
		return &LoadError{Message: fmt.Sprintf("invalid language %q", f.Language), Cause: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tables, ok := b.tables[tag]
	if !ok {
		tables = make(map[string]map[string]string)
		b.tables[tag] = tables
	}
	for name, entries := range f.Tables {
		table, ok := tables[name]
		if !ok {
			table = make(map[string]string, len(entries))
			tables[name] = table
		}
		for k, v := range entries {
			table[k] = v
		}
	}

	if !b.knows(tag) {
		b.tags = append(b.tags, tag)
		b.matcher = language.NewMatcher(b.tags)
	}
	return nil
}

// LoadFile loads a language file from disk.
func (b *Bundle) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	return withFile(b.LoadYAML(data), path)
}

// LoadFS loads every .yaml and .yml file in dir of fsys.
// Subdirectories are not searched.
func (b *Bundle) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return &LoadError{File: dir, Message: "failed to read directory", Cause: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		p := path.Join(dir, name)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return &LoadError{File: p, Message: "failed to read file", Cause: err}
		}
		if err := withFile(b.LoadYAML(data), p); err != nil {
			return err
		}
	}
	return nil
}

// Localizer returns a localizer for the best match of the preferred
// languages. Each preference may itself be a comma separated list with
// quality weights. With no usable preference the fallback is used.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, i := language.MatchStrings(b.matcher, prefs...)
	return newLocalizer(b, b.tags[i])
}

// lookup returns the template for key in table, trying tag and then the
// fallback language.
func (b *Bundle) lookup(tag language.Tag, table, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if s, ok := b.tables[tag][table][key]; ok {
		return s, true
	}
	if tag != b.fallback {
		if s, ok := b.tables[b.fallback][table][key]; ok {
			return s, true
		}
	}
	return "", false
}

func (b *Bundle) knows(tag language.Tag) bool {
	for _, t := range b.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func withFile(err error, file string) error {
	var le *LoadError
	if errors.As(err, &le) && le.File == "" {
		le.File = file
	}
	return err
}
