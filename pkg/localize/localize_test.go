package localize

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const germanYAML = `
language: de
tables:
  Localizable:
    "Hello": "Hallo"
    "observer %d cancelled": "Beobachter %d abgemeldet"
  Errors:
    "not bound": "nicht gebunden"
`

const englishYAML = `
language: en
tables:
  Localizable:
    "Hello": "Hello there"
    "only in english": "English only"
`

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b := NewBundle(language.English)
	require.NoError(t, b.LoadYAML([]byte(englishYAML)))
	require.NoError(t, b.LoadYAML([]byte(germanYAML)))
	return b
}

func TestLanguages(t *testing.T) {
	b := newTestBundle(t)
	assert.Equal(t, []language.Tag{language.English, language.German}, b.Languages())
	assert.Equal(t, language.English, b.Fallback())
}

func TestLocalizerMatching(t *testing.T) {
	b := newTestBundle(t)

	tests := []struct {
		name  string
		prefs []string
		want  language.Tag
	}{
		{"Exact", []string{"de"}, language.German},
		{"Region", []string{"de-AT"}, language.German},
		{"AcceptLanguage", []string{"fr;q=0.9, de;q=0.8"}, language.German},
		{"Unsupported", []string{"ja"}, language.English},
		{"None", nil, language.English},
		{"Garbage", []string{"!!"}, language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := b.Localizer(tt.prefs...)
			assert.Equal(t, tt.want, l.Language())
		})
	}
}

func TestLocalize(t *testing.T) {
	b := newTestBundle(t)
	de := b.Localizer("de")
	en := b.Localizer("en")

	assert.Equal(t, "Hallo", de.Localize("Hello"))
	assert.Equal(t, "Hello there", en.Localize("Hello"))

	t.Run("Args", func(t *testing.T) {
		assert.Equal(t, "Beobachter 7 abgemeldet", de.Localize("observer %d cancelled", 7))
		assert.Equal(t, "observer 7 cancelled", en.Localize("observer %d cancelled", 7))
	})

	t.Run("NoArgsKeepsVerbs", func(t *testing.T) {
		assert.Equal(t, "observer %d cancelled", en.Localize("observer %d cancelled"))
	})

	t.Run("FallbackLanguage", func(t *testing.T) {
		assert.Equal(t, "English only", de.Localize("only in english"))
	})

	t.Run("MissingKey", func(t *testing.T) {
		assert.Equal(t, "no such key", de.Localize("no such key"))
		assert.Equal(t, "value x", de.Localize("value %s", "x"))
	})

	t.Run("Table", func(t *testing.T) {
		assert.Equal(t, "nicht gebunden", de.LocalizeTable("Errors", "not bound"))
		assert.Equal(t, "not bound", de.Localize("not bound"), "default table does not see other tables")
		assert.Equal(t, "not bound", en.LocalizeTable("Errors", "not bound"))
	})
}

func TestLoadYAMLMerges(t *testing.T) {
	b := newTestBundle(t)
	require.NoError(t, b.LoadYAML([]byte(`
language: de
tables:
  Localizable:
    "Hello": "Servus"
    "Bye": "Tschüss"
`)))

	de := b.Localizer("de")
	assert.Equal(t, "Servus", de.Localize("Hello"))
	assert.Equal(t, "Tschüss", de.Localize("Bye"))
	assert.Equal(t, "Beobachter 1 abgemeldet", de.Localize("observer %d cancelled", 1))
	assert.Len(t, b.Languages(), 2)
}

func TestLoadYAMLErrors(t *testing.T) {
	b := NewBundle(language.English)

	tests := []struct {
		name string
		data string
	}{
		{"BadYAML", "language: [de"},
		{"NoLanguage", "tables: {}"},
		{"BadLanguage", "language: \"!!\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.LoadYAML([]byte(tt.data))
			require.Error(t, err)
			var le *LoadError
			assert.ErrorAs(t, err, &le)
		})
	}

	err := b.LoadYAML([]byte("tables: {}"))
	assert.ErrorIs(t, err, ErrNoLanguage)
	assert.Len(t, b.Languages(), 1)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml":    {Data: []byte(englishYAML)},
		"locales/de.yml":     {Data: []byte(germanYAML)},
		"locales/README.txt": {Data: []byte("ignored")},
		"locales/sub/x.yaml": {Data: []byte("broken: [")},
	}

	b := NewBundle(language.English)
	require.NoError(t, b.LoadFS(fsys, "locales"))
	assert.ElementsMatch(t, []language.Tag{language.English, language.German}, b.Languages())
	assert.Equal(t, "Hallo", b.Localizer("de").Localize("Hello"))

	t.Run("BadFile", func(t *testing.T) {
		bad := fstest.MapFS{"l/bad.yaml": {Data: []byte("language: [")}}
		err := NewBundle(language.English).LoadFS(bad, "l")
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "l/bad.yaml", le.File)
	})

	t.Run("MissingDir", func(t *testing.T) {
		err := NewBundle(language.English).LoadFS(fsys, "nope")
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "de.yaml")
	require.NoError(t, os.WriteFile(p, []byte(germanYAML), 0o644))

	b := NewBundle(language.English)
	require.NoError(t, b.LoadFile(p))
	assert.Equal(t, "Hallo", b.Localizer("de").Localize("Hello"))

	err := b.LoadFile(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "missing.yaml")
}
