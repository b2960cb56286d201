package main

import (
	"embed"

	"golang.org/x/text/language"

	"github.com/kvo-hub/kvo-go/pkg/localize"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// loadLocales returns the bundle of built-in translations.
func loadLocales() (*localize.Bundle, error) {
	b := localize.NewBundle(language.English)
	if err := b.LoadFS(localeFiles, "locales"); err != nil {
		return nil, err
	}
	return b, nil
}
