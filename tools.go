//go:build tools

package tools

// Tool dependencies are not tracked here with blank imports.
// mockery v2 is used as an installed binary (not via go run), so no
// import is needed. Run: mockery (from the module root) to regenerate
// pkg/log/mocks from .mockery.yaml.
