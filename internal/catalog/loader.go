// Package catalog loads the coin catalog from YAML.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/coinflip/internal/coin"
)

// ErrNoCoins is returned when a catalog file declares no coins.
var ErrNoCoins = errors.New("catalog declares no coins")

// Catalog is a loaded catalog plus its default faces.
type Catalog struct {
	*coin.Catalog
	Version   string
	HeadsPath string
	TailsPath string
	// Warnings lists every authoring problem that was downgraded to a
	// fail-closed rule or a dropped effect.
	Warnings []string
}

// Load reads, validates and converts the catalog at path. Authoring mistakes
// inside a coin are logged as warnings and fail closed; only unreadable
// files, duplicate paths or an empty catalog are errors.
func Load(path string, log *slog.Logger) (*Catalog, error) {
	raw, err := readYAML(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Build(raw, log)
}

// Parse is Load for in-memory YAML.
func Parse(b []byte, log *slog.Logger) (*Catalog, error) {
	var raw RawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return Build(raw, log)
}

// Build converts an already decoded RawCatalog.
func Build(raw RawCatalog, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}
	if len(raw.Coins) == 0 {
		return nil, ErrNoCoins
	}
	warnings := ValidateRaw(raw)

	defs := make([]coin.Definition, 0, len(raw.Coins))
	for _, rc := range raw.Coins {
		defs = append(defs, convertCoin(rc))
	}
	cat, err := coin.NewCatalog(defs)
	if err != nil {
		return nil, err
	}

	out := &Catalog{
		Catalog:   cat,
		Version:   raw.Version,
		HeadsPath: raw.Heads,
		TailsPath: raw.Tails,
		Warnings:  warnings,
	}
	// faces default to the first declared coin
	if out.HeadsPath == "" || !cat.Has(out.HeadsPath) {
		out.HeadsPath = defs[0].Path
	}
	if out.TailsPath == "" || !cat.Has(out.TailsPath) {
		out.TailsPath = defs[0].Path
	}

	for _, w := range warnings {
		log.Warn("catalog", slog.String("issue", w))
	}
	log.Info("catalog loaded",
		slog.Int("coins", cat.Len()),
		slog.String("version", raw.Version),
		slog.Int("warnings", len(warnings)))
	return out, nil
}

func readYAML(path string) (RawCatalog, error) {
	var raw RawCatalog
	b, err := os.ReadFile(path)
	if err != nil {
		return RawCatalog{}, err
	}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return RawCatalog{}, err
	}
	return raw, nil
}
