package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"concerthub-api/internal/model"
	"concerthub-api/pkg/money"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// seedFile is the on-disk shape of a catalog feed.
type seedFile struct {
	Concerts []seedConcert `yaml:"concerts" toml:"concerts"`
}

// seedConcert carries the display price exactly as the feed writes it.
type seedConcert struct {
	ID          int      `yaml:"id" toml:"id"`
	Title       string   `yaml:"title" toml:"title"`
	Description string   `yaml:"description" toml:"description"`
	Date        string   `yaml:"date" toml:"date"`
	Location    string   `yaml:"location" toml:"location"`
	Price       string   `yaml:"price" toml:"price"`
	Genre       string   `yaml:"genre" toml:"genre"`
	Badge       string   `yaml:"badge" toml:"badge"`
	Images      []string `yaml:"images" toml:"images"`
}

// DefaultItems returns the embedded seed catalog.
func DefaultItems() ([]model.Item, error) {
	return ParseYAML(defaultSeed)
}

// LoadFile reads a feed file; the format follows the extension
// (.yaml/.yml or .toml).
func LoadFile(path string) ([]model.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
}

// ParseYAML decodes a YAML (or JSON) feed.
func ParseYAML(data []byte) ([]model.Item, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog yaml: %w", err)
	}
	return f.items()
}

// ParseTOML decodes a TOML feed using [[concerts]] tables.
func ParseTOML(data []byte) ([]model.Item, error) {
	var f seedFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog toml: %w", err)
	}
	return f.items()
}

func (f seedFile) items() ([]model.Item, error) {
	items := make([]model.Item, 0, len(f.Concerts))
	seen := make(map[int]bool, len(f.Concerts))

	for _, c := range f.Concerts {
		if c.ID <= 0 {
			return nil, fmt.Errorf("concert %q: id must be positive", c.Title)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate concert id %d", c.ID)
		}
		seen[c.ID] = true

		price, err := money.Parse(c.Price)
		if err != nil {
			return nil, fmt.Errorf("concert %d: %w", c.ID, err)
		}

		items = append(items, model.Item{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Date:        c.Date,
			Location:    c.Location,
			Price:       price,
			Genre:       c.Genre,
			Badge:       c.Badge,
			Images:      c.Images,
		})
	}
	return items, nil
}
