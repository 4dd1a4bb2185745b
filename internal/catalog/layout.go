package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Section is one block of the seating chart. An aisle section carries no
// seats and only separates its neighbours when rendered.
type Section struct {
	Name        string `yaml:"name"`
	Rows        int    `yaml:"rows"`
	SeatsPerRow int    `yaml:"seatsPerRow"`
	VIP         bool   `yaml:"vip"`
	Aisle       bool   `yaml:"aisle"`
}

// Layout is the ordered list of sections a catalog is generated from.
// The order is significant: seat ids follow it.
type Layout struct {
	Sections []Section `yaml:"sections"`
}

// maxRows keeps row labels within A..Z.
const maxRows = 26

// DefaultLayout is the theater used when no layout file is configured:
// 20 VIP seats, 75 premium and 150 standard, ids 1..245.
func DefaultLayout() Layout {
	return Layout{Sections: []Section{
		{Name: "VIP", Rows: 2, SeatsPerRow: 10, VIP: true},
		{Name: "AISLE", Aisle: true},
		{Name: "Premium", Rows: 5, SeatsPerRow: 15},
		{Name: "AISLE", Aisle: true},
		{Name: "Standard", Rows: 10, SeatsPerRow: 15},
	}}
}

// Total returns the number of seats the layout generates.
func (l Layout) Total() int {
	n := 0
	for _, s := range l.Sections {
		if !s.Aisle {
			n += s.Rows * s.SeatsPerRow
		}
	}
	return n
}

// Validate rejects sections that cannot be rendered or addressed.
func (l Layout) Validate() error {
	if len(l.Sections) == 0 {
		return fmt.Errorf("layout: no sections")
	}
	for i, s := range l.Sections {
		if s.Aisle {
			continue
		}
		if s.Name == "" {
			return fmt.Errorf("layout: section %d has no name", i)
		}
		if s.Rows < 1 || s.Rows > maxRows {
			return fmt.Errorf("layout: section %q rows must be 1..%d, got %d", s.Name, maxRows, s.Rows)
		}
		if s.SeatsPerRow < 1 {
			return fmt.Errorf("layout: section %q seatsPerRow must be positive, got %d", s.Name, s.SeatsPerRow)
		}
	}
	return nil
}

// ParseLayout decodes a YAML layout document.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("layout: decode: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads a YAML layout file. An empty path yields DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: read %s: %w", path, err)
	}
	return ParseLayout(data)
}
