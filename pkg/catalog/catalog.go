// Package catalog holds the fixed enumerations of the portal: branches,
// study years, the CGPA range, post categories and milestone defaults.
// The table is embedded at build time and parsed once.
package catalog

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Milestone describes one of the dated steps a post can carry.
type Milestone struct {
	Kind   string `yaml:"kind"`
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
	Color  string `yaml:"color"`
}

// CGPARange bounds cgpa values, inclusive.
type CGPARange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Catalog is immutable after Parse.
type Catalog struct {
	Branches   []string    `yaml:"branches"`
	Years      []int       `yaml:"years"`
	CGPA       CGPARange   `yaml:"cgpa"`
	Categories []string    `yaml:"categories"`
	Milestones []Milestone `yaml:"milestones"`

	branchSet   map[string]struct{}
	yearSet     map[int]struct{}
	categorySet map[string]struct{}
	byKind      map[string]Milestone
}

// Options is the dropdown payload served to clients.
type Options struct {
	Branches []string `json:"branches"`
	Years    []string `json:"years"`
	CGPAs    []string `json:"cgpas"`
	Types    []string `json:"types"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(embedded)
	})
	return defaultCat, defaultErr
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Branches) == 0 || len(c.Years) == 0 || len(c.Categories) == 0 || len(c.Milestones) == 0 {
		return nil, fmt.Errorf("catalog: branches, years, categories and milestones are required")
	}
	if c.CGPA.Max <= c.CGPA.Min {
		return nil, fmt.Errorf("catalog: invalid cgpa range %d..%d", c.CGPA.Min, c.CGPA.Max)
	}

	c.branchSet = make(map[string]struct{}, len(c.Branches))
	for _, b := range c.Branches {
		c.branchSet[b] = struct{}{}
	}
	c.yearSet = make(map[int]struct{}, len(c.Years))
	for _, y := range c.Years {
		c.yearSet[y] = struct{}{}
	}
	c.categorySet = make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		c.categorySet[cat] = struct{}{}
	}
	c.byKind = make(map[string]Milestone, len(c.Milestones))
	for _, m := range c.Milestones {
		if m.Kind == "" || m.Column == "" || m.Color == "" {
			return nil, fmt.Errorf("catalog: milestone %q is incomplete", m.Kind)
		}
		if _, dup := c.byKind[m.Kind]; dup {
			return nil, fmt.Errorf("catalog: duplicate milestone %q", m.Kind)
		}
		c.byKind[m.Kind] = m
	}

	return &c, nil
}

func (c *Catalog) HasBranch(branch string) bool {
	_, ok := c.branchSet[branch]
	return ok
}

func (c *Catalog) HasYear(year int) bool {
	_, ok := c.yearSet[year]
	return ok
}

func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.categorySet[category]
	return ok
}

// ValidCGPA reports whether v lies within the configured range.
func (c *Catalog) ValidCGPA(v float64) bool {
	return v >= float64(c.CGPA.Min) && v <= float64(c.CGPA.Max)
}

// Milestone returns the defaults for kind.
func (c *Catalog) Milestone(kind string) (Milestone, bool) {
	m, ok := c.byKind[kind]
	return m, ok
}

// Options builds the dropdown payload. Years and CGPA bands are strings.
func (c *Catalog) Options() Options {
	years := make([]string, 0, len(c.Years))
	for _, y := range c.Years {
		years = append(years, strconv.Itoa(y))
	}
	cgpas := make([]string, 0, c.CGPA.Max-c.CGPA.Min+1)
	for i := c.CGPA.Min; i <= c.CGPA.Max; i++ {
		cgpas = append(cgpas, strconv.Itoa(i))
	}
	return Options{
		Branches: append([]string(nil), c.Branches...),
		Years:    years,
		CGPAs:    cgpas,
		Types:    append([]string(nil), c.Categories...),
	}
}
