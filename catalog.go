package recruitprefs

import (
	"fmt"
	"strings"
)

// Catalog is a fixed, ordered list of selectable options.
// It is immutable once built; accessors return copies.
type Catalog struct {
	options []Option
	index   map[string]int
}

// NewCatalog validates options and builds a Catalog from them, preserving order.
// It rejects an empty list, options with a blank ID, and duplicate IDs.
func NewCatalog(options ...Option) (*Catalog, error) {
	if len(options) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		options: make([]Option, 0, len(options)),
		index:   make(map[string]int, len(options)),
	}
	for i, opt := range options {
		if strings.TrimSpace(opt.ID) == "" {
			return nil, fmt.Errorf("%w: option %d has an empty id", ErrInvalidOption, i)
		}
		if _, exists := c.index[opt.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOption, opt.ID)
		}
		c.index[opt.ID] = len(c.options)
		c.options = append(c.options, opt)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on invalid input.
// It is intended for package-level catalogs built from literals.
func MustCatalog(options ...Option) *Catalog {
	c, err := NewCatalog(options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Options returns a copy of the catalog entries in order.
func (c *Catalog) Options() []Option {
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}

// Lookup returns the option with the given ID.
func (c *Catalog) Lookup(id string) (Option, bool) {
	i, ok := c.index[id]
	if !ok {
		return Option{}, false
	}
	return c.options[i], true
}

// Contains reports whether id names a catalog option.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of options.
func (c *Catalog) Len() int {
	return len(c.options)
}

// DefaultDepartments returns the catalog of recruitment departments.
func DefaultDepartments() *Catalog {
	return MustCatalog(
		Option{ID: "technical", Name: "Technical", Description: "CTFs, Ethical Hacking and more"},
		Option{ID: "design", Name: "Design", Description: "UI/UX design and graphics"},
		Option{ID: "dev", Name: "Development", Description: "Web development"},
		Option{ID: "social-media", Name: "Social Media", Description: "Social media management and digital marketing"},
		Option{ID: "content", Name: "Content", Description: "Content creation, writing, and documentation"},
		Option{ID: "event-management", Name: "Event Management", Description: "Event planning, coordination, and execution"},
	)
}
