package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CreativeUnicorns/recruitprefs"
)

type catalogFile struct {
	Departments []recruitprefs.Option `yaml:"departments"`
}

// LoadCatalog reads a department catalog from a YAML file of the form:
//
//	departments:
//	  - id: technical
//	    name: Technical
//	    description: Build the club website and internal tools.
//
// An empty path returns recruitprefs.DefaultDepartments().
func LoadCatalog(path string) (*recruitprefs.Catalog, error) {
	if path == "" {
		return recruitprefs.DefaultDepartments(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(bytes.NewReader(data))
}

// ParseCatalog decodes a YAML catalog. Unknown keys are rejected.
func ParseCatalog(r io.Reader) (*recruitprefs.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, recruitprefs.ErrEmptyCatalog
		}
		return nil, fmt.Errorf("config: failed to parse catalog: %w", err)
	}

	catalog, err := recruitprefs.NewCatalog(file.Departments...)
	if err != nil {
		return nil, fmt.Errorf("config: invalid catalog: %w", err)
	}
	return catalog, nil
}
