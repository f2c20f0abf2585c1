package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "swecron/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Site is one configured career page
type Site struct {
	Name string
	Link string `json:"link" yaml:"link"`
	Tag  string `json:"tag" yaml:"tag"`
}

// LoadSites reads the site configuration in file order.
// Files ending in .yaml or .yml are read as YAML, everything else as JSON.
func LoadSites(path string) ([]Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewConfiguration(fmt.Sprintf("%s not found", path), err)
		}
		return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to read %s", path), err)
	}

	var sites []Site
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		sites, err = decodeYAMLSites(data)
	default:
		sites, err = decodeJSONSites(data)
	}
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to parse %s", path), err)
	}

	seen := make(map[string]struct{}, len(sites))
	for _, site := range sites {
		if _, ok := seen[site.Name]; ok {
			return nil, apperrors.NewConfiguration(fmt.Sprintf("%s names site %q more than once", path, site.Name), nil)
		}
		seen[site.Name] = struct{}{}
	}

	return sites, nil
}

// decodeJSONSites walks the top-level object token by token so site order survives
func decodeJSONSites(data []byte) ([]Site, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object of sites, got %v", tok)
	}

	sites := make([]Site, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a site name, got %v", tok)
		}

		var site *Site
		if err := dec.Decode(&site); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		if site == nil {
			site = &Site{}
		}
		site.Name = name
		sites = append(sites, *site)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return sites, nil
}

func decodeYAMLSites(data []byte) ([]Site, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	sites := make([]Site, 0)
	if len(doc.Content) == 0 {
		return sites, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of sites at line %d", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var site Site
		if err := root.Content[i+1].Decode(&site); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		site.Name = name
		sites = append(sites, site)
	}

	return sites, nil
}

// FilterSites restricts sites to the one whose name matches company, ignoring case
func FilterSites(sites []Site, company string) ([]Site, error) {
	if company == "" {
		return sites, nil
	}

	for _, site := range sites {
		if strings.EqualFold(site.Name, company) {
			return []Site{site}, nil
		}
	}

	names := make([]string, 0, len(sites))
	for _, site := range sites {
		names = append(names, site.Name)
	}
	return nil, apperrors.NewConfiguration(
		fmt.Sprintf("company %q not found in site configuration; available companies: %s", company, strings.Join(names, ", ")),
		nil,
	)
}
