// Package catalog holds the crop and district directories used to resolve
// farmer replies. Both are loaded once from YAML and read concurrently.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Crop struct {
	Name      string   `yaml:"name"`
	HindiName string   `yaml:"hindi_name"`
	Aliases   []string `yaml:"aliases"`
}

type District struct {
	Name      string   `yaml:"name"`
	State     string   `yaml:"state"`
	Aliases   []string `yaml:"aliases"`
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
}

// aliasIndex resolves normalised spellings to a canonical name.
type aliasIndex struct {
	exact map[string]string
	byLen []string
}

func newAliasIndex() *aliasIndex {
	return &aliasIndex{exact: make(map[string]string)}
}

func (ix *aliasIndex) add(canonical string, spellings ...string) error {
	for _, sp := range spellings {
		key := normalize(sp)
		if key == "" {
			continue
		}
		if prev, ok := ix.exact[key]; ok && prev != canonical {
			return fmt.Errorf("spelling %q maps to both %q and %q", sp, prev, canonical)
		}
		if _, ok := ix.exact[key]; !ok {
			ix.byLen = append(ix.byLen, key)
		}
		ix.exact[key] = canonical
	}
	return nil
}

func (ix *aliasIndex) seal() {
	sort.SliceStable(ix.byLen, func(i, j int) bool {
		return len(ix.byLen[i]) > len(ix.byLen[j])
	})
}

// find tries an exact match first, then the longest spelling that appears as
// whole words inside the text ("मेरी फसल गेहूं है").
func (ix *aliasIndex) find(text string) (string, bool) {
	key := normalize(text)
	if key == "" {
		return "", false
	}
	if name, ok := ix.exact[key]; ok {
		return name, true
	}
	padded := " " + key + " "
	for _, sp := range ix.byLen {
		if strings.Contains(padded, " "+sp+" ") {
			return ix.exact[sp], true
		}
	}
	return "", false
}

func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '!', '?', '।', ':', ';', '"', '\'':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// Crops implements the crop matcher.
type Crops struct {
	list  []Crop
	byKey map[string]Crop
	index *aliasIndex
}

func LoadCrops(path string) (*Crops, error) {
	var doc struct {
		Crops []Crop `yaml:"crops"`
	}
	if err := readYAML(path, &doc); err != nil {
		return nil, fmt.Errorf("load crops: %w", err)
	}
	return NewCrops(doc.Crops)
}

func NewCrops(list []Crop) (*Crops, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("crop catalog is empty")
	}
	c := &Crops{list: list, byKey: make(map[string]Crop, len(list)), index: newAliasIndex()}
	for _, cr := range list {
		if strings.TrimSpace(cr.Name) == "" {
			return nil, fmt.Errorf("crop without name")
		}
		c.byKey[normalize(cr.Name)] = cr
		spellings := append([]string{cr.Name, cr.HindiName}, cr.Aliases...)
		if err := c.index.add(cr.Name, spellings...); err != nil {
			return nil, fmt.Errorf("crop catalog: %w", err)
		}
	}
	c.index.seal()
	return c, nil
}

func (c *Crops) MatchCrop(text string) (string, bool) {
	return c.index.find(text)
}

// HindiName falls back to the canonical name.
func (c *Crops) HindiName(name string) string {
	if cr, ok := c.byKey[normalize(name)]; ok && cr.HindiName != "" {
		return cr.HindiName
	}
	return name
}

func (c *Crops) Names() []string {
	names := make([]string, len(c.list))
	for i, cr := range c.list {
		names[i] = cr.Name
	}
	return names
}

// Districts implements the district directory.
type Districts struct {
	byKey map[string]District
	index *aliasIndex
}

func LoadDistricts(path string) (*Districts, error) {
	var doc struct {
		Districts []District `yaml:"districts"`
	}
	if err := readYAML(path, &doc); err != nil {
		return nil, fmt.Errorf("load districts: %w", err)
	}
	return NewDistricts(doc.Districts)
}

func NewDistricts(list []District) (*Districts, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("district directory is empty")
	}
	d := &Districts{byKey: make(map[string]District, len(list)), index: newAliasIndex()}
	for _, ds := range list {
		if strings.TrimSpace(ds.Name) == "" {
			return nil, fmt.Errorf("district without name")
		}
		d.byKey[normalize(ds.Name)] = ds
		if err := d.index.add(ds.Name, append([]string{ds.Name}, ds.Aliases...)...); err != nil {
			return nil, fmt.Errorf("district directory: %w", err)
		}
	}
	d.index.seal()
	return d, nil
}

func (d *Districts) LookupDistrict(text string) (string, bool) {
	return d.index.find(text)
}

// Coordinates returns the district headquarters position used for forecasts.
func (d *Districts) Coordinates(name string) (lat, lon float64, ok bool) {
	ds, ok := d.byKey[normalize(name)]
	if !ok || (ds.Latitude == 0 && ds.Longitude == 0) {
		return 0, 0, false
	}
	return ds.Latitude, ds.Longitude, true
}

// State returns the state a district belongs to, or "".
func (d *Districts) State(name string) string {
	return d.byKey[normalize(name)].State
}
