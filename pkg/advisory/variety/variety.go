// Package variety serves recommended varieties and sowing windows from a
// local dataset, keyed by crop.
package variety

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Variety struct {
	Name         string   `yaml:"name"`
	DurationDays string   `yaml:"duration_days"`
	Yield        string   `yaml:"yield"`
	Features     string   `yaml:"features"`
	States       []string `yaml:"states"`
}

type Entry struct {
	Crop         string    `yaml:"crop"`
	HindiName    string    `yaml:"hindi_name"`
	SowingWindow string    `yaml:"sowing_window"`
	SeedRate     string    `yaml:"seed_rate"`
	Spacing      string    `yaml:"spacing"`
	Varieties    []Variety `yaml:"varieties"`
	Notes        []string  `yaml:"notes"`
}

// Dataset is immutable after Load.
type Dataset struct {
	byCrop map[string]Entry
}

func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variety dataset: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Dataset, error) {
	var doc struct {
		Crops []Entry `yaml:"crops"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode variety dataset: %w", err)
	}
	ds := &Dataset{byCrop: make(map[string]Entry, len(doc.Crops))}
	for i, e := range doc.Crops {
		key := cropKey(e.Crop)
		if key == "" {
			return nil, fmt.Errorf("variety entry %d: crop is empty", i)
		}
		if len(e.Varieties) == 0 {
			return nil, fmt.Errorf("variety entry %d (%s): no varieties", i, e.Crop)
		}
		ds.byCrop[key] = e
	}
	return ds, nil
}

// Lookup returns the entry for crop. With a state, varieties recommended for
// that state come first.
func (d *Dataset) Lookup(crop, state string) (Entry, bool) {
	e, ok := d.byCrop[cropKey(crop)]
	if !ok {
		return Entry{}, false
	}
	e.Varieties = append([]Variety(nil), e.Varieties...)
	if state != "" {
		var local, rest []Variety
		for _, v := range e.Varieties {
			if v.suits(state) {
				local = append(local, v)
			} else {
				rest = append(rest, v)
			}
		}
		e.Varieties = append(local, rest...)
	}
	return e, true
}

func (v Variety) suits(state string) bool {
	for _, s := range v.States {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(state)) {
			return true
		}
	}
	return false
}

// Render formats an entry as a WhatsApp message in Hindi.
func (e Entry) Render(maxVarieties int) string {
	name := e.HindiName
	if name == "" {
		name = e.Crop
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌱 *%s की उन्नत किस्में और बुवाई जानकारी*\n\n", name)
	if e.SowingWindow != "" {
		fmt.Fprintf(&b, "📅 *बुवाई का समय:* %s\n", e.SowingWindow)
	}
	if e.SeedRate != "" {
		fmt.Fprintf(&b, "⚖️ *बीज दर:* %s\n", e.SeedRate)
	}
	if e.Spacing != "" {
		fmt.Fprintf(&b, "📏 *दूरी:* %s\n", e.Spacing)
	}
	b.WriteString("\n*अनुशंसित किस्में:*\n")

	vs := e.Varieties
	if maxVarieties > 0 && len(vs) > maxVarieties {
		vs = vs[:maxVarieties]
	}
	for _, v := range vs {
		fmt.Fprintf(&b, "• *%s*", v.Name)
		var details []string
		if v.DurationDays != "" {
			details = append(details, v.DurationDays+" दिन")
		}
		if v.Yield != "" {
			details = append(details, "उपज "+v.Yield)
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
		}
		if v.Features != "" {
			fmt.Fprintf(&b, " - %s", v.Features)
		}
		b.WriteString("\n")
	}
	for _, n := range e.Notes {
		fmt.Fprintf(&b, "\n💡 %s", n)
	}
	return strings.TrimSpace(b.String())
}

func cropKey(crop string) string {
	return strings.Join(strings.Fields(strings.ToLower(crop)), " ")
}
