package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Status is the regulatory status of a chemical.
type Status string

const (
	StatusBanned              Status = "banned"
	StatusDomesticUseBanned   Status = "domestic_use_banned"
	StatusWithdrawn           Status = "withdrawn"
	StatusRefusedRegistration Status = "refused_registration"
	StatusRestricted          Status = "restricted"
)

// Universal reports whether the status applies to every crop.
func (s Status) Universal() bool {
	switch s {
	case StatusBanned, StatusDomesticUseBanned, StatusWithdrawn, StatusRefusedRegistration:
		return true
	}
	return false
}

func (s Status) valid() bool {
	return s.Universal() || s == StatusRestricted
}

// Rule is one record of the banned-pesticide table.
type Rule struct {
	ChemicalName string   `json:"chemical_name"`
	Status       Status   `json:"status"`
	Aliases      []string `json:"aliases,omitempty"`
	BannedCrops  []string `json:"banned_crops,omitempty"`
	Restriction  string   `json:"restriction,omitempty"`
	Notification string   `json:"notification,omitempty"`
}

// Reason is the farmer-facing justification used in warnings and prompts.
func (r Rule) Reason() string {
	switch r.Status {
	case StatusBanned:
		return "Completely banned in India"
	case StatusDomesticUseBanned:
		return "Banned for domestic use in India"
	case StatusWithdrawn:
		return "Withdrawn from use in India"
	case StatusRefusedRegistration:
		return "Never registered in India"
	case StatusRestricted:
		if r.Restriction != "" {
			return "Restricted: " + r.Restriction
		}
		return "Restricted for this crop"
	}
	return "Not approved"
}

type ruleFile struct {
	Source string `json:"source,omitempty"`
	Rules  []Rule `json:"rules"`
}

// LoadRules reads the rule file and builds the immutable table.
func LoadRules(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read banned pesticide rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a rule document.
func ParseRules(data []byte) (*Table, error) {
	var file ruleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode banned pesticide rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("banned pesticide rules: no rules defined")
	}
	return NewTable(file.Rules)
}

func validateRule(i int, r Rule) error {
	if strings.TrimSpace(r.ChemicalName) == "" {
		return fmt.Errorf("rule %d: chemical_name is empty", i)
	}
	if !r.Status.valid() {
		return fmt.Errorf("rule %d (%s): unknown status %q", i, r.ChemicalName, r.Status)
	}
	if r.Status == StatusRestricted && len(r.BannedCrops) == 0 {
		return fmt.Errorf("rule %d (%s): restricted rule without banned_crops", i, r.ChemicalName)
	}
	if r.Status.Universal() && len(r.BannedCrops) > 0 {
		return fmt.Errorf("rule %d (%s): banned_crops only allowed for restricted status", i, r.ChemicalName)
	}
	return nil
}
