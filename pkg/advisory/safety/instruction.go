package safety

import (
	"fmt"
	"strings"
)

// ComplianceInstruction renders the crop-specific banned list appended to the
// final audit directive. It never depends on earlier stages having seen warnings.
func (t *Table) ComplianceInstruction(crop string) string {
	rules := t.RulesFor(crop)
	if len(rules) == 0 {
		return ""
	}

	var universal, scoped []Rule
	for _, r := range rules {
		if r.Status == StatusRestricted {
			scoped = append(scoped, r)
		} else {
			universal = append(universal, r)
		}
	}

	upper := strings.ToUpper(crop)
	var b strings.Builder
	fmt.Fprintf(&b, "CRITICAL SAFETY RULE - BANNED PESTICIDES FOR %s:\n", upper)
	b.WriteString("The following chemicals are banned by CIB&RC India. If ANY of them is recommended in the response, ")
	b.WriteString("remove that recommendation entirely. Do NOT invent a replacement chemical. In its place write: ")
	fmt.Fprintf(&b, "%q\n\n", ConsultNote(crop))

	if len(scoped) > 0 {
		fmt.Fprintf(&b, "BANNED SPECIFICALLY FOR %s:\n", upper)
		for _, r := range scoped {
			fmt.Fprintf(&b, "  - %s (%s)", r.ChemicalName, r.Reason())
			if len(r.Aliases) > 0 {
				fmt.Fprintf(&b, " also written as: %s", strings.Join(r.Aliases, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(universal) > 0 {
		examples := make([]string, 0, 5)
		for _, r := range universal {
			if len(examples) == cap(examples) {
				break
			}
			examples = append(examples, r.ChemicalName)
		}
		fmt.Fprintf(&b, "Additionally, %d chemicals are completely banned, withdrawn or unregistered in India (including %s, etc.). Do not recommend any of these.\n\n",
			len(universal), strings.Join(examples, ", "))
	}

	b.WriteString("A chemical may only remain in the answer inside an explicit warning telling the farmer NOT to use it.")
	return b.String()
}
