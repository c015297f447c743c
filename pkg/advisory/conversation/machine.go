package conversation

import (
	"kisan-advisory-be/pkg/store"
)

// Result describes one step of the machine.
type Result struct {
	From   store.State
	To     store.State
	Event  Event
	Action Action
	// Changed is true when the session must be persisted.
	Changed bool
}

// Machine applies the transition table to sessions.
type Machine struct {
	classifier *Classifier
	table      *Table
	maxQueries int
}

func NewMachine(classifier *Classifier, table *Table, maxQueries int) *Machine {
	if table == nil {
		table = DefaultTable()
	}
	return &Machine{classifier: classifier, table: table, maxQueries: maxQueries}
}

// Step classifies msg against the session state, applies the resulting
// transition to s in place and reports what the caller must do next.
func (m *Machine) Step(s *store.Session, msg Message) Result {
	ev := m.classifier.Classify(s.State, msg)
	slots := m.slots(s)
	tr := m.table.Lookup(s.State, ev.Kind)(slots, ev)

	res := Result{From: s.State, To: tr.Next, Event: ev, Action: tr.Action}
	switch tr.Action {
	case ActionIgnore, ActionStillProcessing:
		res.To = s.State
		return res
	}

	mutated := applyEffects(s, ev, tr.Effects)
	if tr.Next != s.State || mutated {
		s.State = tr.Next
		s.Version++
	}
	// retries and limit replies still count as activity
	res.Changed = true
	return res
}

func (m *Machine) slots(s *store.Session) Slots {
	return Slots{
		State:      s.State,
		District:   s.District,
		LockedCrop: s.LockedCrop,
		Category:   Category(s.Category),
		QueryCount: len(s.CollectedQueries),
		MaxQueries: m.maxQueries,
	}
}

func applyEffects(s *store.Session, ev Event, effects []Effect) bool {
	mutated := false
	for _, eff := range effects {
		switch eff {
		case EffectSetDistrict:
			if ev.District != "" {
				s.District = ev.District
				mutated = true
			}
		case EffectSetCrop:
			if ev.Crop != "" {
				s.LockedCrop = ev.Crop
				mutated = true
			}
		case EffectSetCategory:
			s.Category = string(ev.Category)
			mutated = true
		case EffectAppendQuery:
			if ev.Query != nil {
				s.CollectedQueries = append(s.CollectedQueries, *ev.Query)
				mutated = true
			}
		case EffectClearQueries:
			if len(s.CollectedQueries) > 0 {
				s.CollectedQueries = []store.QueryInput{}
				mutated = true
			}
		case EffectClearCategory:
			if s.Category != "" {
				s.Category = ""
				mutated = true
			}
		}
	}
	return mutated
}

// Complete ends a processing cycle and returns the session to GREETING.
// The district is kept; the crop survives only when keepCrop is set, which
// lets a farmer retry after a transient failure without re-selecting it.
// It reports false when the session had already left PROCESSING.
func Complete(s *store.Session, keepCrop bool) bool {
	if s.State != store.StateProcessing {
		return false
	}
	s.State = store.StateGreeting
	s.Category = ""
	s.CollectedQueries = []store.QueryInput{}
	if !keepCrop {
		s.LockedCrop = ""
	}
	s.Version++
	return true
}
