package conversation

import "kisan-advisory-be/pkg/store"

// Action tells the caller what to do after a transition.
type Action string

const (
	ActionPrompt          Action = "prompt"
	ActionRetry           Action = "retry"
	ActionAcknowledge     Action = "acknowledge"
	ActionQueryLimit      Action = "query_limit"
	ActionStillProcessing Action = "still_processing"
	ActionIgnore          Action = "ignore"
	ActionWeather         Action = "weather"
	ActionRunAdvice       Action = "run_advice"
	ActionRunVariety      Action = "run_variety"
)

// Effect is a slot mutation applied together with a transition.
type Effect string

const (
	EffectSetDistrict   Effect = "set_district"
	EffectSetCrop       Effect = "set_crop"
	EffectSetCategory   Effect = "set_category"
	EffectAppendQuery   Effect = "append_query"
	EffectClearQueries  Effect = "clear_queries"
	EffectClearCategory Effect = "clear_category"
)

// Slots is the read-only view of a session a rule may consult.
type Slots struct {
	State      store.State
	District   string
	LockedCrop string
	Category   Category
	QueryCount int
	MaxQueries int
}

// Transition is the outcome of a rule.
type Transition struct {
	Next    store.State
	Action  Action
	Effects []Effect
}

// Rule decides a transition. Rules never mutate anything.
type Rule func(Slots, Event) Transition

type stateRules struct {
	on       map[EventKind]Rule
	fallback Rule
}

// Table maps (state, event kind) to a rule. Every state has a fallback, so
// lookups never fail.
type Table struct {
	states map[store.State]stateRules
	global map[EventKind]Rule
}

// Lookup resolves a rule: state rule, then global rule, then the state fallback.
func (t *Table) Lookup(state store.State, kind EventKind) Rule {
	sr, ok := t.states[state]
	if !ok {
		return menu
	}
	if r, ok := sr.on[kind]; ok {
		return r
	}
	if r, ok := t.global[kind]; ok {
		return r
	}
	return sr.fallback
}

// DefaultTable is the crop-advice and weather conversation.
func DefaultTable() *Table {
	return &Table{
		global: map[EventKind]Rule{
			EventReset:  reset,
			EventStatus: ignore,
		},
		states: map[store.State]stateRules{
			store.StateGreeting: {
				fallback: menu,
			},
			store.StateAwaitingMenuChoice: {
				on: map[EventKind]Rule{
					EventMenuWeather: goTo(store.StateAwaitingLocation),
					EventMenuCrop:    enterDistrict,
				},
				fallback: retry,
			},
			store.StateAwaitingLocation: {
				on: map[EventKind]Rule{
					EventLocation: weather,
					EventDistrict: weatherForDistrict,
				},
				fallback: retry,
			},
			store.StateAwaitingDistrict: {
				on: map[EventKind]Rule{
					EventDistrict: chooseDistrict,
				},
				fallback: retry,
			},
			store.StateAwaitingCrop: {
				on: map[EventKind]Rule{
					EventCrop: chooseCrop,
				},
				fallback: retry,
			},
			store.StateAwaitingCategory: {
				on: map[EventKind]Rule{
					EventCategory: chooseCategory,
				},
				fallback: retry,
			},
			store.StateCollectingQueries: {
				on: map[EventKind]Rule{
					EventText:  collect,
					EventAudio: collect,
					EventImage: collect,
					EventDone:  submit,
				},
				fallback: retry,
			},
			store.StateProcessing: {
				fallback: stillProcessing,
			},
		},
	}
}

func menu(_ Slots, _ Event) Transition {
	return Transition{Next: store.StateAwaitingMenuChoice, Action: ActionPrompt}
}

// reset leaves the advice flow; confirmed district and crop survive.
func reset(_ Slots, _ Event) Transition {
	return Transition{
		Next:    store.StateAwaitingMenuChoice,
		Action:  ActionPrompt,
		Effects: []Effect{EffectClearQueries, EffectClearCategory},
	}
}

func ignore(s Slots, _ Event) Transition {
	return Transition{Next: s.State, Action: ActionIgnore}
}

func retry(s Slots, _ Event) Transition {
	return Transition{Next: s.State, Action: ActionRetry}
}

func stillProcessing(s Slots, _ Event) Transition {
	return Transition{Next: s.State, Action: ActionStillProcessing}
}

func goTo(next store.State) Rule {
	return func(_ Slots, _ Event) Transition {
		return Transition{Next: next, Action: ActionPrompt}
	}
}

func weather(_ Slots, _ Event) Transition {
	return Transition{Next: store.StateGreeting, Action: ActionWeather}
}

func weatherForDistrict(_ Slots, _ Event) Transition {
	return Transition{Next: store.StateGreeting, Action: ActionWeather, Effects: []Effect{EffectSetDistrict}}
}

func enterDistrict(s Slots, e Event) Transition {
	if s.District != "" {
		return enterCrop(s, e)
	}
	return Transition{Next: store.StateAwaitingDistrict, Action: ActionPrompt}
}

func enterCrop(s Slots, _ Event) Transition {
	if s.LockedCrop != "" {
		return Transition{Next: store.StateAwaitingCategory, Action: ActionPrompt}
	}
	return Transition{Next: store.StateAwaitingCrop, Action: ActionPrompt}
}

func chooseDistrict(s Slots, e Event) Transition {
	s.District = e.District
	t := enterCrop(s, e)
	t.Effects = append([]Effect{EffectSetDistrict}, t.Effects...)
	return t
}

func chooseCrop(_ Slots, _ Event) Transition {
	return Transition{Next: store.StateAwaitingCategory, Action: ActionPrompt, Effects: []Effect{EffectSetCrop}}
}

func chooseCategory(_ Slots, e Event) Transition {
	if e.Category == CategoryVariety {
		return Transition{Next: store.StateProcessing, Action: ActionRunVariety, Effects: []Effect{EffectSetCategory}}
	}
	return Transition{Next: store.StateCollectingQueries, Action: ActionPrompt, Effects: []Effect{EffectSetCategory}}
}

func collect(s Slots, _ Event) Transition {
	if s.MaxQueries > 0 && s.QueryCount >= s.MaxQueries {
		return Transition{Next: s.State, Action: ActionQueryLimit}
	}
	return Transition{Next: s.State, Action: ActionAcknowledge, Effects: []Effect{EffectAppendQuery}}
}

func submit(s Slots, e Event) Transition {
	if s.QueryCount == 0 {
		return retry(s, e)
	}
	return Transition{Next: store.StateProcessing, Action: ActionRunAdvice}
}
