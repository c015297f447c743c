package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-advisory-be/pkg/store"
)

type mapMatcher map[string]string

func (m mapMatcher) MatchCrop(text string) (string, bool) {
	v, ok := m[normalize(text)]
	return v, ok
}

func (m mapMatcher) LookupDistrict(text string) (string, bool) {
	v, ok := m[normalize(text)]
	return v, ok
}

func newTestMachine() *Machine {
	crops := mapMatcher{"guava": "Guava", "अमरूद": "Guava", "wheat": "Wheat"}
	districts := mapMatcher{"jaipur": "Jaipur", "जयपुर": "Jaipur"}
	return NewMachine(NewClassifier(crops, districts), DefaultTable(), 3)
}

func text(s string) Message { return Message{SenderID: "u1", Type: MessageText, Text: s} }

func sessionIn(state store.State) *store.Session {
	s := store.NewSession("u1", time.Unix(0, 0))
	s.State = state
	return s
}

func TestStep_HappyPathToProcessing(t *testing.T) {
	m := newTestMachine()
	s := store.NewSession("u1", time.Now())

	steps := []struct {
		msg    Message
		state  store.State
		action Action
	}{
		{text("नमस्ते"), store.StateAwaitingMenuChoice, ActionPrompt},
		{text("2"), store.StateAwaitingDistrict, ActionPrompt},
		{text("जयपुर"), store.StateAwaitingCrop, ActionPrompt},
		{text("अमरूद"), store.StateAwaitingCategory, ActionPrompt},
		{Message{Type: MessageInteractive, ReplyID: "cat_pest_disease"}, store.StateCollectingQueries, ActionPrompt},
		{text("पत्तियों पर काले धब्बे हैं"), store.StateCollectingQueries, ActionAcknowledge},
		{Message{Type: MessageImage, MediaRef: "blob://1", MimeType: "image/jpeg"}, store.StateCollectingQueries, ActionAcknowledge},
		{text("हो गया"), store.StateProcessing, ActionRunAdvice},
	}
	for i, st := range steps {
		res := m.Step(s, st.msg)
		require.Equal(t, st.state, s.State, "step %d", i)
		require.Equal(t, st.action, res.Action, "step %d", i)
		require.True(t, res.Changed, "step %d", i)
	}

	assert.Equal(t, "Jaipur", s.District)
	assert.Equal(t, "Guava", s.LockedCrop)
	assert.Equal(t, string(CategoryPestDisease), s.Category)
	require.Len(t, s.CollectedQueries, 2)
	assert.Equal(t, store.InputText, s.CollectedQueries[0].Kind)
	assert.Equal(t, store.InputImage, s.CollectedQueries[1].Kind)
	assert.Equal(t, "blob://1", s.CollectedQueries[1].MediaRef)
}

func TestStep_ImageWhileAwaitingDistrictRetriesInPlace(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateAwaitingDistrict)
	before := s.Version

	res := m.Step(s, Message{Type: MessageImage, MediaRef: "blob://x"})

	assert.Equal(t, ActionRetry, res.Action)
	assert.Equal(t, store.StateAwaitingDistrict, s.State)
	assert.Equal(t, before, s.Version)
	assert.Empty(t, s.CollectedQueries)
}

func TestStep_UnknownDistrictTextRetries(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateAwaitingDistrict)

	res := m.Step(s, text("atlantis"))

	assert.Equal(t, ActionRetry, res.Action)
	assert.Equal(t, store.StateAwaitingDistrict, s.State)
}

func TestStep_SkipsFilledSlots(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateAwaitingMenuChoice)
	s.District = "Jaipur"
	s.LockedCrop = "Wheat"

	m.Step(s, Message{Type: MessageInteractive, ReplyID: ReplyMenuCrop})

	assert.Equal(t, store.StateAwaitingCategory, s.State)

	s = sessionIn(store.StateAwaitingMenuChoice)
	s.District = "Jaipur"
	m.Step(s, text("फसल सलाह"))
	assert.Equal(t, store.StateAwaitingCrop, s.State)
}

func TestStep_ResetKeepsConfirmedSlots(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateCollectingQueries)
	s.District = "Jaipur"
	s.LockedCrop = "Guava"
	s.Category = string(CategoryNutrition)
	s.CollectedQueries = []store.QueryInput{{Kind: store.InputText, Text: "q"}}

	res := m.Step(s, text("menu"))

	assert.Equal(t, ActionPrompt, res.Action)
	assert.Equal(t, store.StateAwaitingMenuChoice, s.State)
	assert.Empty(t, s.CollectedQueries)
	assert.Empty(t, s.Category)
	assert.Equal(t, "Jaipur", s.District)
	assert.Equal(t, "Guava", s.LockedCrop)
}

func TestStep_ProcessingRepliesStillProcessingWithoutPersisting(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateProcessing)
	s.Version = 7

	res := m.Step(s, text("और एक सवाल"))

	assert.Equal(t, ActionStillProcessing, res.Action)
	assert.False(t, res.Changed)
	assert.Equal(t, store.StateProcessing, s.State)
	assert.Equal(t, int64(7), s.Version)
}

func TestStep_ResetDuringProcessingSupersedesRun(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateProcessing)
	s.Version = 7

	m.Step(s, Message{Type: MessageInteractive, ReplyID: ReplyReset})

	assert.Equal(t, store.StateAwaitingMenuChoice, s.State)
	assert.Greater(t, s.Version, int64(7))
}

func TestStep_StatusUpdatesAreIgnored(t *testing.T) {
	m := newTestMachine()
	for _, st := range store.AllStates {
		s := sessionIn(st)
		res := m.Step(s, Message{Type: MessageStatus})
		assert.Equal(t, ActionIgnore, res.Action, "state %s", st)
		assert.False(t, res.Changed, "state %s", st)
		assert.Equal(t, st, s.State)
	}
}

func TestStep_QueryLimit(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateCollectingQueries)

	for i := 0; i < 3; i++ {
		assert.Equal(t, ActionAcknowledge, m.Step(s, text("सवाल")).Action)
	}
	res := m.Step(s, text("चौथा सवाल"))

	assert.Equal(t, ActionQueryLimit, res.Action)
	assert.Len(t, s.CollectedQueries, 3)
}

func TestStep_DoneWithoutQueriesRetries(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateCollectingQueries)

	res := m.Step(s, text("done"))

	assert.Equal(t, ActionRetry, res.Action)
	assert.Equal(t, store.StateCollectingQueries, s.State)
}

func TestStep_VarietyCategoryRunsImmediately(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateAwaitingCategory)
	s.LockedCrop = "Wheat"

	res := m.Step(s, text("4"))

	assert.Equal(t, ActionRunVariety, res.Action)
	assert.Equal(t, store.StateProcessing, s.State)
	assert.Equal(t, string(CategoryVariety), s.Category)
}

func TestStep_WeatherPath(t *testing.T) {
	m := newTestMachine()
	s := sessionIn(store.StateAwaitingMenuChoice)

	m.Step(s, text("मौसम"))
	require.Equal(t, store.StateAwaitingLocation, s.State)

	res := m.Step(s, Message{Type: MessageLocation, Latitude: 26.9, Longitude: 75.8})
	assert.Equal(t, ActionWeather, res.Action)
	assert.Equal(t, store.StateGreeting, s.State)
	assert.InDelta(t, 26.9, res.Event.Latitude, 1e-9)

	s = sessionIn(store.StateAwaitingLocation)
	res = m.Step(s, text("jaipur"))
	assert.Equal(t, ActionWeather, res.Action)
	assert.Equal(t, "Jaipur", s.District)
}

func TestTable_IsTotal(t *testing.T) {
	m := newTestMachine()
	table := DefaultTable()
	slots := Slots{MaxQueries: 3}

	for _, st := range store.AllStates {
		for _, kind := range AllEventKinds {
			rule := table.Lookup(st, kind)
			require.NotNil(t, rule, "%s/%s", st, kind)

			slots.State = st
			tr := rule(slots, Event{Kind: kind})
			assert.Contains(t, store.AllStates, tr.Next, "%s/%s", st, kind)
			assert.NotEmpty(t, tr.Action, "%s/%s", st, kind)
		}
	}

	// Unknown persisted states fall back to the menu instead of panicking.
	s := sessionIn(store.State("CORRUPTED"))
	res := m.Step(s, text("anything"))
	assert.Equal(t, store.StateAwaitingMenuChoice, res.To)
}

func TestComplete(t *testing.T) {
	s := sessionIn(store.StateProcessing)
	s.District = "Jaipur"
	s.LockedCrop = "Guava"
	s.Category = string(CategoryPestDisease)
	s.CollectedQueries = []store.QueryInput{{Kind: store.InputText, Text: "q"}}
	s.Version = 3

	require.True(t, Complete(s, false))
	assert.Equal(t, store.StateGreeting, s.State)
	assert.Equal(t, "Jaipur", s.District)
	assert.Empty(t, s.LockedCrop)
	assert.Empty(t, s.Category)
	assert.Empty(t, s.CollectedQueries)
	assert.Equal(t, int64(4), s.Version)

	assert.False(t, Complete(s, false))

	s = sessionIn(store.StateProcessing)
	s.LockedCrop = "Guava"
	require.True(t, Complete(s, true))
	assert.Equal(t, "Guava", s.LockedCrop)
}
