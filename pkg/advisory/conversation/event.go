package conversation

import (
	"strings"

	"kisan-advisory-be/pkg/store"
)

// EventKind is what a message means in the current state.
type EventKind string

const (
	EventReset       EventKind = "reset"
	EventMenuWeather EventKind = "menu_weather"
	EventMenuCrop    EventKind = "menu_crop"
	EventLocation    EventKind = "location"
	EventDistrict    EventKind = "district"
	EventCrop        EventKind = "crop"
	EventCategory    EventKind = "category"
	EventDone        EventKind = "done"
	EventText        EventKind = "text"
	EventAudio       EventKind = "audio"
	EventImage       EventKind = "image"
	EventStatus      EventKind = "status"
	EventUnknown     EventKind = "unknown"
)

// AllEventKinds is used to prove the transition table total.
var AllEventKinds = []EventKind{
	EventReset, EventMenuWeather, EventMenuCrop, EventLocation, EventDistrict, EventCrop,
	EventCategory, EventDone, EventText, EventAudio, EventImage, EventStatus, EventUnknown,
}

// Category is the advisory category chosen by the farmer.
type Category string

const (
	CategoryPestDisease Category = "pest_disease"
	CategoryNutrition   Category = "nutrition"
	CategoryIrrigation  Category = "irrigation_general"
	CategoryVariety     Category = "variety_sowing"
)

// Event is a classified message.
type Event struct {
	Kind      EventKind
	District  string
	Crop      string
	Category  Category
	Query     *store.QueryInput
	Latitude  float64
	Longitude float64
}

// CropMatcher resolves free text to a canonical crop name.
type CropMatcher interface {
	MatchCrop(text string) (string, bool)
}

// DistrictDirectory resolves free text to a canonical district name.
type DistrictDirectory interface {
	LookupDistrict(text string) (string, bool)
}

var resetWords = map[string]bool{
	"hi": true, "hii": true, "hello": true, "hey": true, "start": true, "restart": true,
	"menu": true, "reset": true, "cancel": true,
	"नमस्ते": true, "नमस्कार": true, "राम राम": true, "मेनू": true, "शुरू": true, "रद्द": true,
}

var doneWords = map[string]bool{
	"done": true, "ok done": true, "submit": true, "send": true, "finish": true,
	"हो गया": true, "बस": true, "भेजो": true, "भेजें": true, "पूरा": true, "समाप्त": true,
}

var menuWeatherWords = map[string]bool{"1": true, "weather": true, "मौसम": true, "मौसम जानकारी": true}
var menuCropWords = map[string]bool{"2": true, "crop": true, "advice": true, "फसल": true, "फसल सलाह": true, "सलाह": true}

var categoryWords = map[string]Category{
	"1": CategoryPestDisease, "pest": CategoryPestDisease, "disease": CategoryPestDisease,
	"कीट": CategoryPestDisease, "रोग": CategoryPestDisease, "कीट/रोग": CategoryPestDisease,
	"2": CategoryNutrition, "nutrition": CategoryNutrition, "fertilizer": CategoryNutrition,
	"खाद": CategoryNutrition, "पोषण": CategoryNutrition, "उर्वरक": CategoryNutrition,
	"3": CategoryIrrigation, "irrigation": CategoryIrrigation, "सिंचाई": CategoryIrrigation, "सामान्य": CategoryIrrigation,
	"4": CategoryVariety, "variety": CategoryVariety, "sowing": CategoryVariety,
	"किस्म": CategoryVariety, "बुवाई": CategoryVariety, "किस्में": CategoryVariety,
}

// Interactive reply ids sent with the menu buttons and lists.
const (
	ReplyMenuWeather = "menu_weather"
	ReplyMenuCrop    = "menu_crop"
	ReplyDone        = "done"
	ReplyReset       = "reset"
	replyCropPrefix  = "crop_"
	replyCatPrefix   = "cat_"
)

// Classifier turns a message into an event for a given state.
type Classifier struct {
	crops     CropMatcher
	districts DistrictDirectory
}

func NewClassifier(crops CropMatcher, districts DistrictDirectory) *Classifier {
	return &Classifier{crops: crops, districts: districts}
}

// Classify is a pure function of state and message.
func (c *Classifier) Classify(state store.State, msg Message) Event {
	switch msg.Type {
	case MessageStatus:
		return Event{Kind: EventStatus}
	case MessageLocation:
		return Event{Kind: EventLocation, Latitude: msg.Latitude, Longitude: msg.Longitude}
	case MessageAudio:
		if msg.MediaRef == "" {
			return Event{Kind: EventUnknown}
		}
		return Event{Kind: EventAudio, Query: &store.QueryInput{Kind: store.InputAudio, MediaRef: msg.MediaRef, MimeType: msg.MimeType}}
	case MessageImage:
		if msg.MediaRef == "" {
			return Event{Kind: EventUnknown}
		}
		return Event{Kind: EventImage, Query: &store.QueryInput{
			Kind: store.InputImage, MediaRef: msg.MediaRef, MimeType: msg.MimeType, Text: strings.TrimSpace(msg.Text),
		}}
	case MessageInteractive:
		if ev, ok := c.classifyReply(msg.ReplyID); ok {
			return ev
		}
		return c.classifyText(state, msg)
	case MessageText:
		return c.classifyText(state, msg)
	}
	return Event{Kind: EventUnknown}
}

func (c *Classifier) classifyReply(id string) (Event, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	switch {
	case id == "":
		return Event{}, false
	case id == ReplyReset:
		return Event{Kind: EventReset}, true
	case id == ReplyMenuWeather:
		return Event{Kind: EventMenuWeather}, true
	case id == ReplyMenuCrop:
		return Event{Kind: EventMenuCrop}, true
	case id == ReplyDone:
		return Event{Kind: EventDone}, true
	case strings.HasPrefix(id, replyCatPrefix):
		cat := Category(strings.TrimPrefix(id, replyCatPrefix))
		if cat.valid() {
			return Event{Kind: EventCategory, Category: cat}, true
		}
	case strings.HasPrefix(id, replyCropPrefix):
		if crop, ok := c.crops.MatchCrop(strings.TrimPrefix(id, replyCropPrefix)); ok {
			return Event{Kind: EventCrop, Crop: crop}, true
		}
	}
	return Event{}, false
}

func (c *Classifier) classifyText(state store.State, msg Message) Event {
	content := msg.Content()
	if content == "" {
		return Event{Kind: EventUnknown}
	}
	if resetWords[content] {
		return Event{Kind: EventReset}
	}

	switch state {
	case store.StateAwaitingMenuChoice:
		if menuWeatherWords[content] {
			return Event{Kind: EventMenuWeather}
		}
		if menuCropWords[content] {
			return Event{Kind: EventMenuCrop}
		}
	case store.StateAwaitingDistrict, store.StateAwaitingLocation:
		if d, ok := c.districts.LookupDistrict(content); ok {
			return Event{Kind: EventDistrict, District: d}
		}
	case store.StateAwaitingCrop:
		if crop, ok := c.crops.MatchCrop(content); ok {
			return Event{Kind: EventCrop, Crop: crop}
		}
	case store.StateAwaitingCategory:
		if cat, ok := categoryWords[content]; ok {
			return Event{Kind: EventCategory, Category: cat}
		}
	case store.StateCollectingQueries:
		if doneWords[content] {
			return Event{Kind: EventDone}
		}
	}

	return Event{Kind: EventText, Query: &store.QueryInput{Kind: store.InputText, Text: strings.TrimSpace(msg.Text)}}
}

func (c Category) valid() bool {
	switch c {
	case CategoryPestDisease, CategoryNutrition, CategoryIrrigation, CategoryVariety:
		return true
	}
	return false
}
