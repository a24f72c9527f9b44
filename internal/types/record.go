// Package types provides the data shapes shared by the scan-and-fill pipeline:
// recognized inputs, extracted records, and API request/response bodies.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Key identifies one of the inventory facts the extractor produces.
type Key string

const (
	KeyItem        Key = "item"
	KeyLocation    Key = "location"
	KeyQuantity    Key = "quantity"
	KeyDescription Key = "description"
	KeyNotes       Key = "notes"
	KeyItemType    Key = "type"
)

// SemanticKeys is the fixed order in which keys are scored during semantic mapping.
var SemanticKeys = []Key{KeyItem, KeyQuantity, KeyLocation, KeyDescription, KeyNotes}

// InputKind names the channel a RecognizedInput came from.
type InputKind string

const (
	InputOCR    InputKind = "ocr"
	InputVision InputKind = "vision"
	InputVoice  InputKind = "voice"
)

// RecognizedInput is the raw material of one scan. Any of the channels may be empty.
type RecognizedInput struct {
	RawText    string        `json:"rawText,omitempty"`
	Vision     *VisionResult `json:"vision,omitempty"`
	Transcript string        `json:"transcript,omitempty"`
}

// Kinds reports which channels carry content, in priority order.
func (in RecognizedInput) Kinds() []InputKind {
	var kinds []InputKind
	if strings.TrimSpace(in.Transcript) != "" {
		kinds = append(kinds, InputVoice)
	}
	if in.Vision != nil && !in.Vision.Empty() {
		kinds = append(kinds, InputVision)
	}
	if strings.TrimSpace(in.RawText) != "" {
		kinds = append(kinds, InputOCR)
	}
	return kinds
}

// FlexString decodes from either a JSON string or a JSON number.
// AI vision providers return quantity in both shapes.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: expected string or number, got %s", trimmed)
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// VisionResult is the structured JSON an AI vision provider returns for a photo.
type VisionResult struct {
	Item        string     `json:"item,omitempty"`
	Colour      string     `json:"colour,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Quantity    FlexString `json:"quantity,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Empty reports whether no field carries a value.
func (v VisionResult) Empty() bool {
	return strings.TrimSpace(v.Item+v.Colour+v.Description+v.Location+string(v.Quantity)+v.Condition+v.Notes) == ""
}

// ExtractedRecord holds the best-guess value per key together with a confidence in (0, 1].
// A nil field means the key was not found. Confidence only has entries for populated keys.
type ExtractedRecord struct {
	Item        *string         `json:"item"`
	Location    *string         `json:"location"`
	Quantity    *string         `json:"quantity"`
	Description *string         `json:"description"`
	Notes       *string         `json:"notes"`
	ItemType    *string         `json:"itemType,omitempty"`
	Confidence  map[Key]float64 `json:"confidence"`
}

// NewRecord returns an empty record with an initialized confidence map.
func NewRecord() *ExtractedRecord {
	return &ExtractedRecord{Confidence: map[Key]float64{}}
}

// Get returns the value stored for key, if any.
func (r *ExtractedRecord) Get(key Key) (string, bool) {
	if r == nil {
		return "", false
	}
	var p *string
	switch key {
	case KeyItem:
		p = r.Item
	case KeyLocation:
		p = r.Location
	case KeyQuantity:
		p = r.Quantity
	case KeyDescription:
		p = r.Description
	case KeyNotes:
		p = r.Notes
	case KeyItemType:
		p = r.ItemType
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Has reports whether key holds a value.
func (r *ExtractedRecord) Has(key Key) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores value under key with the given confidence. Blank values are ignored.
func (r *ExtractedRecord) Set(key Key, value string, confidence float64) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	v := value
	switch key {
	case KeyItem:
		r.Item = &v
	case KeyLocation:
		r.Location = &v
	case KeyQuantity:
		r.Quantity = &v
	case KeyDescription:
		r.Description = &v
	case KeyNotes:
		r.Notes = &v
	case KeyItemType:
		r.ItemType = &v
	default:
		return
	}
	if r.Confidence == nil {
		r.Confidence = map[Key]float64{}
	}
	r.Confidence[key] = confidence
}

// SetIfEmpty stores value only when key has no value yet.
func (r *ExtractedRecord) SetIfEmpty(key Key, value string, confidence float64) {
	if r.Has(key) {
		return
	}
	r.Set(key, value, confidence)
}

// ConfidenceFor returns the confidence recorded for key, or fallback when none is recorded.
func (r *ExtractedRecord) ConfidenceFor(key Key, fallback float64) float64 {
	if r == nil {
		return fallback
	}
	if c, ok := r.Confidence[key]; ok && c > 0 {
		return c
	}
	return fallback
}

// IsEmpty reports whether the record has no populated key.
func (r *ExtractedRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, k := range SemanticKeys {
		if r.Has(k) {
			return false
		}
	}
	return !r.Has(KeyItemType)
}
