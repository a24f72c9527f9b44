// Package extract turns recognized input (OCR text, AI vision JSON or a voice
// transcript) into an ExtractedRecord with a confidence per populated key.
package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/keywords"
	"github.com/jonathan/appycrew-ocr/internal/textnorm"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// Confidence levels per channel.
const (
	VoiceConfidence     = 0.95
	VoiceTextConfidence = 0.9

	VisionItemConfidence        = 0.85
	VisionDescriptionConfidence = 0.8
	VisionLocationConfidence    = 0.8
	VisionQuantityConfidence    = 0.8
	VisionNotesConfidence       = 0.75

	OCRQuantityConfidence    = 0.9
	OCRLocationConfidence    = 0.8
	OCRItemConfidence        = 0.75
	OCRDescriptionConfidence = 0.6

	ItemTypeConfidence = 0.7
)

// DocumentLength is the length from which OCR text is treated as a document and used
// verbatim as the description.
const DocumentLength = 140

// MaxDescriptionWords caps summarized descriptions.
const MaxDescriptionWords = 4

var quantityPattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s*[x×]?\s*(pcs?|pieces?|items?|boxes?|units?)?\b`)

// Extractor builds records from recognized input. It holds no per-scan state and is
// safe for concurrent use.
type Extractor struct {
	matcher    *keywords.Matcher
	normalizer *textnorm.Normalizer
	background map[string]bool
}

// New creates an Extractor. Nil arguments fall back to the built-in tables.
func New(matcher *keywords.Matcher, normalizer *textnorm.Normalizer) *Extractor {
	if matcher == nil {
		matcher = keywords.Default()
	}
	if normalizer == nil {
		normalizer = textnorm.Default()
	}
	bg := make(map[string]bool, len(keywords.BackgroundWords))
	for _, w := range keywords.BackgroundWords {
		bg[w] = true
	}
	return &Extractor{matcher: matcher, normalizer: normalizer, background: bg}
}

// Default returns an Extractor over the built-in tables.
func Default() *Extractor {
	return New(nil, nil)
}

// Matcher returns the keyword matcher the extractor uses.
func (e *Extractor) Matcher() *keywords.Matcher { return e.matcher }

// Normalizer returns the text normalizer the extractor uses.
func (e *Extractor) Normalizer() *textnorm.Normalizer { return e.normalizer }

// Extract builds a fresh record from in. A non-empty transcript wins outright; otherwise
// vision fields are taken first and OCR heuristics fill what is left.
func (e *Extractor) Extract(in types.RecognizedInput) *types.ExtractedRecord {
	if strings.TrimSpace(in.Transcript) != "" {
		return e.fromVoice(in.Transcript)
	}

	rec := types.NewRecord()
	removed := newWordSet()

	v := in.Vision
	if v != nil && v.Empty() {
		v = nil
	}
	if v != nil {
		rec.Set(types.KeyItem, v.Item, VisionItemConfidence)
		rec.Set(types.KeyLocation, v.Location, VisionLocationConfidence)
		rec.Set(types.KeyQuantity, string(v.Quantity), VisionQuantityConfidence)
		notes := v.Notes
		if strings.TrimSpace(notes) == "" {
			notes = v.Condition
		}
		rec.Set(types.KeyNotes, notes, VisionNotesConfidence)
		removed.addWords(v.Item, v.Location, string(v.Quantity))
	}

	text := e.normalizer.Normalize(in.RawText)
	descText := text
	anchored := false

	if text != "" {
		if loc := quantityPattern.FindStringSubmatchIndex(text); loc != nil {
			rec.SetIfEmpty(types.KeyQuantity, text[loc[2]:loc[3]], OCRQuantityConfidence)
			descText = text[:loc[0]] + " " + text[loc[1]:]
		}

		if match, ok := e.matcher.FindLocation(text); ok {
			rec.SetIfEmpty(types.KeyLocation, match.Canonical, OCRLocationConfidence)
			removed.addWords(match.Canonical, match.Phrase)
			anchored = true
		}

		items := e.matcher.FindItems(text)
		if len(items) > 0 {
			rec.SetIfEmpty(types.KeyItem, items[0].Canonical, OCRItemConfidence)
			for _, it := range items {
				removed.addWords(it.Canonical, it.Phrase)
			}
			anchored = true
		}

		visionItem := ""
		if v != nil {
			visionItem = v.Item
		}
		if kind := DeriveItemType(text, items, visionItem); kind != "" {
			rec.Set(types.KeyItemType, kind, ItemTypeConfidence)
		}
	} else if v != nil {
		if kind := DeriveItemType("", nil, v.Item); kind != "" {
			rec.Set(types.KeyItemType, kind, ItemTypeConfidence)
		}
	}

	if item, ok := rec.Get(types.KeyItem); ok {
		removed.addWords(item)
	}
	if loc, ok := rec.Get(types.KeyLocation); ok {
		removed.addWords(loc)
	}

	if v != nil {
		source := strings.TrimSpace(v.Description)
		if source == "" {
			source = strings.TrimSpace(v.Colour)
		}
		if source != "" {
			rec.Set(types.KeyDescription, e.Summarize(source, v.Colour, removed), VisionDescriptionConfidence)
		}
	}

	if !rec.Has(types.KeyDescription) && text != "" {
		switch {
		case len(text) >= DocumentLength:
			rec.Set(types.KeyDescription, text, OCRDescriptionConfidence)
		case anchored:
			desc := e.Summarize(descText, "", removed)
			if strings.TrimSpace(desc) == "" {
				desc = text
			}
			rec.Set(types.KeyDescription, desc, OCRDescriptionConfidence)
		}
	}

	return rec
}

// Summarize shortens free text into a description: words already used by other keys and
// background words are dropped and at most MaxDescriptionWords remain. An empty result
// falls back to colour, then to the source text verbatim.
func (e *Extractor) Summarize(source, colour string, removed WordSet) string {
	var kept []string
	for _, tok := range strings.Fields(source) {
		core := coreWord(tok)
		if core == "" || core == "x" {
			continue
		}
		if removed.has(core) || e.background[core] {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == MaxDescriptionWords {
			break
		}
	}

	desc := strings.Trim(strings.Join(kept, " "), " ,;:-")
	if desc == "" {
		desc = strings.TrimSpace(colour)
	}
	if desc == "" {
		desc = strings.TrimSpace(source)
	}
	return desc
}

func (e *Extractor) fromVoice(transcript string) *types.ExtractedRecord {
	parts := e.ParseTranscript(transcript)
	rec := types.NewRecord()
	rec.Set(types.KeyItem, parts.Item, VoiceConfidence)
	rec.Set(types.KeyLocation, parts.Location, VoiceConfidence)
	rec.Set(types.KeyQuantity, parts.Quantity, VoiceConfidence)
	rec.Set(types.KeyDescription, parts.Description, VoiceTextConfidence)
	rec.Set(types.KeyNotes, parts.Notes, VoiceTextConfidence)
	return rec
}
