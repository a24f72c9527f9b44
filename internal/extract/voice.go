package extract

import (
	"regexp"
	"strings"
)

// VoiceParts is a transcript split into record fields.
type VoiceParts struct {
	Item        string `json:"item,omitempty"`
	Location    string `json:"location,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

var (
	voiceSeparator = regexp.MustCompile(`[,;]+`)
	voiceQuantity  = regexp.MustCompile(`(?i)^(\d+)\s*(pieces?|items?|boxes?|units?)?$`)
)

// ParseTranscript splits a transcript on commas and semicolons and classifies each part
// in order: quantity, location, item, then description and notes for what is left.
// Parts keep the speaker's wording. If nothing is classified as item, location or
// description, the whole transcript becomes the description.
func (e *Extractor) ParseTranscript(transcript string) VoiceParts {
	var out VoiceParts
	for _, raw := range voiceSeparator.Split(transcript, -1) {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}

		if m := voiceQuantity.FindStringSubmatch(part); m != nil && out.Quantity == "" {
			out.Quantity = m[1]
			continue
		}
		if out.Location == "" {
			if _, ok := e.matcher.FuzzyLocation(part); ok {
				out.Location = part
				continue
			}
		}
		if out.Item == "" {
			if _, ok := e.matcher.FuzzyItem(part); ok {
				out.Item = part
				continue
			}
		}

		switch {
		case out.Description == "":
			out.Description = part
		case out.Notes == "":
			out.Notes = part
		default:
			out.Notes += ", " + part
		}
	}

	if out.Item == "" && out.Location == "" && out.Description == "" {
		out.Description = strings.TrimSpace(transcript)
	}
	return out
}
