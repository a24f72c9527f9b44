package mapping

import "github.com/jonathan/appycrew-ocr/internal/types"

// semanticOrder is the order keys are tried in pass 2; earlier keys win ties.
var semanticOrder = append(append([]types.Key(nil), types.SemanticKeys...), types.KeyItemType)

// DefaultSynonyms returns the label vocabulary per key. "name" is left out of item and
// "notes" out of description so that name and notes fields are not claimed by them.
func DefaultSynonyms() map[types.Key][]string {
	return map[types.Key][]string{
		types.KeyItem:        {"item", "product", "object", "article", "furniture", "what", "thing", "piece"},
		types.KeyLocation:    {"location", "room", "place", "where", "area", "site", "position", "from", "origin"},
		types.KeyQuantity:    {"qty", "quantity", "count", "number", "amount", "how many", "no of", "no.", "num", "units"},
		types.KeyDescription: {"description", "details", "info", "condition", "appearance", "desc", "about"},
		types.KeyNotes:       {"notes", "comments", "remarks", "additional", "extra", "other", "memo"},
		types.KeyItemType:    {"type", "category", "kind"},
	}
}
