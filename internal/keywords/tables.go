package keywords

// Synonym maps a phrase seen in text to the canonical display form.
type Synonym struct {
	Phrase    string `json:"phrase"`
	Canonical string `json:"canonical"`
}

// Table is an ordered keyword list plus synonyms. Order matters: the first hit wins,
// so compound phrases are listed before the words they contain.
type Table struct {
	Keywords []string  `json:"keywords"`
	Synonyms []Synonym `json:"synonyms"`
}

// Extend returns a copy of t with extra's keywords and synonyms appended.
// Entries already present are skipped.
func (t Table) Extend(extra Table) Table {
	out := Table{
		Keywords: append([]string(nil), t.Keywords...),
		Synonyms: append([]Synonym(nil), t.Synonyms...),
	}
	seenKw := make(map[string]bool, len(out.Keywords))
	for _, k := range out.Keywords {
		seenKw[k] = true
	}
	for _, k := range extra.Keywords {
		if k != "" && !seenKw[k] {
			out.Keywords = append(out.Keywords, k)
			seenKw[k] = true
		}
	}
	seenSyn := make(map[string]bool, len(out.Synonyms))
	for _, s := range out.Synonyms {
		seenSyn[s.Phrase] = true
	}
	for _, s := range extra.Synonyms {
		if s.Phrase != "" && s.Canonical != "" && !seenSyn[s.Phrase] {
			out.Synonyms = append(out.Synonyms, s)
			seenSyn[s.Phrase] = true
		}
	}
	return out
}

// DefaultLocations is the curated room/area table.
func DefaultLocations() Table {
	return Table{
		Keywords: []string{
			"master bedroom", "main bedroom", "guest bedroom",
			"bedroom 1", "bedroom 2", "bedroom 3", "bedroom",
			"kids room", "nursery",
			"living room", "front room", "sitting room", "lounge", "living",
			"dining room", "dining", "kitchen",
			"bathroom", "ensuite", "en-suite", "toilet", "wc", "cloakroom",
			"hallway", "hall", "landing", "staircase", "stairs",
			"home office", "office", "study",
			"garage", "car port", "loft", "attic", "basement", "cellar",
			"garden", "patio", "yard", "shed", "storage", "closet",
			"utility", "laundry", "conservatory", "sunroom", "porch", "entrance", "foyer",
		},
		Synonyms: []Synonym{
			{"mbr", "Master bedroom"},
			{"main bedroom", "Master bedroom"},
			{"bed 1", "Bedroom 1"},
			{"bedroom 1", "Bedroom 1"},
			{"bed 2", "Bedroom 2"},
			{"bedroom 2", "Bedroom 2"},
			{"bed 3", "Bedroom 3"},
			{"bedroom 3", "Bedroom 3"},
			{"kids room", "Kids room"},
			{"nursery", "Nursery"},
			{"lounge", "Living room"},
			{"front room", "Living room"},
			{"sitting room", "Living room"},
			{"living rm", "Living room"},
			{"liv room", "Living room"},
			{"kitchen diner", "Kitchen"},
			{"kitchen/diner", "Kitchen"},
			{"dining rm", "Dining room"},
			{"diner", "Dining room"},
			{"kit", "Kitchen"},
			{"bath rm", "Bathroom"},
			{"bathroom 1", "Bathroom"},
			{"bathroom 2", "Bathroom"},
			{"bath", "Bathroom"},
			{"ensuite", "En-suite"},
			{"en-suite", "En-suite"},
			{"wc", "Toilet"},
			{"loo", "Toilet"},
			{"cloakroom", "Cloakroom"},
			{"garage", "Garage"},
			{"loft", "Loft"},
			{"attic", "Loft"},
			{"hallway", "Hall"},
			{"hall", "Hall"},
			{"porch", "Porch"},
			{"conservatory", "Conservatory"},
			{"study", "Study"},
			{"office", "Office"},
			{"utility room", "Utility room"},
			{"utility", "Utility room"},
			{"cellar", "Cellar"},
			{"basement", "Basement"},
			{"shed", "Shed"},
			{"garden", "Garden"},
			{"driveway", "Driveway"},
			{"drive", "Driveway"},
		},
	}
}

// DefaultItems is the curated furniture/contents table.
func DefaultItems() Table {
	return Table{
		Keywords: []string{
			"wardrobe", "armoire",
			"sofa bed", "sofa", "couch", "settee", "loveseat",
			"dining table", "coffee table", "side table", "end table", "table",
			"dining chair", "desk chair", "office chair", "armchair", "recliner", "chair",
			"desk",
			"bed frame", "mattress", "headboard", "footboard", "bed",
			"chest of drawers", "drawers", "drawer", "chest", "dresser", "nightstand",
			"sideboard", "buffet", "cabinet", "cupboard", "pantry",
			"bookcase", "bookshelf", "shelving", "shelves", "shelf",
			"tv stand", "tv", "television", "monitor", "entertainment center",
			"picture", "painting", "artwork", "mirror", "floor lamp", "lamp",
			"box", "carton", "crate", "container", "bin",
			"ladder", "bicycle", "bike", "exercise equipment", "treadmill",
			"fridge freezer", "fridge", "refrigerator", "freezer",
			"washing machine", "washer", "tumble dryer", "dryer",
			"microwave", "oven", "stove", "dishwasher",
		},
		Synonyms: []Synonym{
			{"tv", "TV"},
			{"television", "TV"},
			{"carton", "box"},
		},
	}
}

// BackgroundWords describe the scene around an item rather than the item itself.
var BackgroundWords = []string{
	"wall", "floor", "room", "door", "corner", "window", "garage", "garden",
	"drive", "street", "outside", "inside", "against", "leaning", "mounted",
	"stairs", "landing",
}
