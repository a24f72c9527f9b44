package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Item", "item"},
		{"punctuation to space", "Job-No.", "job no"},
		{"collapses runs", "  Container   Number:: ", "container number"},
		{"empty", "", ""},
		{"symbols only", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLabel(tt.input))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := Default()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"drops bare labels", "Item\nSofa\nQty\n2", "Sofa\n2"},
		{"drops label with punctuation", "Job No.\nWardrobe", "Wardrobe"},
		{"strips label prefix", "Item: Sofa\nQuantity = 3\nLocation - Lounge", "Sofa\n3\nLounge"},
		{"keeps non label prefix", "Master-bedroom", "Master-bedroom"},
		{"keeps prefix with empty value", "Item:", ""},
		{"removes noise", "FRAGILE\nHandle with care glass vase\nAppyCrew", "glass vase"},
		{"noise across spaces", "this  side   up boxes", "boxes"},
		{"noise whole words only", "heavyweight desk", "heavyweight desk"},
		{"drops blank lines", "Sofa\n\n\n  \nChair", "Sofa\nChair"},
		{"collapses whitespace", "  oak \t  wardrobe  ", "oak wardrobe"},
		{"windows newlines", "Item: Bed\r\nLoft", "Bed\nLoft"},
		{"never reorders", "b\na\nc", "b\na\nc"},
		{"nested label prefix", "Item: Type: Chair", "Chair"},
		{"noise then label", "Fragile - Item: Lamp", "Lamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_NormalizeIsIdempotent(t *testing.T) {
	n := Default()
	inputs := []string{
		"Wardrobe\nOak, large\nMaster bedroom\n2",
		"Item: Type: Chair\nFRAGILE\nQty - 4",
		"Description: Item\nLocation: mbr",
		"Heavy - Fragile - Keep dry",
		"  Job number =  Driver:  ",
		"Ｓｏｆａ　ｂｅｄ",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizer_NeverRetainsLabelOnlyLines(t *testing.T) {
	n := Default()
	out := n.Normalize("Item\nType\nDescription\nqty\nClient\nContainer level\nDate")
	assert.Empty(t, out)
}

func TestNormalizer_Clean(t *testing.T) {
	n := Default()
	in := "AppyCrew removals\r\nItem: sofa\n\n\n\nfragile glass"
	assert.Equal(t, "removals\nItem: sofa\n\nglass", n.Clean(in))
	assert.Equal(t, "", n.Clean(""))
}

func TestNew_CustomLists(t *testing.T) {
	n := New([]string{"room"}, []string{"acme movers"})
	assert.Equal(t, "Kitchen", n.Normalize("ACME Movers\nRoom: Kitchen"))
	assert.True(t, n.IsLabel("ROOM"))
	assert.False(t, n.IsLabel("item"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe", Fold("Café"))
	assert.Equal(t, "sofa bed", Fold("SOFA bed"))
}

func TestCleanUnicode(t *testing.T) {
	assert.Equal(t, "Sofa\nbed", CleanUnicode("Sofa\r\nbed\x00"))
	assert.Equal(t, "Sofa", CleanUnicode("Ｓｏｆａ"))
}
