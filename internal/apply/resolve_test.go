package apply

import (
	"testing"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/stretchr/testify/assert"
)

func TestResolveOption(t *testing.T) {
	options := []form.Option{
		{Value: "", Label: "Choose"},
		{Value: "lr", Label: "Living room"},
		{Value: "mbr", Label: "Master bedroom"},
		{Value: "kitchen", Label: "Kitchen"},
	}

	tests := []struct {
		name     string
		value    string
		expected string
		found    bool
	}{
		{"exact label", "living room", "lr", true},
		{"exact value", "MBR", "mbr", true},
		{"option contains value", "master", "mbr", true},
		{"value contains option", "kitchen diner", "kitchen", true},
		{"fuzzy", "kitchn", "kitchen", true},
		{"placeholder is never picked by containment", "zzzzzzzzzz", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveOption(options, tt.value)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.expected, got.Value)
			}
		})
	}
}

func TestResolveRadio(t *testing.T) {
	group := []form.Control{
		{Value: "good", Label: "Good condition"},
		{Value: "damaged", Label: "Damaged"},
	}

	c, ok := ResolveRadio(group, "Damaged")
	assert.True(t, ok)
	assert.Equal(t, "damaged", c.Value)

	c, ok = ResolveRadio(group, "condition")
	assert.True(t, ok)
	assert.Equal(t, "good", c.Value)

	c, ok = ResolveRadio(group, "looks good overall")
	assert.True(t, ok)
	assert.Equal(t, "good", c.Value)

	_, ok = ResolveRadio(group, "new")
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"true", "YES", " 1 ", "on", "checked"} {
		assert.True(t, Truthy(v), v)
	}
	for _, v := range []string{"", "no", "0", "false", "maybe"} {
		assert.False(t, Truthy(v), v)
	}
}
