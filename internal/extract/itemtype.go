package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/keywords"
	"github.com/jonathan/appycrew-ocr/internal/textnorm"
)

// Item types reported for fields hinted "type".
const (
	ItemTypeFlatPack  = "flat-pack"
	ItemTypeBox       = "box"
	ItemTypeFurniture = "furniture"
)

var furnitureWords = []string{"chair", "sofa", "table", "desk", "wardrobe", "bed"}

// boxPattern matches box and carton as whole words, so "toolbox" or "Xbox" do not count.
var boxPattern = regexp.MustCompile(`(?i)\b(box(es)?|cartons?)\b`)

// DeriveItemType classifies a scan as flat-pack, box or furniture. It returns "" when
// nothing points either way.
func DeriveItemType(text string, items []keywords.Match, visionItem string) string {
	lower := textnorm.Fold(text)
	if strings.Contains(lower, "flat pack") || strings.Contains(lower, "flat-pack") || strings.Contains(lower, "flatpack") {
		return ItemTypeFlatPack
	}
	if boxPattern.MatchString(lower) {
		return ItemTypeBox
	}
	if len(items) > 0 {
		return ItemTypeFurniture
	}
	vi := textnorm.Fold(visionItem)
	for _, w := range furnitureWords {
		if strings.Contains(vi, w) {
			return ItemTypeFurniture
		}
	}
	return ""
}
