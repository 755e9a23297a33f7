package label

import (
	"regexp"
	"slices"
	"strings"

	"github.com/hitoshi/skillmap/internal/model"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor はプリセットカラーまたは#RRGGBB形式の色であればtrueを返す。
func ValidColor(c string) bool {
	return slices.Contains(model.PresetColors, strings.ToUpper(c)) || hexColorPattern.MatchString(c)
}

// DefaultColor は色未指定のラベルに使う色。
func DefaultColor() string {
	return model.PresetColors[0]
}
