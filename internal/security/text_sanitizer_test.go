package security

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hitoshi/skillmap/internal/model"
)

func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "React", "React"},
		{"japanese", "デザイン思考", "デザイン思考"},
		{"strips tags", "<b>Go</b>", "Go"},
		{"drops script content", "<script>alert(1)</script>TypeScript", "TypeScript"},
		{"keeps ampersand as text", "R & D", "R & D"},
		{"strips event handlers", `<img src=x onerror="alert(1)">UX`, "UX"},
		{"trims whitespace", "  Kotlin \n", "Kotlin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()
	inputs := []string{
		"<i>a</i> & b",
		"高い重要度",
		"x < y",
		"a &lt;b&gt;c",
		"&amp;lt;i&amp;gt;x&amp;lt;/i&amp;gt;",
		"<b></b>",
		"&lt;script&gt;alert(1)&lt;/script&gt;Go",
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		if twice := s.Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestTextSanitizer_EscapedTagsAreStripped(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		in   string
		want string
	}{
		{"a &lt;b&gt;c", "a c"},
		{"&amp;lt;i&amp;gt;x", "x"},
		{"<b></b>", ""},
		{"&lt;b&gt;&lt;/b&gt;", ""},
	}
	for _, tt := range tests {
		if got := s.Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextSanitizer_TruncatesLongText(t *testing.T) {
	s := NewTextSanitizer()
	got := s.Sanitize(strings.Repeat("あ", MaxTextLength+50))
	if n := utf8.RuneCountInString(got); n != MaxTextLength {
		t.Errorf("rune count = %d, want %d", n, MaxTextLength)
	}
}

func TestSanitizeConfig(t *testing.T) {
	cfg := model.NewMapConfig()
	cfg.VerticalAxis.Positive = "<em>高い</em>"
	cfg.Quadrants.BottomLeft[2] = "<script>x</script>情報収集"

	got := SanitizeConfig(NewTextSanitizer(), cfg)

	if got.VerticalAxis.Positive != "高い" {
		t.Errorf("vertical positive = %q", got.VerticalAxis.Positive)
	}
	if got.Quadrants.BottomLeft[2] != "情報収集" {
		t.Errorf("bottomLeft[2] = %q", got.Quadrants.BottomLeft[2])
	}
	if cfg.VerticalAxis.Positive != "<em>高い</em>" || cfg.Quadrants.BottomLeft[2] != "<script>x</script>情報収集" {
		t.Error("SanitizeConfig should not mutate its input")
	}
}

func TestSanitizeLabels(t *testing.T) {
	labels := []model.SkillLabel{{ID: "1", Text: "<b>Go</b>", Color: "#3B82F6", X: 0.1, Y: 0.2}}
	got := SanitizeLabels(NewTextSanitizer(), labels)
	if got[0].Text != "Go" || got[0].X != 0.1 || got[0].Color != "#3B82F6" {
		t.Errorf("SanitizeLabels = %+v", got[0])
	}
	if SanitizeLabels(NewTextSanitizer(), nil) != nil {
		t.Error("nil labels should stay nil")
	}
}
