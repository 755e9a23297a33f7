package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewMapConfig_AllFieldsEmpty(t *testing.T) {
	cfg := NewMapConfig()

	if cfg.VerticalAxis != (AxisPair{}) || cfg.HorizontalAxis != (AxisPair{}) {
		t.Errorf("axes should be empty, got %+v %+v", cfg.VerticalAxis, cfg.HorizontalAxis)
	}
	for name, q := range map[string][]string{
		"topRight":    cfg.Quadrants.TopRight,
		"topLeft":     cfg.Quadrants.TopLeft,
		"bottomLeft":  cfg.Quadrants.BottomLeft,
		"bottomRight": cfg.Quadrants.BottomRight,
	} {
		if len(q) != QuadrantSize {
			t.Errorf("%s len = %d, want %d", name, len(q), QuadrantSize)
		}
	}
}

func TestMapConfig_JSONNeverNull(t *testing.T) {
	cfg := NewMapConfig()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"verticalAxis":{"positive":"","negative":""},"horizontalAxis":{"positive":"","negative":""},"quadrants":{"topRight":["","","",""],"topLeft":["","","",""],"bottomLeft":["","","",""],"bottomRight":["","","",""]}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}

func TestMapConfig_Normalize(t *testing.T) {
	cfg := MapConfig{
		Quadrants: Quadrants{
			TopRight:   []string{"a", "b"},
			TopLeft:    []string{"1", "2", "3", "4", "5"},
			BottomLeft: nil,
		},
	}
	cfg.Normalize()

	want := Quadrants{
		TopRight:    []string{"a", "b", "", ""},
		TopLeft:     []string{"1", "2", "3", "4"},
		BottomLeft:  []string{"", "", "", ""},
		BottomRight: []string{"", "", "", ""},
	}
	if diff := cmp.Diff(want, cfg.Quadrants); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestMapConfig_Clone_IsIndependent(t *testing.T) {
	cfg := NewMapConfig()
	clone := cfg.Clone()
	clone.Quadrants.TopRight[0] = "changed"

	if cfg.Quadrants.TopRight[0] != "" {
		t.Error("Clone should not share quadrant slices")
	}
}

func TestSkillMapUpdate_IsEmpty(t *testing.T) {
	if !(SkillMapUpdate{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
	title := "t"
	if (SkillMapUpdate{Title: &title}).IsEmpty() {
		t.Error("update with title should not be empty")
	}
	if (SkillMapUpdate{SkillLabels: []SkillLabel{}}).IsEmpty() {
		t.Error("update with empty label slice should not be empty")
	}
}
