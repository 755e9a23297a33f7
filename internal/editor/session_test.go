package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hitoshi/skillmap/internal/canvas"
	"github.com/hitoshi/skillmap/internal/label"
	"github.com/hitoshi/skillmap/internal/model"
)

func TestNew_StartsEmpty(t *testing.T) {
	s := New(nil)

	if diff := cmp.Diff(model.NewMapConfig(), s.Config()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if len(s.Labels()) != 0 {
		t.Errorf("labels = %d, want 0", len(s.Labels()))
	}
}

func TestFromSkillMap_RestoresState(t *testing.T) {
	m := &model.SkillMap{
		ID:       "map-1",
		UserID:   "user-1",
		Title:    "エンジニア",
		IsPublic: true,
		Config: model.MapConfig{
			VerticalAxis: model.AxisPair{Positive: "上", Negative: "下"},
			Quadrants:    model.Quadrants{TopRight: []string{"a"}},
		},
		SkillLabels: []model.SkillLabel{{ID: "l1", Text: "Go", Color: "#3B82F6", X: 0.1, Y: 0.9}},
	}

	s := FromSkillMap(m, nil)

	if s.Title() != "エンジニア" {
		t.Errorf("Title = %q", s.Title())
	}
	cfg := s.Config()
	if cfg.VerticalAxis.Positive != "上" {
		t.Errorf("vertical positive = %q", cfg.VerticalAxis.Positive)
	}
	if len(cfg.Quadrants.TopRight) != model.QuadrantSize || len(cfg.Quadrants.BottomLeft) != model.QuadrantSize {
		t.Errorf("quadrants not normalized: %+v", cfg.Quadrants)
	}
	if got, ok := s.Label("l1"); !ok || got.Text != "Go" {
		t.Errorf("label l1 = %+v, %v", got, ok)
	}

	upd := s.SaveUpdate()
	if upd.IsPublic == nil || !*upd.IsPublic {
		t.Error("SaveUpdate should keep is_public")
	}
}

func TestSession_MoveLabel_ClampsOutsideDrag(t *testing.T) {
	s := New(nil)
	l := s.AddLabel(label.NewDraft("Go", "#3B82F6"))
	box := canvas.Rect{Left: 0, Top: 0, Width: 800, Height: 800}

	got, err := s.MoveLabel(l.ID, canvas.Point{X: 1200, Y: -50}, box)
	if err != nil {
		t.Fatalf("MoveLabel: %v", err)
	}
	if got.X != 1 || got.Y != 0 {
		t.Errorf("position = (%v, %v), want (1, 0)", got.X, got.Y)
	}
	if got.Text != "Go" || got.Color != "#3B82F6" {
		t.Errorf("move should not change text/color: %+v", got)
	}
}

func TestSession_MoveLabel_ZeroBoxSkipsUpdate(t *testing.T) {
	s := New(nil)
	l := s.AddLabel(label.NewDraft("Go", "#3B82F6"))

	_, err := s.MoveLabel(l.ID, canvas.Point{X: 10, Y: 10}, canvas.Rect{})
	if !errors.Is(err, ErrUnusableCanvas) {
		t.Fatalf("err = %v, want ErrUnusableCanvas", err)
	}
	got, _ := s.Label(l.ID)
	if got.X != label.DefaultX || got.Y != label.DefaultY {
		t.Errorf("position changed to (%v, %v)", got.X, got.Y)
	}
}

func TestSession_MoveLabel_UnknownID(t *testing.T) {
	s := New(nil)
	_, err := s.MoveLabel("nope", canvas.Point{}, canvas.Rect{Width: 1, Height: 1})
	if !errors.Is(err, label.ErrNotFound) {
		t.Errorf("err = %v, want label.ErrNotFound", err)
	}
}

func TestSession_AxisAndQuadrantEdits(t *testing.T) {
	s := New(nil)

	if err := s.SetAxisCaption(canvas.AxisHorizontal, canvas.DirectionPositive, "高い習熟度"); err != nil {
		t.Fatalf("SetAxisCaption: %v", err)
	}
	if err := s.SetQuadrantLabels(canvas.QuadrantBottomRight, []string{"現状維持", "効率化", "自動化検討", "他者移譲"}); err != nil {
		t.Fatalf("SetQuadrantLabels: %v", err)
	}

	cfg := s.Config()
	if cfg.HorizontalAxis.Positive != "高い習熟度" || cfg.HorizontalAxis.Negative != "" {
		t.Errorf("horizontal axis = %+v", cfg.HorizontalAxis)
	}
	if cfg.VerticalAxis != (model.AxisPair{}) {
		t.Errorf("vertical axis should be untouched: %+v", cfg.VerticalAxis)
	}
	if cfg.Quadrants.BottomRight[3] != "他者移譲" {
		t.Errorf("bottomRight = %v", cfg.Quadrants.BottomRight)
	}
}

func TestSession_ApplyConfig_Normalizes(t *testing.T) {
	s := New(nil)
	s.ApplyConfig(model.MapConfig{Quadrants: model.Quadrants{TopLeft: []string{"1", "2", "3", "4", "5"}}})

	cfg := s.Config()
	if len(cfg.Quadrants.TopLeft) != model.QuadrantSize || len(cfg.Quadrants.TopRight) != model.QuadrantSize {
		t.Errorf("ApplyConfig should normalize quadrants: %+v", cfg.Quadrants)
	}
}

func TestSession_Layout(t *testing.T) {
	s := New(nil)
	l := s.AddLabel(label.Draft{Text: "Go", Color: "#3B82F6", X: 0.25, Y: 0.75})

	layout := s.Layout()
	if len(layout.Axes) != 4 {
		t.Errorf("axes = %d, want 4", len(layout.Axes))
	}
	if len(layout.Quadrants) != 16 {
		t.Errorf("quadrant captions = %d, want 16", len(layout.Quadrants))
	}
	if len(layout.Labels) != 1 || layout.Labels[0].ID != l.ID {
		t.Fatalf("labels = %+v", layout.Labels)
	}
	if layout.Labels[0].Position != (canvas.Position{LeftPercent: 25, TopPercent: 75}) {
		t.Errorf("label position = %+v", layout.Labels[0].Position)
	}
}

func TestSession_SaveUpdate_SnapshotsEverything(t *testing.T) {
	s := New(nil)
	s.SetTitle("マップ")
	s.AddLabel(label.NewDraft("Go", "#3B82F6"))

	upd := s.SaveUpdate()
	if upd.Title == nil || *upd.Title != "マップ" {
		t.Errorf("title = %v", upd.Title)
	}
	if upd.Config == nil || len(upd.SkillLabels) != 1 {
		t.Errorf("update = %+v", upd)
	}

	// スナップショット後の編集はスナップショットに影響しない
	s.AddLabel(label.NewDraft("Rust", "#EF4444"))
	if len(upd.SkillLabels) != 1 {
		t.Error("snapshot should be detached from the session")
	}
}
