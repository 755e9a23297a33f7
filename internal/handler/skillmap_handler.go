package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/skillmap/internal/canvas"
	"github.com/hitoshi/skillmap/internal/editor"
	"github.com/hitoshi/skillmap/internal/label"
	"github.com/hitoshi/skillmap/internal/model"
	"github.com/hitoshi/skillmap/internal/skillmap"
)

// SkillMapServiceInterface はスキルマップハンドラーが必要とするサービスインターフェース。
// すべての操作はログインユーザーの権限で行う。
type SkillMapServiceInterface interface {
	Create(ctx context.Context, userID, title string, cfg model.MapConfig, labels []model.SkillLabel) (*model.SkillMap, error)
	ListByUser(ctx context.Context, userID string) ([]*model.SkillMap, error)
	GetForUser(ctx context.Context, userID, id string) (*model.SkillMap, error)
	UpdateForUser(ctx context.Context, userID, id string, upd model.SkillMapUpdate) (*model.SkillMap, error)
	DeleteForUser(ctx context.Context, userID, id string) error
	Edit(ctx context.Context, userID, id string, fn func(*editor.Session) error) (*model.SkillMap, error)
	Layout(ctx context.Context, userID, id string) (editor.Layout, error)
}

// MapRenderer はスキルマップを画像に描画する。
type MapRenderer interface {
	Render(w io.Writer, title string, layout editor.Layout) error
}

// SkillMapHandler はスキルマップと、その軸・象限・ラベル編集のHTTPハンドラー。
type SkillMapHandler struct {
	service  SkillMapServiceInterface
	renderer MapRenderer
}

// NewSkillMapHandler はSkillMapHandlerを生成する。rendererがnilの場合、PNG出力は500を返す。
func NewSkillMapHandler(service SkillMapServiceInterface, renderer MapRenderer) *SkillMapHandler {
	return &SkillMapHandler{service: service, renderer: renderer}
}

type skillMapResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Title       string             `json:"title"`
	Config      model.MapConfig    `json:"config"`
	SkillLabels []model.SkillLabel `json:"skill_labels"`
	IsPublic    bool               `json:"is_public"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toSkillMapResponse(m *model.SkillMap) skillMapResponse {
	labels := m.SkillLabels
	if labels == nil {
		labels = []model.SkillLabel{}
	}
	return skillMapResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Config:      m.Config,
		SkillLabels: labels,
		IsPublic:    m.IsPublic,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type createSkillMapRequest struct {
	Title       string             `json:"title"`
	Config      *model.MapConfig   `json:"config"`
	SkillLabels []model.SkillLabel `json:"skill_labels"`
}

// updateSkillMapRequest は部分更新のボディ。skill_labelsにnullまたは[]を渡すと全削除になる。
type updateSkillMapRequest struct {
	Title       *string             `json:"title"`
	Config      *model.MapConfig    `json:"config"`
	SkillLabels *[]model.SkillLabel `json:"skill_labels"`
	IsPublic    *bool               `json:"is_public"`
}

type addLabelRequest struct {
	Text  string   `json:"text"`
	Color string   `json:"color"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type updateLabelRequest struct {
	Text  *string  `json:"text"`
	Color *string  `json:"color"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type moveLabelRequest struct {
	Point canvas.Point `json:"point"`
	Box   canvas.Rect  `json:"box"`
}

type axisCaptionRequest struct {
	Value string `json:"value"`
}

type quadrantLabelsRequest struct {
	Labels []string `json:"labels"`
}

// List はログインユーザーのスキルマップを更新日時の新しい順に返す。
// GET /api/skill-maps
func (h *SkillMapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	maps, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]skillMapResponse, len(maps))
	for i, m := range maps {
		resp[i] = toSkillMapResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create はスキルマップを作成する。configを省略した場合は空の設定になる。
// POST /api/skill-maps
func (h *SkillMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createSkillMapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	cfg := model.NewMapConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	m, err := h.service.Create(r.Context(), userID, req.Title, cfg, req.SkillLabels)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSkillMapResponse(m))
}

// Get はスキルマップを返す。
// GET /api/skill-maps/{id}
func (h *SkillMapHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetForUser(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillMapResponse(m))
}

// Update はスキルマップを部分更新する。
// PATCH /api/skill-maps/{id}
func (h *SkillMapHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateSkillMapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	upd := model.SkillMapUpdate{Title: req.Title, Config: req.Config, IsPublic: req.IsPublic}
	if req.SkillLabels != nil {
		upd.SkillLabels = *req.SkillLabels
		if upd.SkillLabels == nil {
			upd.SkillLabels = []model.SkillLabel{}
		}
	}
	if upd.IsEmpty() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	m, err := h.service.UpdateForUser(r.Context(), userID, chi.URLParam(r, "id"), upd)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillMapResponse(m))
}

// Delete はスキルマップを削除する。
// DELETE /api/skill-maps/{id}
func (h *SkillMapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteForUser(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLabel はラベルを追加する。色を省略した場合はプリセットの先頭色、座標を省略した場合は中央になる。
// POST /api/skill-maps/{id}/labels
func (h *SkillMapHandler) AddLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addLabelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	if req.Color == "" {
		req.Color = label.DefaultColor()
	}
	if err := skillmap.ValidateLabel(req.Text, req.Color); err != nil {
		handleServiceError(w, err)
		return
	}

	draft := label.NewDraft(req.Text, req.Color)
	if req.X != nil {
		draft.X = *req.X
	}
	if req.Y != nil {
		draft.Y = *req.Y
	}

	var added model.SkillLabel
	m, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		added = s.AddLabel(draft)
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeSavedLabel(w, http.StatusCreated, m, added.ID)
}

// UpdateLabel は指定されたフィールドだけラベルを更新する。
// PATCH /api/skill-maps/{id}/labels/{labelID}
func (h *SkillMapHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	labelID := chi.URLParam(r, "labelID")

	var req updateLabelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	if err := validatePatch(req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := label.Patch{Text: req.Text, Color: req.Color, X: req.X, Y: req.Y}
	m, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		_, err := s.UpdateLabel(labelID, patch)
		return labelError(err, labelID)
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeSavedLabel(w, http.StatusOK, m, labelID)
}

// DeleteLabel はラベルを削除する。
// 存在しないラベルIDの場合は何も保存せず204を返す。
// DELETE /api/skill-maps/{id}/labels/{labelID}
func (h *SkillMapHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	labelID := chi.URLParam(r, "labelID")

	_, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		return s.DeleteLabel(labelID)
	})
	if err != nil && !errors.Is(err, label.ErrNotFound) {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveLabel はドラッグ終了位置をキャンバス矩形で正規化してラベルを移動する。
// 矩形が使えない場合は422を返し、保存しない。
// POST /api/skill-maps/{id}/labels/{labelID}/move
func (h *SkillMapHandler) MoveLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	labelID := chi.URLParam(r, "labelID")

	var req moveLabelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	m, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		_, err := s.MoveLabel(labelID, req.Point, req.Box)
		if errors.Is(err, editor.ErrUnusableCanvas) {
			return model.NewInvalidCanvasError()
		}
		return labelError(err, labelID)
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeSavedLabel(w, http.StatusOK, m, labelID)
}

// SetAxisCaption は軸の片端のキャプションを更新する。
// PUT /api/skill-maps/{id}/axes/{axis}/{direction}
func (h *SkillMapHandler) SetAxisCaption(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	axis, err := canvas.ParseAxis(chi.URLParam(r, "axis"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAxisError(chi.URLParam(r, "axis")))
		return
	}
	dir, err := canvas.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAxisError(chi.URLParam(r, "direction")))
		return
	}

	var req axisCaptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	m, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		return s.SetAxisCaption(axis, dir, req.Value)
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillMapResponse(m))
}

// SetQuadrantLabels は1象限の4つのサブセルラベルを置き換える。
// PUT /api/skill-maps/{id}/quadrants/{quadrant}
func (h *SkillMapHandler) SetQuadrantLabels(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "quadrant")
	q, err := canvas.ParseQuadrant(raw)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQuadrantError(raw))
		return
	}

	var req quadrantLabelsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	if len(req.Labels) != model.QuadrantSize {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQuadrantError(fmt.Sprintf("%s: %d件", raw, len(req.Labels))))
		return
	}

	m, err := h.service.Edit(r.Context(), userID, chi.URLParam(r, "id"), func(s *editor.Session) error {
		return s.SetQuadrantLabels(q, req.Labels)
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillMapResponse(m))
}

// Layout は軸キャプション、象限サブセル、ラベルの描画位置（%）を返す。
// GET /api/skill-maps/{id}/layout
func (h *SkillMapHandler) Layout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	layout, err := h.service.Layout(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// ExportPNG はスキルマップをPNG画像として返す。
// GET /api/skill-maps/{id}/export.png
func (h *SkillMapHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	m, err := h.service.GetForUser(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.renderer == nil {
		handleServiceError(w, errors.New("PNG出力が設定されていません"))
		return
	}

	layout := editor.FromSkillMap(m, label.NewUUIDGenerator()).Layout()
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, m.Title, layout); err != nil {
		slog.Error("PNGの描画に失敗しました",
			slog.String("skill_map_id", id),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="skill-map-%s.png"`, m.ID))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// writeSavedLabel は保存後のスキルマップから該当ラベルを探して返す。
func (h *SkillMapHandler) writeSavedLabel(w http.ResponseWriter, status int, m *model.SkillMap, labelID string) {
	for _, l := range m.SkillLabels {
		if l.ID == labelID {
			writeJSON(w, status, l)
			return
		}
	}
	writeAPIErrorResponse(w, http.StatusNotFound, model.NewSkillLabelNotFoundError(labelID))
}

// labelError はlabel.ErrNotFoundをラベルIDを含むAPIErrorに置き換える。
func labelError(err error, labelID string) error {
	if errors.Is(err, label.ErrNotFound) {
		return model.NewSkillLabelNotFoundError(labelID)
	}
	return err
}

func validatePatch(req updateLabelRequest) error {
	if req.Text == nil && req.Color == nil && req.X == nil && req.Y == nil {
		return model.NewInvalidRequestError()
	}
	text, color := "x", label.DefaultColor()
	if req.Text != nil {
		text = *req.Text
	}
	if req.Color != nil {
		color = *req.Color
	}
	return skillmap.ValidateLabel(text, color)
}
