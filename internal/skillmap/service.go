// Package skillmap はスキルマップの永続化とHTTP向けの所有者チェック付き操作を提供する。
//
// 1リクエストごとに行を読み込み、editor.Sessionで編集したスナップショット全体を書き戻す。
// 同じマップへの同時編集は後勝ちになる。
package skillmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/skillmap/internal/editor"
	"github.com/hitoshi/skillmap/internal/label"
	"github.com/hitoshi/skillmap/internal/metrics"
	"github.com/hitoshi/skillmap/internal/model"
	"github.com/hitoshi/skillmap/internal/repository"
	"github.com/hitoshi/skillmap/internal/security"
)

// Service はスキルマップのサービス層。
type Service struct {
	repo      repository.SkillMapRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	newID     label.IDGenerator
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合は記録しない。
func NewService(
	repo repository.SkillMapRepository,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   collector,
		newID:     label.NewUUIDGenerator(),
		now:       time.Now,
	}
}

// Create はスキルマップを作成する。設定は正規化し、ラベルには必要に応じてIDを振る。
// ラベルはサニタイズ後のテキストで検証する。
func (s *Service) Create(ctx context.Context, userID, title string, cfg model.MapConfig, labels []model.SkillLabel) (*model.SkillMap, error) {
	labels = s.sanitizeLabels(labels)
	if err := validateLabels(labels); err != nil {
		return nil, err
	}

	sess := editor.FromSkillMap(&model.SkillMap{
		Title:       s.sanitize(title),
		Config:      s.sanitizeConfig(cfg),
		SkillLabels: labels,
	}, s.newID)

	now := s.now()
	m := &model.SkillMap{
		UserID:      userID,
		Title:       sess.Title(),
		Config:      sess.Config(),
		SkillLabels: sess.Labels(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.metrics.RecordSkillMapOperation("create")
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("スキルマップの作成に失敗しました: %w", err)
	}

	slog.Info("スキルマップを作成しました",
		slog.String("user_id", userID),
		slog.String("skill_map_id", m.ID),
	)
	return m, nil
}

// Update はスキルマップを部分更新し、updated_atを現在時刻にする。
// 指定されたフィールドをサニタイズしてから検証する。
func (s *Service) Update(ctx context.Context, id string, upd model.SkillMapUpdate) (*model.SkillMap, error) {
	if !validMapID(id) {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	upd = s.sanitizeUpdate(upd)
	if err := validateLabels(upd.SkillLabels); err != nil {
		return nil, err
	}
	return s.save(ctx, id, upd)
}

// save は設定を正規化しラベルIDを補ってから書き込む。
func (s *Service) save(ctx context.Context, id string, upd model.SkillMapUpdate) (*model.SkillMap, error) {
	upd = normalizeUpdate(upd, s.newID)

	s.metrics.RecordSkillMapOperation("update")
	m, err := s.repo.Update(ctx, id, upd, s.now())
	if err != nil {
		return nil, fmt.Errorf("スキルマップの更新に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	return m, nil
}

// ListByUser はユーザーのスキルマップを更新日時の新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.SkillMap, error) {
	s.metrics.RecordSkillMapOperation("list")
	maps, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("スキルマップ一覧の取得に失敗しました: %w", err)
	}
	return maps, nil
}

// GetByID はスキルマップを取得する。UUIDとして解釈できないIDはNotFoundとなる。
func (s *Service) GetByID(ctx context.Context, id string) (*model.SkillMap, error) {
	if !validMapID(id) {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	s.metrics.RecordSkillMapOperation("get")
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("スキルマップの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	return m, nil
}

// DeleteByID はスキルマップを削除する。
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if !validMapID(id) {
		return model.NewSkillMapNotFoundError(id)
	}
	s.metrics.RecordSkillMapOperation("delete")
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewSkillMapNotFoundError(id)
		}
		return fmt.Errorf("スキルマップの削除に失敗しました: %w", err)
	}
	return nil
}

// GetForUser はユーザーが閲覧できるスキルマップを取得する。
// 他人のマップは公開されている場合のみ返し、それ以外はNotFoundとする。
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*model.SkillMap, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID && !m.IsPublic {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	return m, nil
}

// UpdateForUser は所有者のみスキルマップを部分更新できる。
func (s *Service) UpdateForUser(ctx context.Context, userID, id string, upd model.SkillMapUpdate) (*model.SkillMap, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Update(ctx, id, upd)
}

// DeleteForUser は所有者のみスキルマップを削除できる。
func (s *Service) DeleteForUser(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.DeleteByID(ctx, id)
}

// Edit は所有者のスキルマップを編集セッションに読み込み、fnで編集した状態全体を保存する。
// fnがエラーを返した場合は保存しない。
// サニタイズと検証はfnが変更したキャプションとラベルだけに行い、保存済みの値はそのまま書き戻す。
func (s *Service) Edit(ctx context.Context, userID, id string, fn func(*editor.Session) error) (*model.SkillMap, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	sess := editor.FromSkillMap(m, s.newID)
	if err := fn(sess); err != nil {
		return nil, err
	}

	upd := s.sanitizeEdited(m, sess.SaveUpdate())
	if err := validateLabels(changedLabels(m.SkillLabels, upd.SkillLabels)); err != nil {
		return nil, err
	}
	return s.save(ctx, id, upd)
}

// Layout は閲覧可能なスキルマップの描画位置一式を返す。
func (s *Service) Layout(ctx context.Context, userID, id string) (editor.Layout, error) {
	m, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return editor.Layout{}, err
	}
	return editor.FromSkillMap(m, s.newID).Layout(), nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*model.SkillMap, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, model.NewSkillMapNotFoundError(id)
	}
	return m, nil
}

// validMapID はskill_maps.idとして照会できる形式（ハイフン区切り36文字のUUID）かを返す。
func validMapID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// sanitizeUpdate は指定されたフィールドをすべてサニタイズする。
func (s *Service) sanitizeUpdate(upd model.SkillMapUpdate) model.SkillMapUpdate {
	if upd.Title != nil {
		title := s.sanitize(*upd.Title)
		upd.Title = &title
	}
	if upd.Config != nil {
		cfg := s.sanitizeConfig(*upd.Config)
		upd.Config = &cfg
	}
	if upd.SkillLabels != nil {
		upd.SkillLabels = s.sanitizeLabels(upd.SkillLabels)
	}
	return upd
}

// sanitizeEdited はprevから変化したフィールドだけをサニタイズする。
func (s *Service) sanitizeEdited(prev *model.SkillMap, upd model.SkillMapUpdate) model.SkillMapUpdate {
	if upd.Title != nil && *upd.Title != prev.Title {
		title := s.sanitize(*upd.Title)
		upd.Title = &title
	}
	if upd.Config != nil {
		cfg := s.sanitizeChangedConfig(prev.Config, *upd.Config)
		upd.Config = &cfg
	}
	if upd.SkillLabels != nil {
		before := make(map[string]string, len(prev.SkillLabels))
		for _, l := range prev.SkillLabels {
			before[l.ID] = l.Text
		}
		labels := make([]model.SkillLabel, len(upd.SkillLabels))
		for i, l := range upd.SkillLabels {
			if text, ok := before[l.ID]; !ok || text != l.Text {
				l.Text = s.sanitize(l.Text)
			}
			labels[i] = l
		}
		upd.SkillLabels = labels
	}
	return upd
}

func (s *Service) sanitizeChangedConfig(prev, cfg model.MapConfig) model.MapConfig {
	out := cfg.Clone()
	field := func(old string, v *string) {
		if *v != old {
			*v = s.sanitize(*v)
		}
	}
	field(prev.VerticalAxis.Positive, &out.VerticalAxis.Positive)
	field(prev.VerticalAxis.Negative, &out.VerticalAxis.Negative)
	field(prev.HorizontalAxis.Positive, &out.HorizontalAxis.Positive)
	field(prev.HorizontalAxis.Negative, &out.HorizontalAxis.Negative)

	pairs := [][2][]string{
		{prev.Quadrants.TopRight, out.Quadrants.TopRight},
		{prev.Quadrants.TopLeft, out.Quadrants.TopLeft},
		{prev.Quadrants.BottomLeft, out.Quadrants.BottomLeft},
		{prev.Quadrants.BottomRight, out.Quadrants.BottomRight},
	}
	for _, p := range pairs {
		old, cur := p[0], p[1]
		for i := range cur {
			if i < len(old) && old[i] == cur[i] {
				continue
			}
			cur[i] = s.sanitize(cur[i])
		}
	}
	return out
}

// changedLabels はprevに存在しないか、テキストまたは色が変わったラベルを返す。
func changedLabels(prev, cur []model.SkillLabel) []model.SkillLabel {
	before := make(map[string]model.SkillLabel, len(prev))
	for _, l := range prev {
		before[l.ID] = l
	}
	var out []model.SkillLabel
	for _, l := range cur {
		if old, ok := before[l.ID]; ok && old.Text == l.Text && old.Color == l.Color {
			continue
		}
		out = append(out, l)
	}
	return out
}

// normalizeUpdate は設定を正規化し、ラベルIDを補う。
func normalizeUpdate(upd model.SkillMapUpdate, newID label.IDGenerator) model.SkillMapUpdate {
	if upd.Config != nil {
		cfg := upd.Config.Clone()
		cfg.Normalize()
		upd.Config = &cfg
	}
	if upd.SkillLabels != nil {
		store := label.NewStore(newID)
		store.Replace(upd.SkillLabels)
		upd.SkillLabels = store.List()
	}
	return upd
}

func (s *Service) sanitize(v string) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(v)
	}
	return s.sanitizer.Sanitize(v)
}

func (s *Service) sanitizeConfig(cfg model.MapConfig) model.MapConfig {
	if s.sanitizer == nil {
		return cfg.Clone()
	}
	return security.SanitizeConfig(s.sanitizer, cfg)
}

func (s *Service) sanitizeLabels(labels []model.SkillLabel) []model.SkillLabel {
	if s.sanitizer == nil {
		return labels
	}
	return security.SanitizeLabels(s.sanitizer, labels)
}

// validateLabels はラベルのテキストと色を検証する。
func validateLabels(labels []model.SkillLabel) error {
	for _, l := range labels {
		if err := ValidateLabel(l.Text, l.Color); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLabel はラベルのテキストが空でなく、色が有効であることを検証する。
func ValidateLabel(text, color string) error {
	if strings.TrimSpace(text) == "" {
		return model.NewInvalidLabelError("ラベルのテキストを入力してください")
	}
	if !label.ValidColor(color) {
		return model.NewInvalidLabelError("色の形式が不正です")
	}
	return nil
}
