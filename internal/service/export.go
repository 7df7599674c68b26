package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"loanlook/internal/clients"
	"loanlook/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute
	exportType   = "report"
)

var ErrExportNotFound = errors.New("export not found")

type ExportStatus struct {
	Key      string        `json:"key"`
	Type     string        `json:"type"`
	UserID   int64         `json:"user_id"`
	Filters  ReportRequest `json:"filters"`
	Progress float64       `json:"progress"`
	FileURL  *string       `json:"file_url"`
	FileName string        `json:"file_name,omitempty"`
	Error    *string       `json:"error,omitempty"`
	Created  time.Time     `json:"created_at"`
}

// ExportView is an ExportStatus as shown to its owner.
type ExportView struct {
	Key       string        `json:"key"`
	Type      string        `json:"type"`
	UserID    int64         `json:"user_id"`
	Progress  float64       `json:"progress"`
	FileURL   *string       `json:"file_url"`
	Error     *string       `json:"error,omitempty"`
	Filters   ReportRequest `json:"filters"`
	CreatedAt string        `json:"created_at"`
}

type ReportBuilder interface {
	Build(ctx context.Context, req ReportRequest) (domain.ReportAggregate, error)
	Location() *time.Location
}

type StatusStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type FileStore interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, name string) (string, error)
}

type Notifier interface {
	NotifyExportProgress(ctx context.Context, userID int64, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, userID int64, exportID, url, filename string) error
	NotifyExportFailed(ctx context.Context, userID int64, exportID, errMsg string) error
}

type ExportService struct {
	reports ReportBuilder
	store   StatusStore
	files   FileStore
	notify  Notifier
	log     zerolog.Logger

	wg  sync.WaitGroup
	now func() time.Time
}

func NewExportService(reports ReportBuilder, store StatusStore, files FileStore, notify Notifier, log zerolog.Logger) *ExportService {
	return &ExportService{
		reports: reports,
		store:   store,
		files:   files,
		notify:  notify,
		log:     log.With().Str("component", "export").Logger(),
		now:     time.Now,
	}
}

// Wait blocks until every export started so far has finished.
func (s *ExportService) Wait() {
	s.wg.Wait()
}

func (s *ExportService) saveStatus(ctx context.Context, st *ExportStatus) error {
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}
	return s.store.SAdd(ctx, exportSetKey, st.Key)
}

func (s *ExportService) progress(ctx context.Context, st *ExportStatus, progress float64, stage string) {
	st.Progress = progress
	if err := s.saveStatus(ctx, st); err != nil {
		s.log.Warn().Err(err).Str("export_id", st.Key).Msg("save export status")
	}
	if s.notify != nil {
		_ = s.notify.NotifyExportProgress(ctx, st.UserID, st.Key, progress, stage)
	}
}

func (s *ExportService) fail(ctx context.Context, st *ExportStatus, err error) {
	msg := err.Error()
	s.log.Error().Err(err).Str("export_id", st.Key).Int64("user_id", st.UserID).Msg("report export failed")

	st.Error = &msg
	st.Progress = 100
	if err := s.saveStatus(ctx, st); err != nil {
		s.log.Warn().Err(err).Str("export_id", st.Key).Msg("save export status")
	}
	if s.notify != nil {
		_ = s.notify.NotifyExportFailed(ctx, st.UserID, st.Key, msg)
	}
}

// StartReportExport validates req, records a pending export and builds the
// workbook in the background. The returned id is the status key.
func (s *ExportService) StartReportExport(ctx context.Context, req ReportRequest, userID int64) (string, error) {
	if _, err := req.Period(s.reports.Location()); err != nil {
		return "", err
	}
	if s.files == nil {
		return "", errors.New("file storage not configured")
	}

	st := &ExportStatus{
		Key:     fmt.Sprintf("exports:%s", uuid.NewString()),
		Type:    exportType,
		UserID:  userID,
		Filters: req,
		Created: s.now(),
	}
	if err := s.saveStatus(ctx, st); err != nil {
		return "", fmt.Errorf("save export status: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runReportExport(context.Background(), st)
	}()

	return st.Key, nil
}

func (s *ExportService) runReportExport(ctx context.Context, st *ExportStatus) {
	s.progress(ctx, st, 10, "building")

	agg, err := s.reports.Build(ctx, st.Filters)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("build report: %w", err))
		return
	}

	s.progress(ctx, st, 60, "generating")

	data, err := writeReportWorkbook(agg, fmt.Sprintf("user_%d", st.UserID))
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("write workbook: %w", err))
		return
	}

	s.progress(ctx, st, 90, "uploading")

	fileName := fmt.Sprintf("report_%s_%s_%s.xlsx", agg.Type, agg.From, s.now().Format("20060102_150405"))
	saved, err := s.files.Save(ctx, fileName, data)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("save export: %w", err))
		return
	}
	url, err := s.files.URL(ctx, saved)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("export url: %w", err))
		return
	}

	st.FileURL = &url
	st.FileName = fileName
	s.progress(ctx, st, 100, "ready")
	if s.notify != nil {
		_ = s.notify.NotifyExportComplete(ctx, st.UserID, st.Key, url, fileName)
	}

	s.log.Info().
		Str("export_id", st.Key).
		Int64("user_id", st.UserID).
		Str("file", saved).
		Int("bytes", len(data)).
		Msg("report export finished")
}

func (s *ExportService) loadStatus(ctx context.Context, key string) (ExportStatus, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return ExportStatus{}, err
	}
	var st ExportStatus
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return ExportStatus{}, fmt.Errorf("parse export status: %w", err)
	}
	return st, nil
}

func (s *ExportService) view(st ExportStatus) ExportView {
	return ExportView{
		Key:       st.Key,
		Type:      st.Type,
		UserID:    st.UserID,
		Progress:  st.Progress,
		FileURL:   st.FileURL,
		Error:     st.Error,
		Filters:   st.Filters,
		CreatedAt: humanizeAgo(st.Created, s.now()),
	}
}

// GetExports lists the user's exports, newest first. Ids whose status has
// expired are dropped from the index.
func (s *ExportService) GetExports(ctx context.Context, userID int64) ([]ExportView, error) {
	if s.store == nil {
		return nil, errors.New("status store not configured")
	}

	keys, err := s.store.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		st, err := s.loadStatus(ctx, key)
		if errors.Is(err, clients.ErrCacheMiss) {
			_ = s.store.SRem(ctx, exportSetKey, key)
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("export_id", key).Msg("skip export status")
			continue
		}
		if st.UserID == userID {
			statuses = append(statuses, st)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	out := make([]ExportView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, s.view(st))
	}
	return out, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID string, userID int64) (ExportView, error) {
	if s.store == nil {
		return ExportView{}, errors.New("status store not configured")
	}

	st, err := s.loadStatus(ctx, exportID)
	if errors.Is(err, clients.ErrCacheMiss) {
		return ExportView{}, ErrExportNotFound
	}
	if err != nil {
		return ExportView{}, err
	}
	if st.UserID != userID {
		return ExportView{}, ErrExportNotFound
	}
	return s.view(st), nil
}

func humanizeAgo(t, now time.Time) string {
	if t.After(now) {
		return "just now"
	}

	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute", "minutes"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour", "hours"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day", "days"))
	}
	return t.Format("2006-01-02 15:04")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
