package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/collision-records-go/internal/config"
	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/report"
	"github.com/jengzang/collision-records-go/internal/table"
)

// ReportService builds the collision report from the enhanced table
type ReportService struct {
	logger   *zap.Logger
	enricher *EnrichService
	now      func() time.Time
}

// NewReportService creates a report service. The enricher produces the enhanced
// table when it does not exist yet.
func NewReportService(logger *zap.Logger, enricher *EnrichService) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{logger: logger, enricher: enricher, now: time.Now}
}

// Generate loads cfg.OutputPath, running the enrichment first when the file is
// absent, builds the report and writes it as JSON to cfg.ReportPath when set.
func (s *ReportService) Generate(ctx context.Context, cfg config.Config) (*models.CollisionReport, error) {
	enhanced, err := s.load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r, err := report.Build(enhanced)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	r.GeneratedAt = s.now().UTC().Format(time.RFC3339)

	if cfg.ReportPath != "" {
		if err := writeJSON(cfg.ReportPath, r); err != nil {
			return nil, err
		}
		s.logger.Info("Report written",
			zap.String("path", cfg.ReportPath),
			zap.Int("collisions", r.Collisions),
			zap.Int("hourly_points", len(r.Hourly.Points)),
		)
	}
	return r, nil
}

func (s *ReportService) load(ctx context.Context, cfg config.Config) (*table.Table, error) {
	_, err := os.Stat(cfg.OutputPath)
	if err == nil {
		t, err := table.ReadCSV(cfg.OutputPath, "enhanced")
		if err != nil {
			return nil, fmt.Errorf("failed to read enhanced table: %w", err)
		}
		return t, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, &table.FileError{Op: "stat", Path: cfg.OutputPath, Err: err}
	}
	if s.enricher == nil {
		return nil, &table.FileError{Op: "open", Path: cfg.OutputPath, Err: err}
	}

	s.logger.Info("Enhanced table not found, processing input tables once", zap.String("path", cfg.OutputPath))
	return s.enricher.Enrich(ctx, cfg)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &table.FileError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &table.FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}
