package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/collision-records-go/internal/analysis"
	"github.com/jengzang/collision-records-go/internal/analysis/parties"
	"github.com/jengzang/collision-records-go/internal/analysis/victims"
	"github.com/jengzang/collision-records-go/internal/config"
	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/repository"
	"github.com/jengzang/collision-records-go/internal/table"
)

// EnrichService joins victim and party summaries onto the collision table
type EnrichService struct {
	logger   *zap.Logger
	runs     *repository.RunRepository
	store    *repository.CollisionRepository
	progress analysis.ProgressFunc
}

// NewEnrichService creates an enrichment service. runs and store may be nil, in
// which case run history and enriched rows are not persisted.
func NewEnrichService(logger *zap.Logger, runs *repository.RunRepository, store *repository.CollisionRepository) *EnrichService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichService{logger: logger, runs: runs, store: store}
}

// OnProgress registers a callback that receives every completed stage
func (s *EnrichService) OnProgress(fn analysis.ProgressFunc) {
	s.progress = fn
}

// Enrich reads the three input tables, aggregates victims and parties per case,
// joins both summaries onto the collisions, classifies PrimeModeClass and writes
// the enhanced table to cfg.OutputPath.
func (s *EnrichService) Enrich(ctx context.Context, cfg config.Config) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	run := &models.EnrichmentRun{
		CollisionsPath: cfg.CollisionsPath,
		PartiesPath:    cfg.PartiesPath,
		VictimsPath:    cfg.VictimsPath,
		OutputPath:     cfg.OutputPath,
		JoinPolicy:     string(cfg.Policy()),
	}
	if s.runs != nil {
		if err := s.runs.Create(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	enhanced, err := s.enrich(ctx, cfg, run)
	if err != nil {
		if s.runs != nil {
			if markErr := s.runs.MarkFailed(run.ID, err.Error()); markErr != nil {
				s.logger.Error("Failed to mark run as failed", zap.Int64("run_id", run.ID), zap.Error(markErr))
			}
		}
		return nil, err
	}

	if s.runs != nil {
		if err := s.runs.MarkCompleted(run); err != nil {
			return nil, fmt.Errorf("failed to complete run: %w", err)
		}
	}
	return enhanced, nil
}

func (s *EnrichService) enrich(ctx context.Context, cfg config.Config, run *models.EnrichmentRun) (*table.Table, error) {
	collisions, err := s.read(cfg.CollisionsPath, "collisions")
	if err != nil {
		return nil, err
	}
	victimRows, err := s.read(cfg.VictimsPath, "victims")
	if err != nil {
		return nil, err
	}
	partyRows, err := s.read(cfg.PartiesPath, "parties")
	if err != nil {
		return nil, err
	}
	run.CollisionRows, run.VictimRows, run.PartyRows = collisions.Len(), victimRows.Len(), partyRows.Len()

	victimAgg, err := analysis.GetAggregator(victims.Name)
	if err != nil {
		return nil, err
	}
	partyAgg, err := analysis.GetAggregator(parties.Name)
	if err != nil {
		return nil, err
	}

	// Validate every input before any aggregation starts.
	if err := collisions.Require(models.FieldCaseID, models.FieldBicycle, models.FieldPedestrian); err != nil {
		return nil, fmt.Errorf("invalid collisions table: %w", err)
	}
	if err := victimRows.Require(victimAgg.Required()...); err != nil {
		return nil, fmt.Errorf("invalid victims table: %w", err)
	}
	if err := partyRows.Require(partyAgg.Required()...); err != nil {
		return nil, fmt.Errorf("invalid parties table: %w", err)
	}

	var victimSummary, partySummary *table.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := victimAgg.Aggregate(gctx, victimRows)
		if err != nil {
			return fmt.Errorf("failed to aggregate victims: %w", err)
		}
		victimSummary = out
		return nil
	})
	g.Go(func() error {
		out, err := partyAgg.Aggregate(gctx, partyRows)
		if err != nil {
			return fmt.Errorf("failed to aggregate parties: %w", err)
		}
		partySummary = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.report(analysis.Progress{Stage: "aggregate", Table: victimAgg.Name(), Rows: victimSummary.Len(), Message: "Victim demographics summarised per case"})
	s.report(analysis.Progress{Stage: "aggregate", Table: partyAgg.Name(), Rows: partySummary.Len(), Message: "Party characteristics summarised per case"})

	policy := cfg.Policy()
	enhanced, err := table.Join(collisions, victimSummary, models.FieldCaseID, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to join victim summary: %w", err)
	}
	enhanced, err = table.Join(enhanced, partySummary, models.FieldCaseID, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to join party summary: %w", err)
	}
	s.report(analysis.Progress{Stage: "join", Table: "collisions", Rows: enhanced.Len(), Message: "Summaries joined onto collisions (" + string(policy) + ")"})

	if err := ClassifyPrimeMode(enhanced); err != nil {
		return nil, err
	}
	s.report(analysis.Progress{Stage: "classify", Table: "collisions", Rows: enhanced.Len(), Message: "Prime mode classified"})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The output only replaces the previous one once every other step succeeded.
	staged, err := table.StageCSV(cfg.OutputPath, enhanced)
	if err != nil {
		return nil, fmt.Errorf("failed to write enhanced table: %w", err)
	}

	if s.store != nil {
		n, err := s.store.ReplaceEnriched(enhanced)
		if err != nil {
			staged.Discard()
			return nil, fmt.Errorf("failed to persist enhanced table: %w", err)
		}
		s.report(analysis.Progress{Stage: "persist", Table: repository.EnrichedTable, Rows: n, Message: "Enhanced collisions stored"})
	}

	if err := staged.Commit(); err != nil {
		return nil, fmt.Errorf("failed to write enhanced table: %w", err)
	}
	run.OutputRows = enhanced.Len()
	s.report(analysis.Progress{Stage: "write", Table: cfg.OutputPath, Rows: enhanced.Len(), Message: "Enhanced collisions written"})

	return enhanced, nil
}

// ClassifyPrimeMode sets PrimeModeClass on every row from the BICCOL and PEDCOL flags,
// replacing the column if it already exists.
func ClassifyPrimeMode(t *table.Table) error {
	bic, err := t.Column(models.FieldBicycle)
	if err != nil {
		return err
	}
	ped, err := t.Column(models.FieldPedestrian)
	if err != nil {
		return err
	}

	modes := make([]table.Value, t.Len())
	for i := range modes {
		modes[i] = table.Text(string(models.ClassifyMode(bic[i].String(), ped[i].String())))
	}
	return t.SetColumn(models.ColPrimeModeClass, modes)
}

func (s *EnrichService) read(path, name string) (*table.Table, error) {
	t, err := table.ReadCSV(path, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	s.report(analysis.Progress{Stage: "read", Table: name, Rows: t.Len(), Message: "Loaded " + path})
	return t, nil
}

func (s *EnrichService) report(p analysis.Progress) {
	s.logger.Info(p.Message,
		zap.String("stage", p.Stage),
		zap.String("table", p.Table),
		zap.Int("rows", p.Rows),
	)
	if s.progress != nil {
		s.progress(p)
	}
}
