package service

import (
	"context"
	"sync/atomic"
	"time"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/intervals"
	"alcyxob/plan-coach/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReplaceOutcome summarizes one bulk replace.
type ReplaceOutcome struct {
	Span         domain.Span
	Deleted      int
	DeleteFailed int
	Created      int // creates answered with 2xx
	Failed       []domain.WorkoutProposal
}

// BulkReplaceEngine swaps the workouts in a date span for a confirmed plan.
// There is no rollback: a failure part way leaves the calendar partially
// updated, and the outcome says by how much.
type BulkReplaceEngine struct {
	defaultStartTime  string
	deleteConcurrency int
	runs              repository.ReplaceRunRepository // optional
	logger            *zap.Logger
	now               func() time.Time
}

// NewBulkReplaceEngine creates an engine. runs may be nil to skip the intent log.
func NewBulkReplaceEngine(cfg config.AssistantConfig, runs repository.ReplaceRunRepository, logger *zap.Logger) *BulkReplaceEngine {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkReplaceEngine{
		defaultStartTime:  cfg.DefaultStartTime,
		deleteConcurrency: cfg.DeleteConcurrency,
		runs:              runs,
		logger:            logger,
		now:               time.Now,
	}
}

// Replace deletes every WORKOUT event in the span covered by items and then
// creates one event per item, in order.
func (e *BulkReplaceEngine) Replace(ctx context.Context, cal CalendarClient, athleteID string, items []domain.WorkoutProposal) ReplaceOutcome {
	// Once started, a replace runs to completion; cancelling the caller must
	// not leave the span with its workouts deleted and nothing created.
	ctx = context.WithoutCancel(ctx)

	// 1. Span of the plan; nothing to do without one
	span, ok := domain.SpanOf(items)
	if !ok {
		return ReplaceOutcome{}
	}
	outcome := ReplaceOutcome{Span: span}
	log := e.logger.With(zap.String("athleteId", athleteID), zap.String("from", span.Start), zap.String("to", span.End))

	// 2. Existing events; a failed listing means nothing gets deleted
	existing, err := cal.ListEvents(ctx, athleteID, span.Start, span.End)
	if err != nil {
		log.Error("[BulkReplace] listing events failed, skipping delete phase", zap.Error(err))
		existing = nil
	}

	// 3. Only workouts are replaceable
	var deleteIDs []int64
	for _, ev := range existing {
		if ev.IsWorkout() {
			deleteIDs = append(deleteIDs, ev.ID)
		}
	}

	run := e.begin(ctx, log, athleteID, span, deleteIDs, items)

	// 4. Bounded concurrent deletes, all awaited
	outcome.Deleted, outcome.DeleteFailed = e.deleteAll(ctx, log, cal, athleteID, deleteIDs)

	// 5-6. Sequential creates
	for _, item := range items {
		result, err := e.CreateOne(ctx, cal, athleteID, item)
		if err != nil || !result.OK() {
			log.Warn("[BulkReplace] create failed",
				zap.String("date", item.Date), zap.String("title", item.Title),
				zap.Int("status", result.StatusCode), zap.String("body", result.Body))
			outcome.Failed = append(outcome.Failed, item)
			continue
		}
		outcome.Created++
	}

	e.finish(ctx, log, run, outcome)
	log.Info("[BulkReplace] finished",
		zap.Int("deleted", outcome.Deleted), zap.Int("deleteFailed", outcome.DeleteFailed),
		zap.Int("created", outcome.Created), zap.Int("failed", len(outcome.Failed)))
	return outcome
}

// CreateOne creates a single workout event with the default start time applied.
func (e *BulkReplaceEngine) CreateOne(ctx context.Context, cal CalendarClient, athleteID string, item domain.WorkoutProposal) (intervals.CreateResult, error) {
	ctx = context.WithoutCancel(ctx)
	return cal.CreateEvent(ctx, athleteID, domain.NewWorkoutPayload(item, e.defaultStartTime))
}

func (e *BulkReplaceEngine) deleteAll(ctx context.Context, log *zap.Logger, cal CalendarClient, athleteID string, ids []int64) (int, int) {
	var deleted, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(e.deleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := cal.DeleteEvent(ctx, athleteID, id); err != nil {
				log.Warn("[BulkReplace] delete failed", zap.Int64("eventId", id), zap.Error(err))
				failed.Add(1)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors
	return int(deleted.Load()), int(failed.Load())
}

func (e *BulkReplaceEngine) begin(ctx context.Context, log *zap.Logger, athleteID string, span domain.Span, deleteIDs []int64, items []domain.WorkoutProposal) *domain.ReplaceRun {
	if e.runs == nil {
		return nil
	}
	run := &domain.ReplaceRun{
		AthleteID:      athleteID,
		Span:           span,
		PlannedDeletes: deleteIDs,
		PlannedCreates: items,
		StartedAt:      e.now().UTC(),
	}
	id, err := e.runs.Create(ctx, run)
	if err != nil {
		log.Error("[BulkReplace] recording replace run failed", zap.Error(err))
		return nil
	}
	run.ID = id
	return run
}

func (e *BulkReplaceEngine) finish(ctx context.Context, log *zap.Logger, run *domain.ReplaceRun, outcome ReplaceOutcome) {
	if run == nil {
		return
	}
	finished := e.now().UTC()
	run.Deleted = outcome.Deleted
	run.DeleteFailed = outcome.DeleteFailed
	run.Created = outcome.Created
	run.FailedCreates = outcome.Failed
	run.FinishedAt = &finished
	if err := e.runs.Complete(ctx, run); err != nil {
		log.Error("[BulkReplace] completing replace run failed", zap.String("runId", run.ID.Hex()), zap.Error(err))
	}
}
