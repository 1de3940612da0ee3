package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/internal/config"
	"github.com/smallbiznis/solarflow/internal/events"
	"github.com/smallbiznis/solarflow/internal/observability/logger"
	"github.com/smallbiznis/solarflow/internal/observability/metrics"
	"github.com/smallbiznis/solarflow/internal/observability/tracing"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/internal/project/gate"
	"github.com/smallbiznis/solarflow/internal/project/progress"
	"github.com/smallbiznis/solarflow/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Activity  activitydomain.Service
	Hub       *events.Hub
	Templates *config.TemplateConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

// Service is the workflow orchestrator. A single mutex serializes every
// mutation so activity order matches invocation order.
type Service struct {
	mu sync.Mutex

	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	activity  activitydomain.Service
	hub       *events.Hub
	templates *config.TemplateConfigHolder
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	// trackWrites is false when the write mark callback is missing; every
	// successful operation then notifies.
	trackWrites bool
}

func New(p Params) domain.Service {
	log := p.Log.Named("project.service")
	return &Service{
		db:        p.DB,
		log:       log,
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		activity:  p.Activity,
		hub:       p.Hub,
		templates: p.Templates,
		metrics:   p.Metrics,
		tracer:    otel.Tracer("solarflow/project"),

		trackWrites: registerWriteMark(p.DB, log),
	}
}

func (s *Service) Subscribe() domain.Subscription {
	return s.hub.Subscribe()
}

func (s *Service) today() string {
	return clock.Today(s.clock).Format(domain.DateLayout)
}

// unit is the state of one in-flight operation: the open transaction, the
// activity entries to append and the pre-mutation progress of every
// customer it touched.
type unit struct {
	s       *Service
	tx      *gorm.DB
	actor   domain.Actor
	log     *zap.Logger
	before  map[snowflake.ID]int
	touched []snowflake.ID
	entries []activitydomain.Entry
}

// run executes fn as one serialized, transactional operation. Activity is
// appended inside the transaction; observers are notified after commit.
func (s *Service) run(ctx context.Context, op string, actor domain.Actor, fn func(ctx context.Context, u *unit) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, _ = correlation.EnsureCorrelationID(ctx)
	ctx, span := s.tracer.Start(ctx, "project."+op, trace.WithAttributes(
		attribute.String("operation", op),
		attribute.String("actor_id", actor.UserID),
	))
	defer span.End()

	log := logger.WithActor(logger.WithContext(ctx, s.log), actor.UserName, actor.UserID).
		With(zap.String("operation", op))

	wrote := false
	ctx = withWriteMark(ctx, &wrote)

	var u *unit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u = &unit{
			s:      s,
			tx:     tx,
			actor:  actor,
			log:    log,
			before: make(map[snowflake.ID]int),
		}
		if err := fn(ctx, u); err != nil {
			return err
		}
		if err := u.appendProgressChanges(ctx); err != nil {
			return err
		}
		if len(u.entries) == 0 {
			return nil
		}
		if _, err := s.activity.Record(ctx, tx, u.entries...); err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return nil
	})
	if err != nil {
		if isValidation(err) {
			log.Debug("operation rejected", zap.Error(err))
			s.metrics.RecordOperation(ctx, op, metrics.OutcomeInvalid)
		} else {
			log.Warn("operation failed", zap.Error(err))
			span.RecordError(tracing.SafeError(err))
			span.SetStatus(codes.Error, op+" failed")
			s.metrics.RecordOperation(ctx, op, metrics.OutcomeError)
		}
		return err
	}

	s.metrics.RecordOperation(ctx, op, metrics.OutcomeSuccess)
	for _, entry := range u.entries {
		s.metrics.RecordActivity(ctx, entry.Section)
	}
	span.SetAttributes(
		attribute.Int("activities", len(u.entries)),
		attribute.Bool("wrote", wrote),
	)
	if s.trackWrites && !wrote {
		log.Debug("operation applied, nothing changed")
		return nil
	}
	log.Debug("operation applied",
		zap.Int("activities", len(u.entries)),
		zap.Int("subscribers", s.hub.Subscribers()),
	)

	s.hub.Publish()
	s.metrics.RecordNotification(ctx)
	return nil
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrDuplicateConsumerNumber,
		domain.ErrInvalidConsumerNumber,
		domain.ErrInvalidSystemCapacity,
		domain.ErrInvalidOrderAmount,
		domain.ErrInvalidDocumentNumber,
		domain.ErrInvalidStatus,
		domain.ErrInvalidID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// record queues an entry attributed to the acting user.
func (u *unit) record(customerID snowflake.ID, section, action string) {
	u.entries = append(u.entries, activitydomain.Entry{
		User:       u.actor.UserName,
		UserID:     u.actor.UserID,
		CustomerID: customerID,
		Section:    section,
		Action:     action,
	})
}

func (u *unit) recordAs(who domain.Actor, customerID snowflake.ID, section, action string) {
	u.entries = append(u.entries, activitydomain.Entry{
		User:       who.UserName,
		UserID:     who.UserID,
		CustomerID: customerID,
		Section:    section,
		Action:     action,
	})
}

// touch remembers a customer's overall progress before the first mutation
// of its section records.
func (u *unit) touch(ctx context.Context, customerID snowflake.ID) error {
	if customerID == 0 {
		return nil
	}
	if _, ok := u.before[customerID]; ok {
		return nil
	}
	b, err := u.s.compute(ctx, u.tx, customerID)
	if err != nil {
		return err
	}
	u.before[customerID] = b.Overall
	u.touched = append(u.touched, customerID)
	return nil
}

func (u *unit) cascade(ctx context.Context, customerID snowflake.ID, changed domain.Section) error {
	res, err := gate.Cascade(ctx, u.tx, u.s.repo, customerID, changed)
	if err != nil {
		return err
	}
	if n := res.Resets(); n > 0 {
		u.log.Debug("downstream sections reset",
			zap.String("customer_id", customerID.String()),
			zap.String("changed", string(changed)),
			zap.Int("resets", n),
		)
		u.s.metrics.RecordCascadeResets(ctx, string(changed), n)
	}
	return nil
}

// appendProgressChanges logs a system entry for every touched customer
// whose overall progress moved.
func (u *unit) appendProgressChanges(ctx context.Context) error {
	for _, customerID := range u.touched {
		customer, err := u.s.repo.FindCustomer(ctx, u.tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			continue
		}
		after, err := u.s.compute(ctx, u.tx, customerID)
		if err != nil {
			return err
		}
		if after.Overall == u.before[customerID] {
			continue
		}
		u.recordAs(domain.SystemActor, customerID, activitydomain.SectionProgress,
			fmt.Sprintf("Progress updated to %d%% (%s)", after.Overall, after.Status))
	}
	return nil
}

func (s *Service) snapshot(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (progress.Snapshot, error) {
	var (
		snap progress.Snapshot
		err  error
	)
	if snap.Documents, err = s.repo.ListDocuments(ctx, db, customerID); err != nil {
		return snap, fmt.Errorf("list documents: %w", err)
	}
	if snap.Checklist, err = s.repo.ListChecklistItems(ctx, db, customerID); err != nil {
		return snap, fmt.Errorf("list checklist: %w", err)
	}
	if snap.Wiring, err = s.repo.FindWiring(ctx, db, customerID); err != nil {
		return snap, fmt.Errorf("find wiring: %w", err)
	}
	if snap.Inspections, err = s.repo.ListInspections(ctx, db, customerID); err != nil {
		return snap, fmt.Errorf("list inspections: %w", err)
	}
	if snap.Commissioning, err = s.repo.FindCommissioning(ctx, db, customerID); err != nil {
		return snap, fmt.Errorf("find commissioning: %w", err)
	}
	return snap, nil
}

func (s *Service) compute(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (progress.Breakdown, error) {
	snap, err := s.snapshot(ctx, db, customerID)
	if err != nil {
		return progress.Breakdown{}, err
	}
	return progress.Compute(snap), nil
}

// findWiringItem returns the first checklist item bound to the wiring stage.
func findWiringItem(items []*domain.ChecklistItem) *domain.ChecklistItem {
	for _, item := range items {
		if domain.IsWiringTask(item.Task) {
			return item
		}
	}
	return nil
}

func findWiringInspection(inspections []*domain.Inspection) *domain.Inspection {
	for _, in := range inspections {
		if domain.IsWiringTask(in.Document) {
			return in
		}
	}
	return nil
}

func actorOr(name string, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
