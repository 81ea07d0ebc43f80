package recommendation

import (
	"context"
	"fmt"
	"sync"
	"time"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type OrderHistoryRepository interface {
	ListByCustomer(ctx context.Context, customerCode string) ([]domain.OrderLine, error)
	ListCustomerCodes(ctx context.Context, limit int) ([]string, error)
}

type CatalogRepository interface {
	FindAllActive(ctx context.Context) ([]domain.Product, error)
}

type ContactRepository interface {
	LastContactDate(ctx context.Context, customerCode string) (*time.Time, error)
}

type RecoRepository interface {
	CreateRun(ctx context.Context, run *domain.RecoRun) error
	FinishRun(ctx context.Context, run *domain.RecoRun) error
	SaveItems(ctx context.Context, items []domain.RecoItem) error
	SaveAudit(ctx context.Context, audit domain.RecoAudit) error
}

// ProfileSink receives the denormalized feature snapshot for auditability.
// Implemented by the segments service, which adds the segment label.
type ProfileSink interface {
	SaveProfile(ctx context.Context, f CustomerFeatures) error
}

// Audit rule codes for skipped customers.
const (
	auditSilenceWindow = "SILENCE_WINDOW"
	auditNoScenario    = "NO_SCENARIO"
	auditComputeError  = "COMPUTE_ERROR"
)

// Run status values.
const (
	RunStatusRunning = "RUNNING"
	RunStatusDone    = "DONE"
	RunStatusFailed  = "FAILED"
)

// ---- Engine ----

// Engine runs the full pipeline: features -> scenarios -> scoring ->
// ranking -> explanations -> persistence. Customers are independent, so
// batches fan out over a bounded worker pool; results are identical to a
// sequential run because nothing is shared between customers except the
// read-only catalog index.
type Engine struct {
	orderRepo   OrderHistoryRepository
	catalogRepo CatalogRepository
	contactRepo ContactRepository
	recoRepo    RecoRepository
	profileSink ProfileSink
	cfgRepo     ConfigRepository

	defaultCfg Config
	workers    int
}

func NewEngine(
	orderRepo OrderHistoryRepository,
	catalogRepo CatalogRepository,
	contactRepo ContactRepository,
	recoRepo RecoRepository,
	profileSink ProfileSink,
	cfgRepo ConfigRepository,
	defaultCfg Config,
	workers int,
) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		contactRepo: contactRepo,
		recoRepo:    recoRepo,
		profileSink: profileSink,
		cfgRepo:     cfgRepo,
		defaultCfg:  defaultCfg,
		workers:     workers,
	}
}

// batchState collects run counters across workers.
type batchState struct {
	mu       sync.Mutex
	eligible int
	skipped  int
	failed   int
	items    int
}

// GenerateBatch scores every given customer and persists one fresh,
// append-only set of recommendation rows under a new run ID. An empty
// customer list means all known customers. Per-customer failures are logged
// and skipped; only run-level persistence failures abort the run.
func (e *Engine) GenerateBatch(
	ctx context.Context,
	customerCodes []string,
	maxItems int,
) (string, error) {

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	started := time.Now()
	runID := uuid.NewString()
	asOf := started

	cfg := e.loadConfig(ctx, "default")
	if maxItems > 0 {
		cfg.MaxItems = maxItems
	}

	codes := customerCodes
	if len(codes) == 0 {
		all, err := e.orderRepo.ListCustomerCodes(ctx, 0)
		if err != nil {
			return "", fmt.Errorf("list customers: %w", err)
		}
		codes = all
	}

	products, err := e.catalogRepo.FindAllActive(ctx)
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}
	cat := newCatalogIndex(products)

	run := &domain.RecoRun{
		RunID:          runID,
		ConfigHash:     cfg.Hash(),
		Status:         RunStatusRunning,
		TotalCustomers: len(codes),
	}
	if err := e.recoRepo.CreateRun(ctx, run); err != nil {
		RecoRunsTotal.WithLabelValues(RunStatusFailed).Inc()
		return "", fmt.Errorf("create run: %w", err)
	}

	tid := TraceIDFromContext(ctx)
	logger.Info("reco_run_start",
		"trace_id", tid,
		"run_id", runID,
		"customers", len(codes),
		"catalog_size", len(products),
		"max_items", cfg.MaxItems,
	)

	state := &batchState{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, code := range codes {
		// cancellation checkpoint at the customer boundary
		if err := gctx.Err(); err != nil {
			break
		}

		customerCode := code
		g.Go(func() error {
			e.processCustomer(gctx, runID, customerCode, asOf, cat, cfg, state)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// workers never return errors; this is context cancellation
		logger.Warn("reco_run_interrupted", "run_id", runID, "error", err)
	}
	if err := ctx.Err(); err != nil {
		run.Status = RunStatusFailed
	} else {
		run.Status = RunStatusDone
	}

	state.mu.Lock()
	run.EligibleCustomers = state.eligible
	run.SkippedCustomers = state.skipped
	run.FailedCustomers = state.failed
	run.DurationSeconds = time.Since(started).Seconds()
	run.Summary = datatypes.JSONMap{
		"items_written": state.items,
		"workers":       e.workers,
	}
	state.mu.Unlock()

	// the terminal status write must survive the cancellation that caused
	// it, otherwise an interrupted run stays RUNNING forever
	if err := e.recoRepo.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		RecoRunsTotal.WithLabelValues(RunStatusFailed).Inc()
		return "", fmt.Errorf("finish run: %w", err)
	}

	RecoRunsTotal.WithLabelValues(run.Status).Inc()
	RecoRunDuration.Observe(run.DurationSeconds)

	logger.Info("reco_run_done",
		"run_id", runID,
		"status", run.Status,
		"eligible", run.EligibleCustomers,
		"skipped", run.SkippedCustomers,
		"failed", run.FailedCustomers,
		"duration_s", run.DurationSeconds,
	)

	return runID, nil
}

// RebuildProfiles recomputes features and upserts the profile rows for the
// given customers without scoring or writing recommendation items. An empty
// list means all known customers. Per-customer failures are logged and the
// rebuild continues; the returned count covers successful upserts only.
func (e *Engine) RebuildProfiles(ctx context.Context, customerCodes []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if e.profileSink == nil {
		return 0, fmt.Errorf("no profile sink configured")
	}

	codes := customerCodes
	if len(codes) == 0 {
		all, err := e.orderRepo.ListCustomerCodes(ctx, 0)
		if err != nil {
			return 0, fmt.Errorf("list customers: %w", err)
		}
		codes = all
	}

	products, err := e.catalogRepo.FindAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	cat := newCatalogIndex(products)
	asOf := time.Now()

	var (
		mu      sync.Mutex
		rebuilt int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, code := range codes {
		if err := gctx.Err(); err != nil {
			break
		}

		customerCode := code
		g.Go(func() error {
			orders, err := e.orderRepo.ListByCustomer(gctx, customerCode)
			if err != nil {
				logger.Warn("profile_rebuild_failed", "customer", customerCode, "error", err)
				return nil
			}

			var lastContact *time.Time
			if e.contactRepo != nil {
				lastContact, err = e.contactRepo.LastContactDate(gctx, customerCode)
				if err != nil {
					logger.Warn("profile_rebuild_failed", "customer", customerCode, "error", err)
					return nil
				}
			}

			features := ComputeFeatures(customerCode, orders, lastContact, asOf).
				WithFamilyShares(orders, cat)

			if err := e.profileSink.SaveProfile(gctx, features); err != nil {
				logger.Warn("profile_rebuild_failed", "customer", customerCode, "error", err)
				return nil
			}

			mu.Lock()
			rebuilt++
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	logger.Info("profile_rebuild_done", "customers", len(codes), "rebuilt", rebuilt)
	return rebuilt, nil
}

// processCustomer runs the pipeline for one customer. All failures are
// contained here: log, audit, count, continue with the rest of the batch.
func (e *Engine) processCustomer(
	ctx context.Context,
	runID string,
	customerCode string,
	asOf time.Time,
	cat *catalogIndex,
	cfg Config,
	state *batchState,
) {
	items, skipReason, err := e.generateForCustomer(ctx, runID, customerCode, asOf, cat, cfg)

	state.mu.Lock()
	defer state.mu.Unlock()

	// audits record why a customer produced nothing; they are written on a
	// detached context so a cancelled batch still leaves its trail
	auditCtx := context.WithoutCancel(ctx)

	switch {
	case err != nil:
		state.failed++
		RecoCustomersTotal.WithLabelValues("failed").Inc()
		logger.Error("reco_customer_failed", "run_id", runID, "customer", customerCode, "error", err)
		e.saveAudit(auditCtx, runID, customerCode, "ERROR", auditComputeError, datatypes.JSONMap{
			"error": err.Error(),
		})

	case skipReason != "":
		state.skipped++
		RecoCustomersTotal.WithLabelValues("skipped").Inc()
		e.saveAudit(auditCtx, runID, customerCode, "WARN", skipReason, nil)

	default:
		state.eligible++
		state.items += len(items)
		RecoCustomersTotal.WithLabelValues("ok").Inc()
		for _, it := range items {
			RecoItemsTotal.WithLabelValues(it.Scenario).Inc()
		}
	}
}

// generateForCustomer is the per-customer pipeline. It returns the persisted
// items, a skip reason (audit rule code) when the customer is deliberately
// excluded, or an error when something broke.
func (e *Engine) generateForCustomer(
	ctx context.Context,
	runID string,
	customerCode string,
	asOf time.Time,
	cat *catalogIndex,
	cfg Config,
) ([]domain.RecoItem, string, error) {

	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("context error: %w", err)
	}

	// 1) load history; an unknown customer yields an empty history, not an
	// error (zero-history features downstream)
	orders, err := e.orderRepo.ListByCustomer(ctx, customerCode)
	if err != nil {
		return nil, "", fmt.Errorf("load orders: %w", err)
	}

	var lastContact *time.Time
	if e.contactRepo != nil {
		lastContact, err = e.contactRepo.LastContactDate(ctx, customerCode)
		if err != nil {
			return nil, "", fmt.Errorf("load last contact: %w", err)
		}
	}

	// 2) features
	features := ComputeFeatures(customerCode, orders, lastContact, asOf).
		WithFamilyShares(orders, cat)

	if e.profileSink != nil {
		if err := e.profileSink.SaveProfile(ctx, features); err != nil {
			// profile copy is best effort; the scoring result matters more
			logger.Warn("reco_profile_save_failed", "customer", customerCode, "error", err)
		}
	}

	if cfg.SilenceCheck && features.InSilenceWindow(cfg.SilenceWindowDays) {
		return nil, auditSilenceWindow, nil
	}

	// 3) scenarios
	matches := MatchScenarios(features, orders, cat, cfg)
	if len(matches) == 0 {
		return nil, auditNoScenario, nil
	}

	// 4) score every (product, scenario) pair, then collapse duplicates
	var scored []ScoredCandidate
	for _, m := range matches {
		for _, productKey := range m.Candidates {
			scored = append(scored, scoreCandidate(features, cat, productKey, m.Scenario, cfg))
		}
	}
	scored = dedupeCandidates(scored)

	// 5) rank + diversify
	ranked := rankAndDiversify(scored, cat.familyOf, cfg.MaxItems)
	if len(ranked) == 0 {
		return nil, auditNoScenario, nil
	}

	// 6) explanations + rows
	items := make([]domain.RecoItem, 0, len(ranked))
	for i, sc := range ranked {
		product, found := cat.byKey[sc.ProductKey]
		expl := Explain(sc.Scenario, features, product, found)

		items = append(items, domain.RecoItem{
			RunID:        runID,
			CustomerCode: customerCode,
			Rank:         i + 1,
			ProductKey:   sc.ProductKey,
			Scenario:     sc.Scenario,
			FinalScore:   round2(sc.FinalScore),
			Explanation:  expl.Reason,
			Reasons: datatypes.JSONMap{
				"title":            expl.Title,
				"components":       expl.Components,
				"affinity_score":   round2(sc.AffinityScore),
				"popularity_score": round2(sc.PopularityScore),
				"profit_score":     round2(sc.ProfitScore),
				"base_score":       sc.BaseScore,
			},
		})
	}

	// 7) persist: one insert per customer, so cancellation between customers
	// never leaves a partial customer behind
	if err := e.recoRepo.SaveItems(ctx, items); err != nil {
		return nil, "", fmt.Errorf("save items: %w", err)
	}

	return items, "", nil
}

func (e *Engine) saveAudit(ctx context.Context, runID, customerCode, severity, ruleCode string, details datatypes.JSONMap) {
	audit := domain.RecoAudit{
		RunID:        runID,
		CustomerCode: customerCode,
		Severity:     severity,
		RuleCode:     ruleCode,
		Details:      details,
	}
	if err := e.recoRepo.SaveAudit(ctx, audit); err != nil {
		logger.Warn("reco_audit_save_failed", "run_id", runID, "customer", customerCode, "error", err)
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
