package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"vintnercrm/domain"
)

type fakeOrderRepo struct {
	orders  map[string][]domain.OrderLine
	failFor string
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, code string) ([]domain.OrderLine, error) {
	if code == r.failFor {
		return nil, errors.New("storage unavailable")
	}
	return r.orders[code], nil
}

func (r *fakeOrderRepo) ListCustomerCodes(_ context.Context, _ int) ([]string, error) {
	var codes []string
	for code := range r.orders {
		codes = append(codes, code)
	}
	return codes, nil
}

type fakeCatalogRepo struct {
	products []domain.Product
}

func (r *fakeCatalogRepo) FindAllActive(_ context.Context) ([]domain.Product, error) {
	return r.products, nil
}

type fakeContactRepo struct {
	lastContact map[string]time.Time
}

func (r *fakeContactRepo) LastContactDate(_ context.Context, code string) (*time.Time, error) {
	if d, ok := r.lastContact[code]; ok {
		return &d, nil
	}
	return nil, nil
}

// fakeRecoRepo mirrors the real repository's refusal to write on a cancelled
// context when strictCtx is set.
type fakeRecoRepo struct {
	mu        sync.Mutex
	strictCtx bool
	runs      map[string]*domain.RecoRun
	items     []domain.RecoItem
	audits    []domain.RecoAudit
}

func newFakeRecoRepo() *fakeRecoRepo {
	return &fakeRecoRepo{runs: map[string]*domain.RecoRun{}}
}

func (r *fakeRecoRepo) checkCtx(ctx context.Context) error {
	if !r.strictCtx {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return nil
}

func (r *fakeRecoRepo) CreateRun(ctx context.Context, run *domain.RecoRun) error {
	if err := r.checkCtx(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs[run.RunID] = &cp
	return nil
}

func (r *fakeRecoRepo) FinishRun(ctx context.Context, run *domain.RecoRun) error {
	if err := r.checkCtx(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.runs[run.RunID]
	if !ok {
		return errors.New("reco run not found")
	}
	*stored = *run
	return nil
}

func (r *fakeRecoRepo) SaveItems(ctx context.Context, items []domain.RecoItem) error {
	if err := r.checkCtx(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
	return nil
}

func (r *fakeRecoRepo) SaveAudit(ctx context.Context, audit domain.RecoAudit) error {
	if err := r.checkCtx(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, audit)
	return nil
}

func (r *fakeRecoRepo) itemsFor(code string) []domain.RecoItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RecoItem
	for _, it := range r.items {
		if it.CustomerCode == code {
			out = append(out, it)
		}
	}
	return out
}

func (r *fakeRecoRepo) auditFor(code string) []domain.RecoAudit {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RecoAudit
	for _, a := range r.audits {
		if a.CustomerCode == code {
			out = append(out, a)
		}
	}
	return out
}

func engineProducts() []domain.Product {
	return []domain.Product{
		{ProductKey: "ROUGE-01", ProductName: "Cuvee Rouge", Family: "ROUGE", PriceBand: "STANDARD", MarginPct: 30, PopularityScore: 0.8, IsActive: true},
		{ProductKey: "ROUGE-02", ProductName: "Grand Rouge", Family: "ROUGE", PriceBand: "LUXURY", IsPremium: true, MarginPct: 45, PopularityScore: 0.6, IsActive: true},
		{ProductKey: "BLANC-01", ProductName: "Blanc Sec", Family: "BLANC", PriceBand: "STANDARD", MarginPct: 25, PopularityScore: 0.7, IsActive: true},
		{ProductKey: "BULLE-01", ProductName: "Cremant", Family: "BULLES", PriceBand: "PREMIUM", MarginPct: 35, PopularityScore: 0.75, IsActive: true},
	}
}

func bigSpenderOrders(code string) []domain.OrderLine {
	now := time.Now()
	var orders []domain.OrderLine
	for i := 0; i < 12; i++ {
		orders = append(orders, domain.OrderLine{
			CustomerCode: code,
			ProductKey:   "ROUGE-01",
			OrderDate:    now.AddDate(0, 0, -(20 + i*25)),
			DocRef:       "DOC-1",
			Qty:          1,
			AmountHT:     516,
		})
	}
	return orders
}

func newTestEngine(orderRepo *fakeOrderRepo, recoRepo *fakeRecoRepo, contactRepo *fakeContactRepo) *Engine {
	return NewEngine(
		orderRepo,
		&fakeCatalogRepo{products: engineProducts()},
		contactRepo,
		recoRepo,
		nil,
		nil,
		DefaultConfig(),
		2,
	)
}

func TestGenerateBatchBigSpender(t *testing.T) {
	orderRepo := &fakeOrderRepo{orders: map[string][]domain.OrderLine{
		"C-BIG": bigSpenderOrders("C-BIG"),
	}}
	recoRepo := newFakeRecoRepo()
	engine := newTestEngine(orderRepo, recoRepo, &fakeContactRepo{})

	runID, err := engine.GenerateBatch(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	run := recoRepo.runs[runID]
	if run == nil {
		t.Fatal("run not persisted")
	}
	if run.Status != RunStatusDone {
		t.Fatalf("run status = %s, want DONE", run.Status)
	}
	if run.EligibleCustomers != 1 || run.SkippedCustomers != 0 || run.FailedCustomers != 0 {
		t.Fatalf("run counters = %d/%d/%d", run.EligibleCustomers, run.SkippedCustomers, run.FailedCustomers)
	}

	items := recoRepo.itemsFor("C-BIG")
	if len(items) == 0 || len(items) > 3 {
		t.Fatalf("got %d items, want 1-3", len(items))
	}

	// ranks contiguous from 1, scores descending, scenarios from the two
	// expected matches only
	for i, it := range items {
		if it.Rank != i+1 {
			t.Fatalf("rank at index %d = %d", i, it.Rank)
		}
		if it.RunID != runID {
			t.Fatalf("item run_id = %s, want %s", it.RunID, runID)
		}
		if i > 0 && items[i-1].FinalScore < it.FinalScore {
			t.Fatalf("scores not descending: %v then %v", items[i-1].FinalScore, it.FinalScore)
		}
		if it.Scenario != domain.ScenarioCrossSell && it.Scenario != domain.ScenarioUpsell {
			t.Fatalf("unexpected scenario %s for an active big spender", it.Scenario)
		}
		if it.Explanation == "" {
			t.Fatal("missing explanation text")
		}
	}
}

func TestGenerateBatchIdempotent(t *testing.T) {
	orderRepo := &fakeOrderRepo{orders: map[string][]domain.OrderLine{
		"C-BIG": bigSpenderOrders("C-BIG"),
	}}
	recoRepo := newFakeRecoRepo()
	engine := newTestEngine(orderRepo, recoRepo, &fakeContactRepo{})

	run1, err := engine.GenerateBatch(context.Background(), []string{"C-BIG"}, 0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	run2, err := engine.GenerateBatch(context.Background(), []string{"C-BIG"}, 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if run1 == run2 {
		t.Fatal("runs must get distinct IDs")
	}

	var first, second []domain.RecoItem
	for _, it := range recoRepo.itemsFor("C-BIG") {
		switch it.RunID {
		case run1:
			first = append(first, it)
		case run2:
			second = append(second, it)
		}
	}

	if len(first) != len(second) {
		t.Fatalf("item counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ProductKey != second[i].ProductKey ||
			first[i].Scenario != second[i].Scenario ||
			first[i].Rank != second[i].Rank ||
			first[i].FinalScore != second[i].FinalScore {
			t.Fatalf("runs disagree at rank %d: %+v vs %+v", i+1, first[i], second[i])
		}
	}
}

func TestGenerateBatchSilenceWindowSkips(t *testing.T) {
	orderRepo := &fakeOrderRepo{orders: map[string][]domain.OrderLine{
		"C-QUIET": bigSpenderOrders("C-QUIET"),
	}}
	recoRepo := newFakeRecoRepo()
	contactRepo := &fakeContactRepo{lastContact: map[string]time.Time{
		"C-QUIET": time.Now().AddDate(0, 0, -5),
	}}
	engine := newTestEngine(orderRepo, recoRepo, contactRepo)

	runID, err := engine.GenerateBatch(context.Background(), []string{"C-QUIET"}, 0)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	if items := recoRepo.itemsFor("C-QUIET"); len(items) != 0 {
		t.Fatalf("silenced customer got %d items", len(items))
	}

	audits := recoRepo.auditFor("C-QUIET")
	if len(audits) != 1 || audits[0].RuleCode != "SILENCE_WINDOW" {
		t.Fatalf("audits = %+v, want one SILENCE_WINDOW row", audits)
	}
	if run := recoRepo.runs[runID]; run.SkippedCustomers != 1 {
		t.Fatalf("SkippedCustomers = %d, want 1", run.SkippedCustomers)
	}
}

func TestGenerateBatchContinuesAfterCustomerFailure(t *testing.T) {
	orderRepo := &fakeOrderRepo{
		orders: map[string][]domain.OrderLine{
			"C-BAD": nil,
			"C-OK":  bigSpenderOrders("C-OK"),
		},
		failFor: "C-BAD",
	}
	recoRepo := newFakeRecoRepo()
	engine := newTestEngine(orderRepo, recoRepo, &fakeContactRepo{})

	runID, err := engine.GenerateBatch(context.Background(), []string{"C-BAD", "C-OK"}, 0)
	if err != nil {
		t.Fatalf("GenerateBatch must survive a per-customer failure: %v", err)
	}

	run := recoRepo.runs[runID]
	if run.Status != RunStatusDone {
		t.Fatalf("run status = %s, want DONE", run.Status)
	}
	if run.FailedCustomers != 1 || run.EligibleCustomers != 1 {
		t.Fatalf("counters = failed %d eligible %d", run.FailedCustomers, run.EligibleCustomers)
	}

	if items := recoRepo.itemsFor("C-OK"); len(items) == 0 {
		t.Fatal("healthy customer lost its recommendations")
	}

	audits := recoRepo.auditFor("C-BAD")
	if len(audits) != 1 || audits[0].RuleCode != "COMPUTE_ERROR" {
		t.Fatalf("audits = %+v, want one COMPUTE_ERROR row", audits)
	}
}

// cancellingOrderRepo aborts the batch while the first customer's history is
// being loaded.
type cancellingOrderRepo struct {
	cancel context.CancelFunc
}

func (r *cancellingOrderRepo) ListByCustomer(ctx context.Context, _ string) ([]domain.OrderLine, error) {
	r.cancel()
	return nil, ctx.Err()
}

func (r *cancellingOrderRepo) ListCustomerCodes(_ context.Context, _ int) ([]string, error) {
	return []string{"C-STOP"}, nil
}

func TestGenerateBatchCancelledRunRecordedAsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recoRepo := newFakeRecoRepo()
	recoRepo.strictCtx = true

	engine := NewEngine(
		&cancellingOrderRepo{cancel: cancel},
		&fakeCatalogRepo{products: engineProducts()},
		&fakeContactRepo{},
		recoRepo,
		nil,
		nil,
		DefaultConfig(),
		1,
	)

	runID, err := engine.GenerateBatch(ctx, []string{"C-STOP"}, 0)
	if err != nil {
		t.Fatalf("GenerateBatch must still report the interrupted run: %v", err)
	}

	run := recoRepo.runs[runID]
	if run == nil {
		t.Fatal("interrupted run not persisted")
	}
	if run.Status != RunStatusFailed {
		t.Fatalf("run status = %s, want FAILED", run.Status)
	}

	// the customer caught mid-flight still leaves an audit trail
	audits := recoRepo.auditFor("C-STOP")
	if len(audits) != 1 || audits[0].RuleCode != "COMPUTE_ERROR" {
		t.Fatalf("audits = %+v, want one COMPUTE_ERROR row", audits)
	}
	if run.FailedCustomers != 1 {
		t.Fatalf("FailedCustomers = %d, want 1", run.FailedCustomers)
	}
}

type fakeProfileSink struct {
	mu    sync.Mutex
	saved []CustomerFeatures
}

func (s *fakeProfileSink) SaveProfile(_ context.Context, f CustomerFeatures) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, f)
	return nil
}

func TestRebuildProfilesWritesNoItems(t *testing.T) {
	orderRepo := &fakeOrderRepo{orders: map[string][]domain.OrderLine{
		"C-BIG":   bigSpenderOrders("C-BIG"),
		"C-EMPTY": nil,
	}}
	recoRepo := newFakeRecoRepo()
	sink := &fakeProfileSink{}

	engine := NewEngine(
		orderRepo,
		&fakeCatalogRepo{products: engineProducts()},
		&fakeContactRepo{},
		recoRepo,
		sink,
		nil,
		DefaultConfig(),
		2,
	)

	rebuilt, err := engine.RebuildProfiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("RebuildProfiles: %v", err)
	}
	if rebuilt != 2 {
		t.Fatalf("rebuilt = %d, want 2", rebuilt)
	}
	if len(sink.saved) != 2 {
		t.Fatalf("saved %d profiles, want 2", len(sink.saved))
	}

	for _, f := range sink.saved {
		if f.CustomerCode == "C-BIG" && f.RScore != 5 {
			t.Fatalf("C-BIG RScore = %d, want 5", f.RScore)
		}
		if f.CustomerCode == "C-EMPTY" && f.OrderCount != 0 {
			t.Fatalf("C-EMPTY OrderCount = %d, want 0", f.OrderCount)
		}
	}

	if len(recoRepo.items) != 0 {
		t.Fatalf("rebuild wrote %d recommendation rows", len(recoRepo.items))
	}
	if len(recoRepo.runs) != 0 {
		t.Fatalf("rebuild created %d runs", len(recoRepo.runs))
	}
}

func TestGenerateBatchNoScenarioAudited(t *testing.T) {
	// moderately recent, low spend: no scenario applies
	now := time.Now()
	orders := []domain.OrderLine{
		{CustomerCode: "C-MID", ProductKey: "ROUGE-01", OrderDate: now.AddDate(0, 0, -40), DocRef: "D", Qty: 1, AmountHT: 30},
		{CustomerCode: "C-MID", ProductKey: "ROUGE-01", OrderDate: now.AddDate(0, 0, -60), DocRef: "D", Qty: 1, AmountHT: 30},
	}
	orderRepo := &fakeOrderRepo{orders: map[string][]domain.OrderLine{"C-MID": orders}}
	recoRepo := newFakeRecoRepo()
	engine := newTestEngine(orderRepo, recoRepo, &fakeContactRepo{})

	runID, err := engine.GenerateBatch(context.Background(), []string{"C-MID"}, 0)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	audits := recoRepo.auditFor("C-MID")
	if len(audits) != 1 || audits[0].RuleCode != "NO_SCENARIO" {
		t.Fatalf("audits = %+v, want one NO_SCENARIO row", audits)
	}
	if run := recoRepo.runs[runID]; run.SkippedCustomers != 1 {
		t.Fatalf("SkippedCustomers = %d, want 1", run.SkippedCustomers)
	}
}
