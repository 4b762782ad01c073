package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"expiryai/internal/core/scoring"
	"expiryai/internal/modkit/repokit"
	"expiryai/internal/modkit/repokit/repotest"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/metrics"
	kit "expiryai/internal/platform/testkit"
	invdom "expiryai/internal/services/inventory/domain"
	"expiryai/internal/services/recommendations/domain"
	sigdom "expiryai/internal/services/signatures/domain"
)

var (
	today = kit.Date(2025, time.June, 1)
	clock = today.Add(9 * time.Hour)
)

type fakeHoldings map[int64][]invdom.HeldSignature

func (f fakeHoldings) HeldSignatures(_ context.Context, tenantID int64) ([]invdom.HeldSignature, error) {
	return f[tenantID], nil
}

// fakeSigs ignores the barcode/expiry filter so locality must come from the generator itself
type fakeSigs struct {
	rows   []sigdom.BatchSignature
	err    error
	filter sigdom.CandidateFilter
}

func (f *fakeSigs) Candidates(_ context.Context, c sigdom.CandidateFilter) ([]sigdom.BatchSignature, error) {
	f.filter = c
	return f.rows, f.err
}

type recKey struct {
	tenant int64
	key    sigdom.Key
}

type fakeStore struct {
	rows      map[recKey]domain.Recommendation
	upsertErr error
}

func (f *fakeStore) DeactivateAll(_ context.Context, tenantID int64, now time.Time) (int64, error) {
	var n int64
	for k, r := range f.rows {
		if k.tenant == tenantID {
			r.IsActive = false
			r.LastComputedAt = now
			f.rows[k] = r
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Upsert(_ context.Context, recs []domain.Recommendation) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	for _, r := range recs {
		f.rows[recKey{r.TenantID, r.Key}] = r
	}
	return len(recs), nil
}

func (f *fakeStore) snapshot() func() {
	saved := make(map[recKey]domain.Recommendation, len(f.rows))
	for k, v := range f.rows {
		saved[k] = v
	}
	return func() { f.rows = saved }
}

func (f *fakeStore) active(tenant int64) []domain.Recommendation {
	var out []domain.Recommendation
	for k, r := range f.rows {
		if k.tenant == tenant && r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

type harness struct {
	svc   *Service
	store *fakeStore
	sigs  *fakeSigs
	hold  fakeHoldings
	db    *repotest.DB
	m     *metrics.Engine
}

func newHarness() *harness {
	st := &fakeStore{rows: map[recKey]domain.Recommendation{}}
	h := &harness{store: st, sigs: &fakeSigs{}, hold: fakeHoldings{}, db: &repotest.DB{Snapshot: st.snapshot}, m: metrics.New(nil)}
	h.svc = New(h.db, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return st }),
		h.hold, h.sigs, h.m, time.UTC)
	h.svc.Now = kit.Clock(clock)
	return h
}

func sig(barcode, name string, expiry time.Time, conf float64, tenants int) sigdom.BatchSignature {
	return sigdom.BatchSignature{
		Key:                 sigdom.Key{Barcode: barcode, NameNorm: name, Expiry: expiry},
		Confidence:          conf,
		DistinctTenantCount: tenants,
	}
}

func held(barcode, name string, expiry time.Time) invdom.HeldSignature {
	return invdom.HeldSignature{Barcode: barcode, ProductName: name, ExpiryDate: expiry}
}

// barcodes returns the tenant's active barcodes sorted
func (f *fakeStore) barcodes(tenant int64) []string {
	var out []string
	for _, r := range f.active(tenant) {
		out = append(out, r.Barcode)
	}
	slices.Sort(out)
	return out
}

var defaults = domain.Params{HorizonDays: 14, MinConfidence: 0.5, MinRisk: 0.35, MaxRows: 500, SortBeforeCap: true}

func TestRecompute_ExpiringTodayRiskEqualsConfidence(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{held("100", "Milk", today)}
	h.sigs.rows = []sigdom.BatchSignature{sig("100", "milk", today, 0.828, 3)}

	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Activated != 1 {
		t.Fatalf("activated = %d, want 1", res.Activated)
	}

	got := h.store.active(1)
	if len(got) != 1 {
		t.Fatalf("active = %d, want 1", len(got))
	}
	r := got[0]
	if r.TimeRisk != 1.0 || r.Risk != 0.828 {
		t.Fatalf("time risk/risk = %v/%v, want 1/0.828", r.TimeRisk, r.Risk)
	}
	if r.Level != scoring.LevelLikely || r.StoreConfirmations != 3 {
		t.Fatalf("level/confirmations = %q/%d, want likely/3", r.Level, r.StoreConfirmations)
	}
	if !r.LastComputedAt.Equal(clock) {
		t.Fatalf("last computed = %v, want %v", r.LastComputedAt, clock)
	}
}

func TestRecompute_NeverRecommendsLotsTheTenantDoesNotHold(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{held("100", "Milk", today)}
	h.sigs.rows = []sigdom.BatchSignature{
		sig("100", "milk", today, 0.9, 5),
		sig("100", "milk", today.AddDate(0, 0, 1), 0.99, 40),
		sig("200", "bread", today, 0.99, 40),
		sig("100", "milk whole", today, 0.99, 40),
	}

	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Activated != 1 {
		t.Fatalf("activated = %d, want 1", res.Activated)
	}
	want := sigdom.Key{Barcode: "100", NameNorm: "milk", Expiry: today}
	for _, r := range h.store.active(1) {
		if r.Key != want {
			t.Fatalf("recommended %v which tenant 1 does not hold", r.Key)
		}
	}
	f := h.sigs.filter
	if !slices.Equal(f.Barcodes, []string{"100"}) || len(f.Expiries) != 1 || !f.Expiries[0].Equal(today) || f.MinConfidence != 0.5 {
		t.Fatalf("filter = %+v", f)
	}
}

func TestRecompute_EmptyHoldingsDeactivatesEverything(t *testing.T) {
	h := newHarness()
	k := sigdom.Key{Barcode: "100", NameNorm: "milk", Expiry: today}
	h.store.rows[recKey{1, k}] = domain.Recommendation{TenantID: 1, Key: k, IsActive: true}
	h.store.rows[recKey{2, k}] = domain.Recommendation{TenantID: 2, Key: k, IsActive: true}

	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Activated != 0 || res.Deactivated != 1 {
		t.Fatalf("activated/deactivated = %d/%d, want 0/1", res.Activated, res.Deactivated)
	}
	if n := len(h.store.active(1)); n != 0 {
		t.Fatalf("tenant 1 still has %d active rows", n)
	}
	// inactive rows stay as history
	if len(h.store.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(h.store.rows))
	}
	if got := h.store.rows[recKey{1, k}].LastComputedAt; !got.Equal(clock) {
		t.Fatalf("last computed = %v, want %v", got, clock)
	}
	if n := len(h.store.active(2)); n != 1 {
		t.Fatalf("tenant 2 active = %d, want untouched 1", n)
	}
}

func TestRecompute_LowConfidenceProducesNothing(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{held("100", "Milk", today)}
	h.sigs.rows = []sigdom.BatchSignature{sig("100", "milk", today, 0.08, 1)}

	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Activated != 0 || len(h.store.active(1)) != 0 {
		t.Fatalf("activated = %d, want nothing below min confidence", res.Activated)
	}
}

func TestRecompute_MinRiskAndHorizon(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{
		held("1", "a", today.AddDate(0, 0, 7)),  // tr 0.5, risk 0.45
		held("2", "b", today.AddDate(0, 0, 12)), // tr 1/7, risk 0.13
		held("3", "c", today.AddDate(0, 0, 14)), // past the horizon
		held("4", "d", today.AddDate(0, 0, -3)), // already expired
	}
	h.sigs.rows = []sigdom.BatchSignature{
		sig("1", "a", today.AddDate(0, 0, 7), 0.9, 2),
		sig("2", "b", today.AddDate(0, 0, 12), 0.9, 2),
		sig("3", "c", today.AddDate(0, 0, 14), 0.9, 2),
		sig("4", "d", today.AddDate(0, 0, -3), 0.6, 2),
	}

	if _, err := h.svc.Recompute(context.Background(), 1, defaults); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	got := map[string]domain.Recommendation{}
	for _, r := range h.store.active(1) {
		got[r.Barcode] = r
		if r.Risk > r.Confidence {
			t.Errorf("%s: risk %v above confidence %v", r.Barcode, r.Risk, r.Confidence)
		}
	}
	if len(got) != 2 {
		t.Fatalf("active = %v, want barcodes 1 and 4", h.store.barcodes(1))
	}
	if math.Abs(got["1"].Risk-0.45) > 1e-12 {
		t.Fatalf("risk of 1 = %v, want 0.45", got["1"].Risk)
	}
	if got["4"].TimeRisk != 1.0 || got["4"].Level != scoring.LevelWeak {
		t.Fatalf("expired lot = %+v", got["4"])
	}
}

func TestRecompute_RerunFlipsStaleRowsInactive(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{held("1", "a", today), held("2", "b", today)}
	h.sigs.rows = []sigdom.BatchSignature{sig("1", "a", today, 0.9, 2), sig("2", "b", today, 0.9, 2)}
	if _, err := h.svc.Recompute(context.Background(), 1, defaults); err != nil {
		t.Fatalf("first: %v", err)
	}
	if n := len(h.store.active(1)); n != 2 {
		t.Fatalf("active after first run = %d, want 2", n)
	}

	h.hold[1] = []invdom.HeldSignature{held("1", "a", today)}
	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if res.Deactivated != 2 || res.Activated != 1 {
		t.Fatalf("deactivated/activated = %d/%d, want 2/1", res.Deactivated, res.Activated)
	}
	if got := h.store.barcodes(1); !slices.Equal(got, []string{"1"}) || len(h.store.rows) != 2 {
		t.Fatalf("active = %v rows = %d, want [1] with 2 rows kept", got, len(h.store.rows))
	}

	if got := testutil.ToFloat64(h.m.RecommendationsActivated); got != 3 {
		t.Fatalf("activated metric = %v, want 3", got)
	}
	if got := testutil.ToFloat64(h.m.RecommendationsDeactivated); got != 2 {
		t.Fatalf("deactivated metric = %v, want 2", got)
	}
}

func TestRecompute_FailedUpsertRestoresPreviousSet(t *testing.T) {
	h := newHarness()
	k := sigdom.Key{Barcode: "1", NameNorm: "a", Expiry: today}
	prev := domain.Recommendation{TenantID: 1, Key: k, Risk: 0.7, IsActive: true}
	h.store.rows[recKey{1, k}] = prev
	h.hold[1] = []invdom.HeldSignature{held("1", "a", today)}
	h.sigs.rows = []sigdom.BatchSignature{sig("1", "a", today, 0.9, 2)}
	h.store.upsertErr = perr.Unavailablef("pg down")

	if _, err := h.svc.Recompute(context.Background(), 1, defaults); err == nil {
		t.Fatal("want error")
	}
	if got := h.store.rows[recKey{1, k}]; got != prev {
		t.Fatalf("row = %+v, want reset pass rolled back to %+v", got, prev)
	}
	if h.db.Rollbacks != 1 {
		t.Fatalf("rollbacks = %d, want 1", h.db.Rollbacks)
	}
	if got := testutil.ToFloat64(h.m.RecommendationsDeactivated); got != 0 {
		t.Fatalf("deactivated metric = %v, want 0", got)
	}
}

func TestRecompute_CandidateErrorWritesNothing(t *testing.T) {
	h := newHarness()
	k := sigdom.Key{Barcode: "1", NameNorm: "a", Expiry: today}
	h.store.rows[recKey{1, k}] = domain.Recommendation{TenantID: 1, Key: k, IsActive: true}
	h.hold[1] = []invdom.HeldSignature{held("1", "a", today)}
	h.sigs.err = errors.New("signatures unreadable")

	if _, err := h.svc.Recompute(context.Background(), 1, defaults); err == nil {
		t.Fatal("want error")
	}
	if n := len(h.store.active(1)); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}
	if n := h.db.Commits + h.db.Rollbacks; n != 0 {
		t.Fatalf("transactions = %d, want none", n)
	}
}

func TestRecompute_HeldRowsAreCleanedAndDeduped(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{
		held("1", "Crème Brûlée", today),
		held("1", "creme brulee", today),
		held("", "no barcode", today),
		held("2", "no expiry", time.Time{}),
	}
	h.sigs.rows = []sigdom.BatchSignature{sig("1", "creme brulee", today, 0.9, 2)}

	res, err := h.svc.Recompute(context.Background(), 1, defaults)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Held != 1 || res.Activated != 1 {
		t.Fatalf("held/activated = %d/%d, want 1/1", res.Held, res.Activated)
	}
}

func TestRecompute_CapAfterRanking(t *testing.T) {
	h := newHarness()
	h.hold[1] = []invdom.HeldSignature{
		held("1", "a", today.AddDate(0, 0, 10)),
		held("2", "b", today),
		held("3", "c", today.AddDate(0, 0, 1)),
	}
	h.sigs.rows = []sigdom.BatchSignature{
		sig("1", "a", today.AddDate(0, 0, 10), 0.99, 9),
		sig("2", "b", today, 0.9, 5),
		sig("3", "c", today.AddDate(0, 0, 1), 0.9, 5),
	}

	p := defaults
	p.MaxRows, p.MinRisk = 2, 0
	if _, err := h.svc.Recompute(context.Background(), 1, p); err != nil {
		t.Fatalf("ranked: %v", err)
	}
	if got := h.store.barcodes(1); !slices.Equal(got, []string{"2", "3"}) {
		t.Fatalf("ranked cap kept %v, want highest risk [2 3]", got)
	}

	p.SortBeforeCap = false
	if _, err := h.svc.Recompute(context.Background(), 1, p); err != nil {
		t.Fatalf("key order: %v", err)
	}
	if got := h.store.barcodes(1); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("key order cap kept %v, want first held lots [1 2]", got)
	}
}

func TestScore_OrderIsDeterministic(t *testing.T) {
	keys := []sigdom.Key{
		{Barcode: "b", NameNorm: "x", Expiry: today},
		{Barcode: "a", NameNorm: "x", Expiry: today},
		{Barcode: "c", NameNorm: "x", Expiry: today.AddDate(0, 0, 2)},
	}
	var cands []sigdom.BatchSignature
	for _, k := range keys {
		cands = append(cands, sigdom.BatchSignature{Key: k, Confidence: 0.9})
	}
	out := score(1, keys, cands, domain.Params{HorizonDays: 14, SortBeforeCap: true}, today, clock)
	var got []string
	for _, r := range out {
		got = append(got, r.Barcode)
	}
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("order = %v, want [a b c]", got)
	}
}

func TestRecompute_TodayFollowsLocation(t *testing.T) {
	h := newHarness()
	h.svc.Location = time.FixedZone("UTC+10", 10*3600)
	// 20:00 UTC on May 31 is already June 1 at UTC+10
	h.svc.Now = kit.Clock(today.Add(-4 * time.Hour))
	h.hold[1] = []invdom.HeldSignature{held("1", "a", today)}
	h.sigs.rows = []sigdom.BatchSignature{sig("1", "a", today, 0.9, 2)}

	if _, err := h.svc.Recompute(context.Background(), 1, defaults); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	got := h.store.active(1)
	if len(got) != 1 || got[0].TimeRisk != 1.0 {
		t.Fatalf("active = %+v, want one row expiring today", got)
	}
}

func TestRecompute_RejectsNegativeParams(t *testing.T) {
	h := newHarness()
	for _, p := range []domain.Params{{HorizonDays: -1}, {MaxRows: -1}} {
		if _, err := h.svc.Recompute(context.Background(), 1, p); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Errorf("%+v: err = %v, want invalid argument", p, err)
		}
	}
}
