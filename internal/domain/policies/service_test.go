package policies

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Policy
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Policy{}}
}

func (r *testRepo) Create(ctx context.Context, p Policy) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Policy) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Policy, error) {
	p, ok := r.byID[id]
	if !ok {
		return Policy{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Policy, error) {
	out := make([]Policy, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Policy, error) {
	out := make([]Policy, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) ListByPet(ctx context.Context, petID string) ([]Policy, error) {
	out := make([]Policy, 0)
	for _, p := range r.byID {
		if p.PetID == petID {
			out = append(out, p)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestService_Create_DerivesActiveInsideWindow(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{
		PetID:          "pet-1",
		StartDate:      fixedNow().AddDate(0, -1, 0),
		EndDate:        fixedNow().AddDate(1, 0, 0),
		CoverageType:   CoverageStandard,
		Premium:        1250,
		CoverageAmount: 25000,
		Deductible:     300,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.Status != StatusActive {
		t.Fatalf("expected active, got %s", p.Status)
	}
	if p.PolicyNumber == "" {
		t.Fatalf("expected policy number")
	}
}

func TestService_Create_FuturePolicyStaysPending(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.now = fixedNow

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{
		PetID:          "pet-1",
		StartDate:      fixedNow().AddDate(0, 1, 0),
		EndDate:        fixedNow().AddDate(1, 1, 0),
		CoverageType:   CoverageBasic,
		Premium:        563,
		CoverageAmount: 10000,
		Deductible:     500,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.Status != StatusPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
}

func TestService_GetByID_ReturnsFreshStatus(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	// Guardada como active pero ya vencida: la lectura debe verla expired.
	repo.byID["p1"] = Policy{
		ID:        "p1",
		Status:    StatusActive,
		StartDate: fixedNow().AddDate(-2, 0, 0),
		EndDate:   fixedNow().AddDate(0, -1, 0),
	}

	p, err := svc.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if p.Status != StatusExpired {
		t.Fatalf("expected expired on fresh read, got %s", p.Status)
	}
}

func TestService_Cancel_TerminalAndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	repo.byID["p1"] = Policy{
		ID:        "p1",
		Status:    StatusActive,
		StartDate: fixedNow().AddDate(0, -1, 0),
		EndDate:   fixedNow().AddDate(1, 0, 0),
	}

	p, err := svc.Cancel(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if p.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", p.Status)
	}

	// idempotente
	p2, err := svc.Cancel(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Cancel #2 error: %v", err)
	}
	if p2.Status != StatusCancelled {
		t.Fatalf("expected cancelled after second cancel, got %s", p2.Status)
	}

	// Una lectura posterior no la "revive" aunque esté dentro de la ventana.
	got, err := svc.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("cancelled policy re-derived to %s", got.Status)
	}
}

func TestService_Renew_ExtendsOneYearFromMax(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	// Vencida hace meses: renueva desde ahora.
	repo.byID["p1"] = Policy{
		ID:        "p1",
		Status:    StatusExpired,
		StartDate: fixedNow().AddDate(-2, 0, 0),
		EndDate:   fixedNow().AddDate(0, -3, 0),
	}

	p, err := svc.Renew(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Renew error: %v", err)
	}
	if p.Status != StatusActive {
		t.Fatalf("expected active after renew, got %s", p.Status)
	}
	if want := fixedNow().AddDate(1, 0, 0); !p.EndDate.Equal(want) {
		t.Fatalf("end date = %v, want %v", p.EndDate, want)
	}

	// Cancelada: no se renueva.
	repo.byID["p2"] = Policy{ID: "p2", Status: StatusCancelled}
	if _, err := svc.Renew(context.Background(), "p2"); err != ErrBadState {
		t.Fatalf("expected ErrBadState renewing cancelled policy, got %v", err)
	}
}

func TestService_ActiveForPet_PicksDerivedActive(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	// Guardada pending pero dentro de ventana => derivada active, debe ganar.
	repo.byID["p1"] = Policy{
		ID:        "p1",
		PetID:     "pet-1",
		Status:    StatusPending,
		StartDate: fixedNow().AddDate(0, -1, 0),
		EndDate:   fixedNow().AddDate(0, 6, 0),
	}
	// Vencida: no cuenta.
	repo.byID["p2"] = Policy{
		ID:        "p2",
		PetID:     "pet-1",
		Status:    StatusActive,
		StartDate: fixedNow().AddDate(-2, 0, 0),
		EndDate:   fixedNow().AddDate(0, -1, 0),
	}

	p, err := svc.ActiveForPet(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("ActiveForPet error: %v", err)
	}
	if p.ID != "p1" {
		t.Fatalf("expected p1, got %s", p.ID)
	}
	if p.Status != StatusActive {
		t.Fatalf("expected derived active, got %s", p.Status)
	}

	if _, err := svc.ActiveForPet(context.Background(), "pet-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for pet without policy, got %v", err)
	}
}
