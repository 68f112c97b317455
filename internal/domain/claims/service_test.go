package claims

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pet-insurance-api/internal/domain/policies"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testClaimsRepo struct {
	byID map[string]Claim
}

func newTestClaimsRepo() *testClaimsRepo {
	return &testClaimsRepo{byID: map[string]Claim{}}
}

func (r *testClaimsRepo) Create(ctx context.Context, c Claim) error {
	r.byID[c.ID] = c
	return nil
}

func (r *testClaimsRepo) Update(ctx context.Context, c Claim) error {
	if _, ok := r.byID[c.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testClaimsRepo) GetByID(ctx context.Context, id string) (Claim, error) {
	c, ok := r.byID[id]
	if !ok {
		return Claim{}, errRepoNotFound
	}
	return c, nil
}

func (r *testClaimsRepo) ListAll(ctx context.Context) ([]Claim, error) {
	out := make([]Claim, 0)
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *testClaimsRepo) ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]Claim, error) {
	out := make([]Claim, 0)
	for _, c := range r.byID {
		for _, id := range policyIDs {
			if c.PolicyID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r *testClaimsRepo) CreateIfNoOpenClaim(ctx context.Context, c Claim, since time.Time) (bool, error) {
	for _, existing := range r.byID {
		if existing.PetID != c.PetID || existing.CreatedAt.Before(since) {
			continue
		}
		for _, st := range OpenStatuses {
			if existing.Status == st {
				return false, nil
			}
		}
	}
	r.byID[c.ID] = c
	return true, nil
}

type testPoliciesRepo struct {
	byID map[string]policies.Policy
}

func (r *testPoliciesRepo) Create(ctx context.Context, p policies.Policy) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testPoliciesRepo) Update(ctx context.Context, p policies.Policy) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testPoliciesRepo) GetByID(ctx context.Context, id string) (policies.Policy, error) {
	p, ok := r.byID[id]
	if !ok {
		return policies.Policy{}, errRepoNotFound
	}
	return p, nil
}

func (r *testPoliciesRepo) ListAll(ctx context.Context) ([]policies.Policy, error) {
	out := make([]policies.Policy, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testPoliciesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]policies.Policy, error) {
	out := make([]policies.Policy, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testPoliciesRepo) ListByPet(ctx context.Context, petID string) ([]policies.Policy, error) {
	out := make([]policies.Policy, 0)
	for _, p := range r.byID {
		if p.PetID == petID {
			out = append(out, p)
		}
	}
	return out, nil
}

// -------------------------
// Harness
// -------------------------

func newTestService(t *testing.T) (*Service, *testClaimsRepo, *testPoliciesRepo) {
	t.Helper()
	claimsRepo := newTestClaimsRepo()
	policiesRepo := &testPoliciesRepo{byID: map[string]policies.Policy{}}
	svc := NewService(claimsRepo, policies.NewService(policiesRepo))
	return svc, claimsRepo, policiesRepo
}

func activePolicy(id, petID, ownerID string) policies.Policy {
	now := time.Now()
	return policies.Policy{
		ID:             id,
		PetID:          petID,
		OwnerUserID:    ownerID,
		StartDate:      now.AddDate(0, -1, 0),
		EndDate:        now.AddDate(1, 0, 0),
		Status:         policies.StatusActive,
		CoverageType:   policies.CoverageStandard,
		CoverageAmount: 25000,
		Deductible:     300,
	}
}

func validCreateInput(policyID string) CreateInput {
	return CreateInput{
		PolicyID:     policyID,
		IncidentDate: time.Now().AddDate(0, 0, -1),
		Description:  "vomiting and lethargy",
		ClaimType:    TypeIllness,
		ClaimAmount:  5000,
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_AgainstActivePolicy(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")

	c, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.Status != StatusPending {
		t.Fatalf("expected pending, got %s", c.Status)
	}
	if c.Source != SourceManual {
		t.Fatalf("expected manual source, got %s", c.Source)
	}
	if c.PetID != "pet-1" {
		t.Fatalf("pet id should come from the policy, got %q", c.PetID)
	}
	if !strings.HasPrefix(c.ClaimNumber, "CLM-") {
		t.Fatalf("unexpected claim number %q", c.ClaimNumber)
	}
}

func TestService_Create_PolicyChecks(t *testing.T) {
	svc, _, polRepo := newTestService(t)

	// Póliza inexistente.
	if _, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("ghost")); err != ErrPolicyNotFound {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}

	// Póliza vencida: la derivación fresca la ve expired.
	expired := activePolicy("pol-exp", "pet-1", "owner-1")
	expired.StartDate = time.Now().AddDate(-2, 0, 0)
	expired.EndDate = time.Now().AddDate(0, -1, 0)
	polRepo.byID["pol-exp"] = expired

	if _, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-exp")); err != ErrPolicyNotActive {
		t.Fatalf("expected ErrPolicyNotActive, got %v", err)
	}

	// Owner ajeno.
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")
	if _, err := svc.Create(context.Background(), "owner-2", "owner", validCreateInput("pol-1")); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Un agente sí puede reclamar sobre pólizas ajenas.
	if _, err := svc.Create(context.Background(), "agent-1", "agent", validCreateInput("pol-1")); err != nil {
		t.Fatalf("agent create error: %v", err)
	}
}

func TestService_Approve_RunsSettlement(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")

	c, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := svc.Approve(context.Background(), c.ID, "agent-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}
	// 5000 - 300 de deducible, bajo el tope de 25000.
	if got.ApprovedAmount != 4700 {
		t.Fatalf("approved amount = %v, want 4700", got.ApprovedAmount)
	}
	if got.ReviewedByUserID != "agent-1" || got.ReviewDate == nil {
		t.Fatalf("review metadata not stamped: %+v", got)
	}
}

func TestService_Lifecycle_Transitions(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")

	c, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// pending => under_review => approved => paid
	if _, err := svc.Pay(context.Background(), c.ID); err != ErrInvalidTransition {
		t.Fatalf("pay from pending: expected ErrInvalidTransition, got %v", err)
	}

	reviewed, err := svc.StartReview(context.Background(), c.ID, "agent-1")
	if err != nil {
		t.Fatalf("StartReview error: %v", err)
	}
	if reviewed.Status != StatusUnderReview {
		t.Fatalf("expected under_review, got %s", reviewed.Status)
	}

	if _, err := svc.StartReview(context.Background(), c.ID, "agent-1"); err != ErrInvalidTransition {
		t.Fatalf("double review: expected ErrInvalidTransition, got %v", err)
	}

	approved, err := svc.Approve(context.Background(), c.ID, "agent-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	if _, err := svc.Reject(context.Background(), c.ID, "agent-1", "late paperwork"); err != ErrInvalidTransition {
		t.Fatalf("reject after approve: expected ErrInvalidTransition, got %v", err)
	}

	paid, err := svc.Pay(context.Background(), approved.ID)
	if err != nil {
		t.Fatalf("Pay error: %v", err)
	}
	if paid.Status != StatusPaid || paid.PaymentDate == nil {
		t.Fatalf("unexpected paid claim: %+v", paid)
	}

	// paid es terminal.
	if _, err := svc.Pay(context.Background(), c.ID); err != ErrInvalidTransition {
		t.Fatalf("double pay: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.Approve(context.Background(), c.ID, "agent-1"); err != ErrInvalidTransition {
		t.Fatalf("approve after pay: expected ErrInvalidTransition, got %v", err)
	}
}

func TestService_Reject_RequiresReason(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")

	c, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Reject(context.Background(), c.ID, "agent-1", "  "); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput without reason, got %v", err)
	}

	rejected, err := svc.Reject(context.Background(), c.ID, "agent-1", "pre-existing condition")
	if err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.RejectionReason == "" {
		t.Fatalf("unexpected rejected claim: %+v", rejected)
	}
}

func TestService_CreateFromTelemetry_DedupWindow(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")

	in := TelemetryInput{
		PetID:        "pet-1",
		ReadingID:    "read-1",
		HealthStatus: "critical",
		HealthIndex:  12,
		AlertMessage: "heart rate out of range",
	}

	c, err := svc.CreateFromTelemetry(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateFromTelemetry error: %v", err)
	}
	if c.Source != SourceIoT {
		t.Fatalf("expected iot_device source, got %s", c.Source)
	}
	if !strings.HasPrefix(c.ClaimNumber, "IOT-") {
		t.Fatalf("unexpected claim number %q", c.ClaimNumber)
	}

	// Segundo evento dentro de la ventana: dedup.
	if _, err := svc.CreateFromTelemetry(context.Background(), in); err != ErrOpenClaimExists {
		t.Fatalf("expected ErrOpenClaimExists, got %v", err)
	}
}

func TestService_CreateFromTelemetry_RequiresActivePolicy(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateFromTelemetry(context.Background(), TelemetryInput{
		PetID:        "pet-without-policy",
		HealthStatus: "critical",
	})
	if err != ErrPolicyNotActive {
		t.Fatalf("expected ErrPolicyNotActive, got %v", err)
	}
}

func TestService_ListFor_OwnerScoped(t *testing.T) {
	svc, _, polRepo := newTestService(t)
	polRepo.byID["pol-1"] = activePolicy("pol-1", "pet-1", "owner-1")
	polRepo.byID["pol-2"] = activePolicy("pol-2", "pet-2", "owner-2")

	if _, err := svc.Create(context.Background(), "owner-1", "owner", validCreateInput("pol-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-2", "owner", validCreateInput("pol-2")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	mine, err := svc.ListFor(context.Background(), "owner-1", "owner")
	if err != nil {
		t.Fatalf("ListFor error: %v", err)
	}
	if len(mine) != 1 || mine[0].PolicyID != "pol-1" {
		t.Fatalf("owner list = %+v", mine)
	}

	all, err := svc.ListFor(context.Background(), "agent-1", "agent")
	if err != nil {
		t.Fatalf("ListFor error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("staff should see all claims, got %d", len(all))
	}
}
