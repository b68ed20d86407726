package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
)

type fakeContractRepo struct {
	contracts map[string]*billing.Contract
	saveErr   error
}

func (r *fakeContractRepo) Create(_ context.Context, c *billing.Contract) error {
	r.contracts[c.ContractID] = c
	return nil
}

func (r *fakeContractRepo) Save(_ context.Context, c *billing.Contract) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.contracts[c.ContractID] = c
	return nil
}

func (r *fakeContractRepo) GetByContractID(_ context.Context, contractID string) (*billing.Contract, error) {
	c, ok := r.contracts[contractID]
	if !ok {
		return nil, billing.ErrContractNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeContractRepo) GetActiveByOpportunityID(_ context.Context, _ string) (*billing.Contract, error) {
	return nil, billing.ErrContractNotFound
}

func (r *fakeContractRepo) ListAwaitingSignature(_ context.Context, _, _ int) ([]*billing.Contract, error) {
	return nil, nil
}

type fakeCaseRepo struct {
	cases   map[string]*casefile.CaseFile
	saveErr error
}

func (r *fakeCaseRepo) Create(_ context.Context, cf *casefile.CaseFile) error {
	r.cases[cf.CaseID] = cf
	return nil
}

func (r *fakeCaseRepo) Save(_ context.Context, cf *casefile.CaseFile) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.cases[cf.CaseID] = cf
	return nil
}

func (r *fakeCaseRepo) GetByCaseID(_ context.Context, caseID string) (*casefile.CaseFile, error) {
	cf, ok := r.cases[caseID]
	if !ok {
		return nil, casefile.ErrCaseNotFound
	}
	copied := *cf
	return &copied, nil
}

func (r *fakeCaseRepo) GetByOpportunityID(_ context.Context, _ string) (*casefile.CaseFile, error) {
	return nil, casefile.ErrCaseNotFound
}

func (r *fakeCaseRepo) ListActive(_ context.Context, _, _ int) ([]*casefile.CaseFile, error) {
	return nil, nil
}

// rollbackTransactor mimics a real transaction: when fn fails, writes made
// through the snapshotted maps are discarded.
type rollbackTransactor struct {
	contracts *fakeContractRepo
	cases     *fakeCaseRepo
}

func (t rollbackTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	contractSnap := snapshot(t.contracts.contracts)
	caseSnap := snapshot(t.cases.cases)

	if err := fn(ctx); err != nil {
		t.contracts.contracts = contractSnap
		t.cases.cases = caseSnap
		return err
	}
	return nil
}

func snapshot[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		copied := *v
		out[k] = &copied
	}
	return out
}

type fakePublisher struct {
	topics []string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, _ string, _ any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func newTestController() (*Controller, *fakeContractRepo, *fakeCaseRepo, *fakePublisher) {
	contracts := &fakeContractRepo{contracts: make(map[string]*billing.Contract)}
	cases := &fakeCaseRepo{cases: make(map[string]*casefile.CaseFile)}
	pub := &fakePublisher{}
	c := NewController(contracts, cases, rollbackTransactor{contracts: contracts, cases: cases}, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c, contracts, cases, pub
}

func seedSignedPair(contracts *fakeContractRepo, cases *fakeCaseRepo) {
	contract, _ := billing.NewContract("ct-1", "opp-1", "case-1", decimal.RequireFromString("1500"), "EUR", 3, time.Now())
	contract.Status = billing.ContractAssinado
	contracts.contracts[contract.ContractID] = contract

	cf := casefile.NewCaseFile("case-1", "opp-1", "imigra", casefile.ServiceVisa)
	cf.TechnicalStatus = casefile.StatusEmAcompanhamento
	cases.cases[cf.CaseID] = cf
}

func TestSuspendFreezesBoth(t *testing.T) {
	c, contracts, cases, pub := newTestController()
	seedSignedPair(contracts, cases)

	if err := c.Suspend(context.Background(), "ct-1", "installments overdue", "manager-1"); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	contract := contracts.contracts["ct-1"]
	cf := cases.cases["case-1"]
	if !contract.IsSuspended || !cf.IsSuspended {
		t.Fatalf("freeze incomplete: contract=%v case=%v", contract.IsSuspended, cf.IsSuspended)
	}
	if cf.SuspensionReason != "installments overdue" {
		t.Fatalf("reason = %q", cf.SuspensionReason)
	}
	if cf.TechnicalStatus != casefile.StatusEmAcompanhamento {
		t.Fatalf("technical status changed to %s", cf.TechnicalStatus)
	}
	if len(pub.topics) != 1 || pub.topics[0] != casefile.TopicCaseSuspended {
		t.Fatalf("topics = %v", pub.topics)
	}
}

func TestSuspendGuards(t *testing.T) {
	t.Run("unsigned contract", func(t *testing.T) {
		c, contracts, cases, _ := newTestController()
		seedSignedPair(contracts, cases)
		contracts.contracts["ct-1"].Status = billing.ContractEnviado

		err := c.Suspend(context.Background(), "ct-1", "x", "manager-1")
		if !errors.Is(err, billing.ErrContractNotSigned) {
			t.Fatalf("expected ErrContractNotSigned, got %v", err)
		}
		if cases.cases["case-1"].IsSuspended {
			t.Fatal("case frozen despite failed contract guard")
		}
	})

	t.Run("already suspended", func(t *testing.T) {
		c, contracts, cases, _ := newTestController()
		seedSignedPair(contracts, cases)
		c.Suspend(context.Background(), "ct-1", "x", "manager-1")

		err := c.Suspend(context.Background(), "ct-1", "again", "manager-1")
		if !errors.Is(err, billing.ErrAlreadySuspended) {
			t.Fatalf("expected ErrAlreadySuspended, got %v", err)
		}
	})

	t.Run("case save failure rolls the contract back", func(t *testing.T) {
		c, contracts, cases, _ := newTestController()
		seedSignedPair(contracts, cases)
		cases.saveErr = errors.New("db down")

		if err := c.Suspend(context.Background(), "ct-1", "x", "manager-1"); err == nil {
			t.Fatal("expected error")
		}
		if contracts.contracts["ct-1"].IsSuspended {
			t.Fatal("contract frozen without its case")
		}
	})
}

func TestReactivate(t *testing.T) {
	c, contracts, cases, pub := newTestController()
	seedSignedPair(contracts, cases)

	if err := c.Suspend(context.Background(), "ct-1", "overdue", "manager-1"); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if err := c.Reactivate(context.Background(), "ct-1", "manager-1"); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	contract := contracts.contracts["ct-1"]
	cf := cases.cases["case-1"]
	if contract.IsSuspended || cf.IsSuspended {
		t.Fatal("freeze not lifted")
	}
	if cf.SuspensionReason != "" || cf.SuspendedAt != nil {
		t.Fatalf("suspension residue: %+v", cf)
	}
	// The case resumes exactly where it was.
	if cf.TechnicalStatus != casefile.StatusEmAcompanhamento {
		t.Fatalf("technical status changed to %s", cf.TechnicalStatus)
	}
	if len(pub.topics) != 2 || pub.topics[1] != casefile.TopicCaseReactivated {
		t.Fatalf("topics = %v", pub.topics)
	}

	if err := c.Reactivate(context.Background(), "ct-1", "manager-1"); !errors.Is(err, billing.ErrNotSuspended) {
		t.Fatalf("expected ErrNotSuspended, got %v", err)
	}
}
