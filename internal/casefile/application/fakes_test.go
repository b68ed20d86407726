package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lexmigra/caseops/internal/casefile/domain"
)

// In-memory fakes backing the service tests. They keep the repository
// contract (not-found sentinels, version bump on save) without a database.

type fakeCaseRepo struct {
	cases   map[string]*domain.CaseFile
	saveErr error
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[string]*domain.CaseFile)}
}

func (r *fakeCaseRepo) Create(_ context.Context, cf *domain.CaseFile) error {
	r.cases[cf.CaseID] = cf
	return nil
}

func (r *fakeCaseRepo) Save(_ context.Context, cf *domain.CaseFile) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cf.Version++
	r.cases[cf.CaseID] = cf
	return nil
}

func (r *fakeCaseRepo) GetByCaseID(_ context.Context, caseID string) (*domain.CaseFile, error) {
	cf, ok := r.cases[caseID]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	copied := *cf
	return &copied, nil
}

func (r *fakeCaseRepo) GetByOpportunityID(_ context.Context, opportunityID string) (*domain.CaseFile, error) {
	for _, cf := range r.cases {
		if cf.OpportunityID == opportunityID {
			copied := *cf
			return &copied, nil
		}
	}
	return nil, domain.ErrCaseNotFound
}

func (r *fakeCaseRepo) ListActive(_ context.Context, _, _ int) ([]*domain.CaseFile, error) {
	var out []*domain.CaseFile
	for _, cf := range r.cases {
		if !cf.IsTerminal() {
			out = append(out, cf)
		}
	}
	return out, nil
}

type fakeDocumentRepo struct {
	docs map[string]*domain.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *fakeDocumentRepo) CreateBatch(_ context.Context, docs []*domain.Document) error {
	for _, d := range docs {
		r.docs[d.DocumentID] = d
	}
	return nil
}

func (r *fakeDocumentRepo) Save(_ context.Context, doc *domain.Document) error {
	r.docs[doc.DocumentID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetByDocumentID(_ context.Context, documentID string) (*domain.Document, error) {
	d, ok := r.docs[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDocumentRepo) ListByCase(_ context.Context, caseID string) ([]*domain.Document, error) {
	var out []*domain.Document
	for _, d := range r.docs {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeRequirementRepo struct {
	reqs map[string]*domain.Requirement
}

func newFakeRequirementRepo() *fakeRequirementRepo {
	return &fakeRequirementRepo{reqs: make(map[string]*domain.Requirement)}
}

func (r *fakeRequirementRepo) Create(_ context.Context, req *domain.Requirement) error {
	r.reqs[req.RequirementID] = req
	return nil
}

func (r *fakeRequirementRepo) Save(_ context.Context, req *domain.Requirement) error {
	r.reqs[req.RequirementID] = req
	return nil
}

func (r *fakeRequirementRepo) GetByRequirementID(_ context.Context, requirementID string) (*domain.Requirement, error) {
	req, ok := r.reqs[requirementID]
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequirementRepo) ListByCase(_ context.Context, caseID string) ([]*domain.Requirement, error) {
	var out []*domain.Requirement
	for _, req := range r.reqs {
		if req.CaseID == caseID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequirementRepo) CountOpenByCase(_ context.Context, caseID string) (int64, error) {
	var n int64
	for _, req := range r.reqs {
		if req.CaseID == caseID && req.Status != domain.RequirementEncerrada {
			n++
		}
	}
	return n, nil
}

func (r *fakeRequirementRepo) ListOpen(_ context.Context, _, _ int) ([]*domain.Requirement, error) {
	var out []*domain.Requirement
	for _, req := range r.reqs {
		if req.Status != domain.RequirementEncerrada {
			out = append(out, req)
		}
	}
	return out, nil
}

type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic string, key string, event any) error {
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func testChecklists() DocumentChecklists {
	return DocumentChecklists{
		domain.ServiceVisa:  {"passport", "photo", "criminal_record"},
		domain.ServiceOther: {"passport"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
