package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/shopspring/decimal"
)

func newTestContractService() (*ContractService, *fakeContractRepo, *fakePaymentRepo, *fakePublisher) {
	contracts := newFakeContractRepo()
	payments := newFakePaymentRepo()
	pub := &fakePublisher{}
	s := NewContractService(contracts, payments, fakeTransactor{}, pub, testLogger())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, contracts, payments, pub
}

func draftContract(t *testing.T, s *ContractService) *domain.Contract {
	t.Helper()
	c, err := s.Create(context.Background(), CreateContractCommand{
		OpportunityID:    "opp-1",
		CaseID:           "case-1",
		TotalFee:         decimal.RequireFromString("1500"),
		Currency:         "EUR",
		InstallmentCount: 3,
		FirstDueDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		ActorID:          "staff-1",
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return c
}

func TestContractCreate(t *testing.T) {
	s, _, _, _ := newTestContractService()
	draftContract(t, s)

	// The opportunity already holds an active contract.
	_, err := s.Create(context.Background(), CreateContractCommand{
		OpportunityID:    "opp-1",
		CaseID:           "case-1",
		TotalFee:         decimal.RequireFromString("900"),
		Currency:         "EUR",
		InstallmentCount: 1,
		FirstDueDate:     time.Now(),
		ActorID:          "staff-1",
	})
	if !errors.Is(err, domain.ErrActiveContractExists) {
		t.Fatalf("expected ErrActiveContractExists, got %v", err)
	}
}

func TestContractSignGeneratesScheduleOnce(t *testing.T) {
	s, contracts, payments, pub := newTestContractService()
	c := draftContract(t, s)

	if _, err := s.SubmitForReview(context.Background(), c.ContractID, "staff-1"); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := s.Send(context.Background(), c.ContractID, "staff-1"); err != nil {
		t.Fatalf("send: %v", err)
	}

	signed, err := s.Sign(context.Background(), c.ContractID, "s3://bucket/signed.pdf", "client-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signed.Status != domain.ContractAssinado || signed.SignedAt == nil {
		t.Fatalf("signature not recorded: %+v", signed)
	}

	schedule, _ := payments.ListByContract(context.Background(), c.ContractID)
	if len(schedule) != 3 {
		t.Fatalf("generated %d installments, want 3", len(schedule))
	}

	if len(pub.events) != 1 || pub.events[0].topic != domain.TopicContractSigned {
		t.Fatalf("expected one signed event, got %+v", pub.events)
	}

	// A second signature submission must not regenerate the schedule.
	contracts.contracts[c.ContractID].Status = domain.ContractEnviado
	_, err = s.Sign(context.Background(), c.ContractID, "s3://bucket/signed.pdf", "client-1")
	if !errors.Is(err, domain.ErrAlreadyGenerated) {
		t.Fatalf("expected ErrAlreadyGenerated, got %v", err)
	}
	schedule, _ = payments.ListByContract(context.Background(), c.ContractID)
	if len(schedule) != 3 {
		t.Fatalf("schedule regenerated: %d installments", len(schedule))
	}
}

func TestContractSignGuards(t *testing.T) {
	t.Run("cannot sign a draft", func(t *testing.T) {
		s, _, _, _ := newTestContractService()
		c := draftContract(t, s)

		_, err := s.Sign(context.Background(), c.ContractID, "url", "client-1")
		if !errors.Is(err, domain.ErrInvalidContractStatus) {
			t.Fatalf("expected ErrInvalidContractStatus, got %v", err)
		}
	})

	t.Run("signature needs the document", func(t *testing.T) {
		s, _, _, _ := newTestContractService()
		c := draftContract(t, s)
		s.SubmitForReview(context.Background(), c.ContractID, "staff-1")
		s.Send(context.Background(), c.ContractID, "staff-1")

		_, err := s.Sign(context.Background(), c.ContractID, "  ", "client-1")
		if !errors.Is(err, domain.ErrSignedDocumentRequired) {
			t.Fatalf("expected ErrSignedDocumentRequired, got %v", err)
		}
	})
}

func TestContractCancel(t *testing.T) {
	s, _, _, pub := newTestContractService()
	c := draftContract(t, s)

	got, err := s.Cancel(context.Background(), c.ContractID, "client gave up", "staff-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != domain.ContractCancelado || got.CancelReason != "client gave up" {
		t.Fatalf("cancellation not recorded: %+v", got)
	}
	if len(pub.events) != 1 || pub.events[0].topic != domain.TopicContractCancelled {
		t.Fatalf("expected cancellation event, got %+v", pub.events)
	}

	if _, err := s.Cancel(context.Background(), c.ContractID, "again", "staff-1"); !errors.Is(err, domain.ErrInvalidContractStatus) {
		t.Fatalf("expected ErrInvalidContractStatus, got %v", err)
	}
}
