package domain

import (
	"testing"
	"time"
)

func TestDocumentLifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("submit review approve", func(t *testing.T) {
		d := NewDocument("d1", "c1", "passport", true)
		if err := d.Submit("s3://bucket/passport.pdf", now); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if err := d.StartReview(); err != nil {
			t.Fatalf("start review: %v", err)
		}
		if err := d.Approve("tech-1", now); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if d.Status != DocumentAprovado || d.ReviewedBy != "tech-1" {
			t.Fatalf("unexpected state: %+v", d)
		}
	})

	t.Run("approval is terminal", func(t *testing.T) {
		d := NewDocument("d1", "c1", "passport", true)
		d.Status = DocumentAprovado
		if err := d.Submit("url", now); err != ErrDocumentAlreadyApproved {
			t.Fatalf("expected ErrDocumentAlreadyApproved, got %v", err)
		}
		if err := d.SetPostProtocolPending(true); err != ErrDocumentAlreadyApproved {
			t.Fatalf("expected ErrDocumentAlreadyApproved, got %v", err)
		}
	})

	t.Run("rejection requires reason and allows resubmission", func(t *testing.T) {
		d := NewDocument("d1", "c1", "passport", true)
		d.Submit("url", now)
		d.StartReview()

		if err := d.Reject("  ", "tech-1", now); err != ErrRejectReasonRequired {
			t.Fatalf("expected ErrRejectReasonRequired, got %v", err)
		}
		if err := d.Reject("illegible scan", "tech-1", now); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if d.Status != DocumentRejeitado || d.RejectionReason != "illegible scan" {
			t.Fatalf("unexpected state: %+v", d)
		}

		if err := d.Submit("url-v2", now.Add(time.Hour)); err != nil {
			t.Fatalf("resubmit: %v", err)
		}
		if d.Status != DocumentEnviado || d.RejectionReason != "" {
			t.Fatalf("resubmission did not reset review: %+v", d)
		}
	})

	t.Run("review requires submission", func(t *testing.T) {
		d := NewDocument("d1", "c1", "passport", true)
		if err := d.StartReview(); err != ErrDocumentNotSubmitted {
			t.Fatalf("expected ErrDocumentNotSubmitted, got %v", err)
		}
		if err := d.Approve("tech-1", now); err != ErrDocumentNotUnderReview {
			t.Fatalf("expected ErrDocumentNotUnderReview, got %v", err)
		}
	})
}

func TestSatisfiesGate(t *testing.T) {
	now := time.Now()

	t.Run("optional document never blocks", func(t *testing.T) {
		d := NewDocument("d1", "c1", "photo", false)
		if !d.SatisfiesGate() {
			t.Fatal("optional document should satisfy the gate")
		}
	})

	t.Run("required document blocks until approved", func(t *testing.T) {
		d := NewDocument("d1", "c1", "passport", true)
		if d.SatisfiesGate() {
			t.Fatal("unapproved required document should block")
		}
		d.Submit("url", now)
		d.StartReview()
		d.Approve("tech-1", now)
		if !d.SatisfiesGate() {
			t.Fatal("approved document should satisfy the gate")
		}
	})

	t.Run("post-protocol pending unblocks", func(t *testing.T) {
		d := NewDocument("d1", "c1", "tie_card", true)
		if err := d.SetPostProtocolPending(true); err != nil {
			t.Fatalf("set pending: %v", err)
		}
		if !d.SatisfiesGate() {
			t.Fatal("deferred document should satisfy the gate")
		}
	})
}
