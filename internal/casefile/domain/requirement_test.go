package domain

import (
	"testing"
	"time"
)

func TestNewRequirement(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	buffer := 5 * 24 * time.Hour

	t.Run("derives internal deadline", func(t *testing.T) {
		official := now.AddDate(0, 0, 15)
		r, err := NewRequirement("r1", "c1", "apostilled birth certificate", official, buffer, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := official.Add(-buffer); !r.InternalDeadline.Equal(want) {
			t.Fatalf("internal deadline = %v, want %v", r.InternalDeadline, want)
		}
		if r.Status != RequirementAberta {
			t.Fatalf("status = %s", r.Status)
		}
	})

	t.Run("past deadline is refused", func(t *testing.T) {
		_, err := NewRequirement("r1", "c1", "x", now.AddDate(0, 0, -1), buffer, now)
		if err != ErrInvalidDeadline {
			t.Fatalf("expected ErrInvalidDeadline, got %v", err)
		}
	})
}

func TestRequirementExtend(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	buffer := 5 * 24 * time.Hour
	official := now.AddDate(0, 0, 10)

	t.Run("extension shifts both deadlines", func(t *testing.T) {
		r, _ := NewRequirement("r1", "c1", "x", official, buffer, now)
		extended := official.AddDate(0, 0, 10)
		if err := r.Extend(extended, buffer); err != nil {
			t.Fatalf("extend: %v", err)
		}
		if !r.OfficialDeadline.Equal(extended) || !r.InternalDeadline.Equal(extended.Add(-buffer)) {
			t.Fatalf("deadlines not shifted: %+v", r)
		}
		if r.ExtensionCount != 1 {
			t.Fatalf("extension count = %d", r.ExtensionCount)
		}
	})

	t.Run("shortening is refused", func(t *testing.T) {
		r, _ := NewRequirement("r1", "c1", "x", official, buffer, now)
		if err := r.Extend(official.AddDate(0, 0, -2), buffer); err != ErrInvalidDeadline {
			t.Fatalf("expected ErrInvalidDeadline, got %v", err)
		}
	})

	t.Run("closed requirement cannot extend", func(t *testing.T) {
		r, _ := NewRequirement("r1", "c1", "x", official, buffer, now)
		r.Close(now)
		if err := r.Extend(official.AddDate(0, 0, 10), buffer); err != ErrRequirementNotOpen {
			t.Fatalf("expected ErrRequirementNotOpen, got %v", err)
		}
	})
}

func TestRequirementResponseAndClosure(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	buffer := 5 * 24 * time.Hour

	r, _ := NewRequirement("r1", "c1", "x", now.AddDate(0, 0, 10), buffer, now)

	if err := r.MarkResponded("tech-1", now); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if r.Status != RequirementRespondida || r.RespondedBy != "tech-1" {
		t.Fatalf("unexpected state: %+v", r)
	}
	if err := r.MarkResponded("tech-2", now); err != ErrRequirementNotOpen {
		t.Fatalf("expected ErrRequirementNotOpen, got %v", err)
	}

	if err := r.Close(now); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(now); err != ErrRequirementClosed {
		t.Fatalf("expected ErrRequirementClosed, got %v", err)
	}
}
