package application

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/internal/sla/domain"
)

var testThresholds = domain.Thresholds{
	FirstContact:     24 * time.Hour,
	PaymentTier1:     24 * time.Hour,
	PaymentTier2:     72 * time.Hour,
	PaymentTier3:     7 * 24 * time.Hour,
	SignatureTier2:   1 * 24 * time.Hour,
	SignatureTier3:   3 * 24 * time.Hour,
	SignatureTier4:   5 * 24 * time.Hour,
	SignatureCancel:  8 * 24 * time.Hour,
	RequirementReply: 5 * 24 * time.Hour,
}

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testMonitor() *Monitor {
	return NewMonitor(testThresholds, func() time.Time { return now })
}

func TestEvaluateCaseFirstContact(t *testing.T) {
	t.Run("stale case alerts", func(t *testing.T) {
		cf := casefile.NewCaseFile("case-1", "opp-1", "imigra", casefile.ServiceVisa)
		cf.CreatedAt = now.Add(-30 * time.Hour)

		alerts := testMonitor().EvaluateCase(cf)
		if len(alerts) != 1 {
			t.Fatalf("got %d alerts, want 1", len(alerts))
		}
		a := alerts[0]
		if a.Kind != domain.AlertFirstContact || a.Tier != 1 || a.Audience != domain.AudienceStaff {
			t.Fatalf("unexpected alert: %+v", a)
		}
	})

	t.Run("contacted case is quiet", func(t *testing.T) {
		cf := casefile.NewCaseFile("case-1", "opp-1", "imigra", casefile.ServiceVisa)
		cf.CreatedAt = now.Add(-30 * time.Hour)
		contacted := now.Add(-20 * time.Hour)
		cf.FirstContactAt = &contacted

		if alerts := testMonitor().EvaluateCase(cf); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})

	t.Run("fresh case is quiet", func(t *testing.T) {
		cf := casefile.NewCaseFile("case-1", "opp-1", "imigra", casefile.ServiceVisa)
		cf.CreatedAt = now.Add(-2 * time.Hour)

		if alerts := testMonitor().EvaluateCase(cf); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})
}

func overduePayment(overdue time.Duration) *billing.Payment {
	return &billing.Payment{
		PaymentID:         "pay-1",
		ContractID:        "ct-1",
		CaseID:            "case-1",
		InstallmentNumber: 2,
		Amount:            decimal.RequireFromString("500"),
		Currency:          "EUR",
		DueDate:           now.Add(-overdue),
		Status:            billing.PaymentPendente,
	}
}

func TestEvaluatePaymentLadder(t *testing.T) {
	cases := []struct {
		name        string
		overdue     time.Duration
		wantTier    int
		wantAud     domain.Audience
		wantSuspend bool
	}{
		{"not yet due", -time.Hour, 0, "", false},
		{"within grace", 12 * time.Hour, 0, "", false},
		{"tier one reminds the client", 36 * time.Hour, 1, domain.AudienceClient, false},
		{"tier two copies staff", 4 * 24 * time.Hour, 2, domain.AudienceClientStaff, false},
		{"tier three recommends suspension", 10 * 24 * time.Hour, 3, domain.AudienceClientManager, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := testMonitor().EvaluatePayment(overduePayment(tc.overdue))
			if tc.wantTier == 0 {
				if len(alerts) != 0 {
					t.Fatalf("expected no alerts, got %+v", alerts)
				}
				return
			}
			if len(alerts) != 1 {
				t.Fatalf("got %d alerts, want 1", len(alerts))
			}
			a := alerts[0]
			if a.Tier != tc.wantTier || a.Audience != tc.wantAud || a.RecommendSuspension != tc.wantSuspend {
				t.Fatalf("alert = tier %d audience %s suspend %v, want %d %s %v",
					a.Tier, a.Audience, a.RecommendSuspension, tc.wantTier, tc.wantAud, tc.wantSuspend)
			}
		})
	}

	t.Run("settled installment is quiet", func(t *testing.T) {
		p := overduePayment(10 * 24 * time.Hour)
		p.Status = billing.PaymentConfirmado
		if alerts := testMonitor().EvaluatePayment(p); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})
}

func sentContract(age time.Duration) *billing.Contract {
	c, _ := billing.NewContract("ct-1", "opp-1", "case-1", decimal.RequireFromString("1500"), "EUR", 3, now)
	c.Status = billing.ContractEnviado
	sent := now.Add(-age)
	c.SentAt = &sent
	return c
}

func TestEvaluateContractLadder(t *testing.T) {
	cases := []struct {
		name       string
		age        time.Duration
		wantTier   int
		wantCancel bool
	}{
		{"send day", 2 * time.Hour, 1, false},
		{"day two", 2 * 24 * time.Hour, 2, false},
		{"day four", 4 * 24 * time.Hour, 3, false},
		{"day six", 6 * 24 * time.Hour, 4, false},
		{"past cancel threshold", 9 * 24 * time.Hour, 5, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := testMonitor().EvaluateContract(sentContract(tc.age))
			if len(alerts) != 1 {
				t.Fatalf("got %d alerts, want 1", len(alerts))
			}
			a := alerts[0]
			if a.Tier != tc.wantTier || a.RecommendCancellation != tc.wantCancel {
				t.Fatalf("alert = tier %d cancel %v, want %d %v", a.Tier, a.RecommendCancellation, tc.wantTier, tc.wantCancel)
			}
		})
	}

	t.Run("signed contract is quiet", func(t *testing.T) {
		c := sentContract(9 * 24 * time.Hour)
		c.Status = billing.ContractAssinado
		if alerts := testMonitor().EvaluateContract(c); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})
}

func openRequirement(t *testing.T, age time.Duration, officialIn time.Duration, buffer time.Duration) *casefile.Requirement {
	t.Helper()
	created := now.Add(-age)
	r, err := casefile.NewRequirement("req-1", "case-1", "x", now.Add(officialIn), buffer, created)
	if err != nil {
		t.Fatalf("new requirement: %v", err)
	}
	r.Model = gorm.Model{CreatedAt: created}
	return r
}

func TestEvaluateRequirement(t *testing.T) {
	buffer := 5 * 24 * time.Hour

	t.Run("quiet while young and far from deadline", func(t *testing.T) {
		r := openRequirement(t, 24*time.Hour, 20*24*time.Hour, buffer)
		if alerts := testMonitor().EvaluateRequirement(r); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})

	t.Run("unanswered past reply window", func(t *testing.T) {
		r := openRequirement(t, 6*24*time.Hour, 20*24*time.Hour, buffer)
		alerts := testMonitor().EvaluateRequirement(r)
		if len(alerts) != 1 || alerts[0].Kind != domain.AlertRequirementResponse {
			t.Fatalf("alerts = %+v", alerts)
		}
	})

	t.Run("internal deadline breached", func(t *testing.T) {
		r := openRequirement(t, 2*24*time.Hour, 3*24*time.Hour, buffer)
		alerts := testMonitor().EvaluateRequirement(r)
		if len(alerts) != 1 {
			t.Fatalf("got %d alerts, want 1", len(alerts))
		}
		if alerts[0].Kind != domain.AlertRequirementDeadline || alerts[0].Tier != 1 {
			t.Fatalf("alert = %+v", alerts[0])
		}
	})

	t.Run("official deadline breached escalates", func(t *testing.T) {
		r := openRequirement(t, 10*24*time.Hour, 20*24*time.Hour, buffer)
		r.OfficialDeadline = now.Add(-24 * time.Hour)
		r.InternalDeadline = r.OfficialDeadline.Add(-buffer)

		alerts := testMonitor().EvaluateRequirement(r)
		if len(alerts) != 2 {
			t.Fatalf("got %d alerts, want response and deadline", len(alerts))
		}
		deadline := alerts[1]
		if deadline.Kind != domain.AlertRequirementDeadline || deadline.Tier != 2 || deadline.Audience != domain.AudienceClientManager {
			t.Fatalf("alert = %+v", deadline)
		}
	})

	t.Run("closed requirement is quiet", func(t *testing.T) {
		r := openRequirement(t, 10*24*time.Hour, 2*24*time.Hour, buffer)
		r.Status = casefile.RequirementEncerrada
		if alerts := testMonitor().EvaluateRequirement(r); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %+v", alerts)
		}
	})
}
