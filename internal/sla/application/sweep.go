package application

import (
	"context"
	"log/slog"
	"time"

	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/internal/sla/domain"
	"github.com/lexmigra/caseops/pkg/config"
	"github.com/lexmigra/caseops/pkg/metrics"
)

const sweepPageSize = 200

// TopicAlertRaised carries newly raised alerts to the notification pipeline.
const TopicAlertRaised = "caseops.sla.alert-raised"

// SweepJob periodically scans active cases, overdue installments, unsigned
// contracts and open requirements, raising whatever alerts the monitor finds.
// Dedup lives in the repository: the same breach is written once no matter
// how many cycles observe it.
type SweepJob struct {
	monitor   *Monitor
	cases     casefile.CaseRepository
	reqs      casefile.RequirementRepository
	payments  billing.PaymentRepository
	contracts billing.ContractRepository
	alerts    domain.AlertRepository
	publisher domain.AlertPublisher
	metrics   *metrics.Metrics
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweepJob wires the job.
func NewSweepJob(
	monitor *Monitor,
	cases casefile.CaseRepository,
	reqs casefile.RequirementRepository,
	payments billing.PaymentRepository,
	contracts billing.ContractRepository,
	alerts domain.AlertRepository,
	publisher domain.AlertPublisher,
	m *metrics.Metrics,
	interval time.Duration,
	logger *slog.Logger,
) *SweepJob {
	return &SweepJob{
		monitor:   monitor,
		cases:     cases,
		reqs:      reqs,
		payments:  payments,
		contracts: contracts,
		alerts:    alerts,
		publisher: publisher,
		metrics:   m,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled. One immediate
// pass runs on startup so a restart does not delay alerting by a full
// interval.
func (j *SweepJob) Start(ctx context.Context) {
	j.logger.InfoContext(ctx, "sla sweep started", "interval", j.interval)

	if err := j.Run(ctx); err != nil {
		j.logger.ErrorContext(ctx, "sla sweep failed", "error", err)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.InfoContext(ctx, "sla sweep stopped")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.ErrorContext(ctx, "sla sweep failed", "error", err)
			}
		}
	}
}

// Run executes one full sweep. Scan errors abort the pass; per-alert write
// failures are logged and skipped so one bad row cannot starve the rest.
func (j *SweepJob) Run(ctx context.Context) error {
	start := j.now()
	raised := 0

	n, err := j.sweepCases(ctx)
	if err != nil {
		return err
	}
	raised += n

	n, err = j.sweepPayments(ctx)
	if err != nil {
		return err
	}
	raised += n

	n, err = j.sweepContracts(ctx)
	if err != nil {
		return err
	}
	raised += n

	n, err = j.sweepRequirements(ctx)
	if err != nil {
		return err
	}
	raised += n

	if raised > 0 {
		j.logger.InfoContext(ctx, "sla sweep completed",
			"alerts_raised", raised,
			"elapsed", time.Since(start),
		)
	}
	return nil
}

func (j *SweepJob) sweepCases(ctx context.Context) (int, error) {
	raised := 0
	for offset := 0; ; offset += sweepPageSize {
		page, err := j.cases.ListActive(ctx, sweepPageSize, offset)
		if err != nil {
			return raised, err
		}
		for _, cf := range page {
			raised += j.raise(ctx, j.monitor.EvaluateCase(cf))
		}
		if len(page) < sweepPageSize {
			return raised, nil
		}
	}
}

func (j *SweepJob) sweepPayments(ctx context.Context) (int, error) {
	raised := 0
	cutoff := j.now()
	for offset := 0; ; offset += sweepPageSize {
		page, err := j.payments.ListOutstandingDueBefore(ctx, cutoff, sweepPageSize, offset)
		if err != nil {
			return raised, err
		}
		for _, p := range page {
			raised += j.raise(ctx, j.monitor.EvaluatePayment(p))
		}
		if len(page) < sweepPageSize {
			return raised, nil
		}
	}
}

func (j *SweepJob) sweepContracts(ctx context.Context) (int, error) {
	raised := 0
	for offset := 0; ; offset += sweepPageSize {
		page, err := j.contracts.ListAwaitingSignature(ctx, sweepPageSize, offset)
		if err != nil {
			return raised, err
		}
		for _, c := range page {
			raised += j.raise(ctx, j.monitor.EvaluateContract(c))
		}
		if len(page) < sweepPageSize {
			return raised, nil
		}
	}
}

func (j *SweepJob) sweepRequirements(ctx context.Context) (int, error) {
	raised := 0
	for offset := 0; ; offset += sweepPageSize {
		page, err := j.reqs.ListOpen(ctx, sweepPageSize, offset)
		if err != nil {
			return raised, err
		}
		for _, r := range page {
			raised += j.raise(ctx, j.monitor.EvaluateRequirement(r))
		}
		if len(page) < sweepPageSize {
			return raised, nil
		}
	}
}

func (j *SweepJob) raise(ctx context.Context, alerts []*domain.Alert) int {
	raised := 0
	for _, a := range alerts {
		created, err := j.alerts.CreateIfAbsent(ctx, a)
		if err != nil {
			j.logger.ErrorContext(ctx, "failed to persist alert",
				"entity_type", a.EntityType,
				"entity_id", a.EntityID,
				"kind", a.Kind,
				"tier", a.Tier,
				"error", err,
			)
			continue
		}
		if !created {
			continue
		}
		raised++

		if j.metrics != nil {
			j.metrics.AlertsRaised.WithLabelValues(string(a.Kind)).Inc()
		}
		if err := j.publisher.Publish(ctx, TopicAlertRaised, a.EntityID, a); err != nil {
			j.logger.ErrorContext(ctx, "failed to publish alert", "alert_id", a.AlertID, "error", err)
		}

		j.logger.WarnContext(ctx, "sla alert raised",
			"kind", a.Kind,
			"tier", a.Tier,
			"entity_type", a.EntityType,
			"entity_id", a.EntityID,
			"case_id", a.CaseID,
			"audience", a.Audience,
		)
	}
	return raised
}

// ThresholdsFromConfig converts the flat configuration block into monitor
// thresholds. The configured signature days anchor the escalation tiers
// beyond the on-send one.
func ThresholdsFromConfig(cfg config.SLAConfig) domain.Thresholds {
	day := 24 * time.Hour
	return domain.Thresholds{
		FirstContact:     time.Duration(cfg.FirstContactHours) * time.Hour,
		PaymentTier1:     time.Duration(cfg.PaymentTier1Hours) * time.Hour,
		PaymentTier2:     time.Duration(cfg.PaymentTier2Hours) * time.Hour,
		PaymentTier3:     time.Duration(cfg.PaymentTier3Days) * day,
		SignatureTier2:   time.Duration(cfg.SignatureTier1Days) * day,
		SignatureTier3:   time.Duration(cfg.SignatureTier2Days) * day,
		SignatureTier4:   time.Duration(cfg.SignatureTier3Days) * day,
		SignatureCancel:  time.Duration(cfg.SignatureCancelDays) * day,
		RequirementReply: time.Duration(cfg.RequirementReplyDays) * day,
	}
}
