package domain

import "context"

// AlertRepository persists raised alerts.
type AlertRepository interface {
	// CreateIfAbsent inserts the alert unless the same entity/kind/tier
	// breach was already raised; it reports whether a row was written.
	CreateIfAbsent(ctx context.Context, alert *Alert) (bool, error)
	ListByCase(ctx context.Context, caseID string) ([]*Alert, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*Alert, error)
}

// AlertPublisher hands raised alerts to the external delivery mechanism.
type AlertPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
