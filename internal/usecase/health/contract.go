package health

import "context"

// IndexPinger checks search index availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// DatabasePinger checks relational database availability.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}
