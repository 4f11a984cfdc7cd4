package server

import "context"

// mongoPingable is the subset of the promo store used for readiness probes.
type mongoPingable interface {
	Ping(ctx context.Context) error
}

// MongoPinger probes MongoDB connectivity for the readiness endpoint.
type MongoPinger struct {
	store mongoPingable
}

// NewMongoPinger wraps a connected promo store as a readiness probe.
func NewMongoPinger(store mongoPingable) *MongoPinger {
	return &MongoPinger{store: store}
}

func (p *MongoPinger) Ping(ctx context.Context) error { return p.store.Ping(ctx) }

func (p *MongoPinger) Name() string { return "mongodb" }
