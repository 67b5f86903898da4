package storage

import (
	"context"
	"errors"
	"time"
)

// Observer receives one callback per gateway operation.
type Observer interface {
	ObserveStorageOp(op, key string, d time.Duration, err error)
}

type instrumented struct {
	next Gateway
	obs  Observer
}

// Instrument wraps gw so that every operation is reported to obs. A nil
// observer returns gw unchanged.
func Instrument(gw Gateway, obs Observer) Gateway {
	if obs == nil {
		return gw
	}
	return &instrumented{next: gw, obs: obs}
}

func (g *instrumented) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := g.next.Load(ctx, key)
	// A missing key is an expected answer, not a failure.
	reportErr := err
	if errors.Is(err, ErrKeyNotFound) {
		reportErr = nil
	}
	g.obs.ObserveStorageOp("load", key, time.Since(start), reportErr)
	return data, err
}

func (g *instrumented) Save(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := g.next.Save(ctx, key, value)
	g.obs.ObserveStorageOp("save", key, time.Since(start), err)
	return err
}

func (g *instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := g.next.Remove(ctx, key)
	g.obs.ObserveStorageOp("remove", key, time.Since(start), err)
	return err
}
