/*
Copyright 2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pause between cases when none is configured.
const DefaultInterval = time.Second

// Pacer decides when the next case may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFunc adapts a function to a Pacer.
type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

type intervalPacer struct {
	interval time.Duration
}

// Interval pauses for d after every case.
func Interval(d time.Duration) Pacer {
	return &intervalPacer{
		interval: d,
	}
}

func (p *intervalPacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type limitPacer struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// Limit starts at most r cases per second, allowing bursts of burst cases.
// Unlike Interval, time spent inside a case counts towards the pause.
func Limit(r rate.Limit, burst int) Pacer {
	p := &limitPacer{
		rate:  r,
		burst: burst,
	}

	p.reset()

	return p
}

// reset refills the bucket and takes the token of the case about to start,
// which never waits on the pacer.
func (p *limitPacer) reset() {
	p.limiter = rate.NewLimiter(p.rate, p.burst)
	p.limiter.AllowN(time.Now(), 1)
}

func (p *limitPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// resetter is implemented by pacers that track when the run started.
type resetter interface {
	reset()
}

// NoPacing lets the next case start immediately.
func NoPacing() Pacer {
	return Interval(0)
}
