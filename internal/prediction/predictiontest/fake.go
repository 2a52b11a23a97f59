// Package predictiontest provides a scripted Predictor for tests.
package predictiontest

import (
	"context"
	"sync"

	"github.com/similigh/mailbox-monitor/internal/prediction"
)

// Fake returns Result (or Err) from every Predict call and records requests.
type Fake struct {
	mu sync.Mutex

	Result    *prediction.Prediction
	Err       error
	HealthErr error

	Requests []prediction.Request
}

func (f *Fake) Predict(_ context.Context, req prediction.Request) (*prediction.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

func (f *Fake) Health(context.Context) error {
	return f.HealthErr
}

// Calls returns the number of Predict calls made so far.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
