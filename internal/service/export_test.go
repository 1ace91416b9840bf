package service

import (
	"context"
	"time"
)

func (w *OutboxWorker) ProcessEvents(ctx context.Context) int {
	return w.processEvents(ctx)
}

func (s *PurchaseService) SetClock(now func() time.Time) {
	s.now = now
}
