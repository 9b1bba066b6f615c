package worker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"kirim/internal/repositories"
	"kirim/internal/services"
	"kirim/pkg/rabbitmq"
)

// DefaultInterval is the sweep interval used when none is configured.
const DefaultInterval = time.Minute

// DispatchWorker periodically sweeps for Confirmed orders that have no
// courier consignment yet and dispatches them. An order whose dispatch fails
// is left untouched and picked up again on the next tick, which makes
// courier hand-off at-least-once and eventually consistent. The
// consignment-id-absent query is what keeps repeated ticks idempotent.
type DispatchWorker struct {
	orderRepo repositories.OrderRepository
	courier   services.CourierClient
	mqClient  *rabbitmq.Client
	interval  time.Duration
	running   atomic.Bool
}

// NewDispatchWorker creates a new DispatchWorker.
func NewDispatchWorker(
	orderRepo repositories.OrderRepository,
	courier services.CourierClient,
	mqClient *rabbitmq.Client,
	interval time.Duration,
) *DispatchWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &DispatchWorker{
		orderRepo: orderRepo,
		courier:   courier,
		mqClient:  mqClient,
		interval:  interval,
	}
}

// Run loops until the context is cancelled, sweeping once per interval.
// Only one loop per worker may run at a time; a second call returns
// immediately. Duplicate submissions across processes are prevented only by
// the consignment-id check against the shared database, so the worker must
// not be deployed more than once per data store.
func (w *DispatchWorker) Run(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		log.Println("Dispatch worker already running, refusing second loop")
		return
	}
	defer w.running.Store(false)

	log.Printf("Dispatch worker started (interval %s)", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dispatch worker stopped")
			return
		case <-ticker.C:
			w.Tick()
		}
	}
}

// Tick runs one sweep: find every Confirmed order without a consignment,
// dispatch each independently and persist the successes as one batch. One
// order's failure never blocks the others.
func (w *DispatchWorker) Tick() {
	orders, err := w.orderRepo.FindAwaitingDispatch()
	if err != nil {
		log.Printf("Dispatch worker: failed to query orders awaiting dispatch: %v", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	var assignments []repositories.CourierAssignment
	for i := range orders {
		order := &orders[i]
		consignmentID, trackingCode := w.courier.CreateConsignment(order)
		if consignmentID == "" {
			// Soft failure; the order stays in the sweep for the next tick.
			continue
		}
		assignments = append(assignments, repositories.CourierAssignment{
			OrderID:       order.ID,
			ConsignmentID: consignmentID,
			TrackingCode:  trackingCode,
			CourierStatus: services.CourierStatusSent,
		})
	}

	if err := w.orderRepo.SaveCourierAssignments(assignments); err != nil {
		// The consignments exist provider-side but the linkage write
		// failed; the next tick re-dispatches. The provider treats the
		// invoice number as its idempotency handle.
		log.Printf("Dispatch worker: failed to persist courier assignments: %v", err)
		return
	}

	for _, a := range assignments {
		w.publishDispatched(a)
	}

	log.Printf("Dispatch worker tick: %d orders swept, %d dispatched, %d deferred",
		len(orders), len(assignments), len(orders)-len(assignments))
}

// publishDispatched announces a successful courier hand-off, best-effort.
func (w *DispatchWorker) publishDispatched(a repositories.CourierAssignment) {
	if w.mqClient == nil {
		return
	}
	err := w.mqClient.PublishOrderEvent("order.dispatched", map[string]interface{}{
		"orderID":       a.OrderID,
		"consignmentID": a.ConsignmentID,
		"trackingCode":  a.TrackingCode,
	})
	if err != nil {
		log.Printf("Warning: failed to publish order.dispatched event: %v", err)
	}
}
