package sync

import (
	gosync "sync"

	"github.com/shopspring/decimal"
)

// EventType tags a progress event.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// ItemStatus is the per-identifier outcome carried by a progress event.
type ItemStatus string

const (
	StatusSynced   ItemStatus = "synced"
	StatusNotFound ItemStatus = "not_found"
	StatusSkipped  ItemStatus = "skipped"
	StatusError    ItemStatus = "error"
)

// RunSummary is the final accounting of a completed run.
type RunSummary struct {
	Synced           int             `json:"synced"`
	NotFound         int             `json:"not_found"`
	Errors           int             `json:"errors"`
	Total            int             `json:"total"`
	NotFoundBarcodes []string        `json:"not_found_barcodes"`
	FailedSources    []SourceFailure `json:"failed_sources,omitempty"`
}

// Event is one entry in the strictly ordered progress stream of a run:
// exactly one start, then one progress event per identifier in input order,
// then exactly one terminal complete or error event.
type Event struct {
	Type        EventType        `json:"type"`
	Total       int              `json:"total,omitempty"`
	Current     int              `json:"current,omitempty"`
	Barcode     string           `json:"barcode,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	Status      ItemStatus       `json:"status,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Message     string           `json:"message,omitempty"`
	Summary     *RunSummary      `json:"summary,omitempty"`
}

// StartEvent announces a run over total identifiers.
func StartEvent(total int) Event {
	return Event{Type: EventStart, Total: total}
}

// ProgressEvent reports one finalized identifier.
func ProgressEvent(current, total int, barcode, name string, status ItemStatus) Event {
	return Event{
		Type:        EventProgress,
		Current:     current,
		Total:       total,
		Barcode:     barcode,
		ProductName: name,
		Status:      status,
	}
}

// CompleteEvent terminates a successful run.
func CompleteEvent(summary RunSummary) Event {
	return Event{Type: EventComplete, Summary: &summary}
}

// ErrorEvent terminates a failed run.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// IsTerminal reports whether the event ends the stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// DefaultProgressBuffer sizes the reporter channel. The producer blocks when
// the buffer fills, trading throughput for ordering rather than dropping
// events.
const DefaultProgressBuffer = 64

// Reporter is a single-producer ordered event sink. The orchestrator emits;
// one consumer ranges over Events until the channel closes. Delivery is
// best-effort with respect to the consumer: a consumer that stops reading
// only slows the run, it never corrupts the stream.
type Reporter struct {
	ch        chan Event
	closeOnce gosync.Once
}

// NewReporter creates a reporter with the given buffer size.
func NewReporter(buffer int) *Reporter {
	if buffer < 1 {
		buffer = DefaultProgressBuffer
	}
	return &Reporter{ch: make(chan Event, buffer)}
}

// Emit appends an event to the stream, blocking while the buffer is full.
func (r *Reporter) Emit(e Event) {
	r.ch <- e
}

// Events returns the consumer side of the stream.
func (r *Reporter) Events() <-chan Event {
	return r.ch
}

// Close ends the stream. Emit must not be called after Close.
func (r *Reporter) Close() {
	r.closeOnce.Do(func() { close(r.ch) })
}
