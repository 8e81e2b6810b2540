// internal/eeprom/metrics.go
package eeprom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageWritesTotal counts metadata-tracked page writes by kind (message, clear).
	PageWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mstore_page_writes_total",
			Help: "Total number of tracked page writes by kind",
		},
		[]string{"kind"},
	)

	// PageSmashesTotal counts destructive page overwrites.
	PageSmashesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mstore_page_smashes_total",
			Help: "Total number of pages smashed",
		},
	)

	// ChunksWrittenTotal counts write bursts sent to the chip.
	ChunksWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mstore_chunks_written_total",
			Help: "Total number of write bursts sent to the chip",
		},
	)

	// BytesWrittenTotal counts data bytes sent to the chip, offsets excluded.
	BytesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mstore_bytes_written_total",
			Help: "Total number of data bytes written to the chip",
		},
	)

	// IntegrityFailuresTotal counts failed verifications in checked operations.
	IntegrityFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mstore_integrity_failures_total",
			Help: "Total number of failed read-back verifications by operation",
		},
		[]string{"op"},
	)

	// TransportErrorsTotal counts bus transfers that failed.
	TransportErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mstore_transport_errors_total",
			Help: "Total number of failed bus transfers",
		},
	)

	// WornPageWritesTotal counts writes landing on a page at or past rated endurance.
	WornPageWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mstore_worn_page_writes_total",
			Help: "Total number of writes to pages at or past rated endurance",
		},
	)
)
