package ports

// TelemetrySink receives the latest fused sample document for external
// visualizers and recorders. Delivery is best-effort: implementations drop
// the document when the sink is unavailable, and must never block the core.
type TelemetrySink interface {
	Publish(subject string, doc map[string]float64)

	Close()
}
