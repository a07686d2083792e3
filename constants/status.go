package constants

// DocState is a document's position in the per-document processing state machine.
type DocState string

const (
	StateDiscovered        DocState = "DISCOVERED"
	StateTextExtracted     DocState = "TEXT_EXTRACTED"
	StateFallbackNeeded    DocState = "FALLBACK_NEEDED"
	StateFallbackExtracted DocState = "FALLBACK_EXTRACTED"
	StateFallbackFailed    DocState = "FALLBACK_FAILED"
	StateRequested         DocState = "REQUESTED"
	StateWritten           DocState = "WRITTEN"  // terminal
	StateSkipped           DocState = "SKIPPED"  // terminal
	StateFailed            DocState = "FAILED"   // terminal
)

// Terminal reports whether no further transition can happen from s.
func (s DocState) Terminal() bool {
	return s == StateWritten || s == StateSkipped || s == StateFailed
}

// Strategy names the method that produced a document's request content.
type Strategy string

const (
	StrategyNative         Strategy = "native"
	StrategyOCRComposite   Strategy = "ocr-composite"
	StrategyVisionFallback Strategy = "vision-fallback"
)

// RunMode governs the idempotency gate for a whole run.
type RunMode string

const (
	ModeDefault  RunMode = "default"
	ModeWriteAll RunMode = "write-all"
	ModeWriteNew RunMode = "write-new"
)

// ParseRunMode maps the two mutually exclusive CLI switches onto a single mode.
func ParseRunMode(writeAll, writeNew bool) (RunMode, bool) {
	switch {
	case writeAll && writeNew:
		return "", false
	case writeAll:
		return ModeWriteAll, true
	case writeNew:
		return ModeWriteNew, true
	default:
		return ModeDefault, true
	}
}
