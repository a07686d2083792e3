package ingest

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned     uint32
	Matched     uint32
	Unsupported uint32
	Composites  uint32 // cached fallback images left out of the batch
}

// DecodeStats summarizes a dataset decode.
type DecodeStats struct {
	Records     uint32
	Written     uint32
	Overwritten uint32
	Skipped     uint32
	Failed      uint32
}
