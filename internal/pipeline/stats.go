package pipeline

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Candidates int // Rows extracted from the report.
	NotFound   int
	Duplicates int // Rows resolving to an already-processed file.
	Skipped    int
	Planned    int // Convert + repair actions computed.
	Converted  int
	Repaired   int
	Partial    int // Verified replacement exists but cleanup failed.
	Failed     int

	BytesReplaced int64 // Total size of originals removed or overwritten.
	BytesDelta    int64 // Output minus original size, summed over commits.
}

// Succeeded returns the number of fully committed actions.
func (s *RunStats) Succeeded() int {
	return s.Converted + s.Repaired
}
