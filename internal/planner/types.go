package planner

// Action describes the per-file processing decision.
type Action int

const (
	ActionSkip    Action = iota
	ActionConvert        // Lossy container (.m4a/.mp4) → .flac sibling.
	ActionRepair         // Corrupt .flac → re-encode via temp, rename over original.
)

// String returns the action label used in logs and the CSV log.
func (a Action) String() string {
	switch a {
	case ActionConvert:
		return "convert"
	case ActionRepair:
		return "repair"
	default:
		return "skip"
	}
}

// FilePlan holds the complete set of decisions for processing a single
// resolved file. It is produced by BuildPlan and consumed by the pipeline.
type FilePlan struct {
	Action Action

	Source string // Absolute path of the original file.
	Dest   string // Final destination (repair: == Source).
	Work   string // ffmpeg output path (convert: == Dest; repair: hidden temp).

	Note       string // Short human note ("m4a → flac", "re-encode flac").
	SkipReason string // Set when Action == ActionSkip.
}
