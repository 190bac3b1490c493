package scanner

// Phase is the lifecycle state of one scan.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseProcessing  Phase = "processing"
	PhaseFinalizing  Phase = "finalizing"
	PhaseCommitted   Phase = "committed"
	PhaseRolledBack  Phase = "rolled_back"
)

// Progress is the observable side channel of a running scan. It carries no
// correctness weight; consumers may drop or coalesce events freely.
type Progress struct {
	ScanID      string
	Phase       Phase
	CurrentFile string
	FilesSeen   int
	FilesDone   int
	TracksAdded int
	TracksMoved int
}

// Emitter receives progress events. A nil emitter disables reporting.
type Emitter func(Progress)
