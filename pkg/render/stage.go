package render

// Stage identifies a phase of one render call. Every call moves forward
// through the stages in order; a failure at any point jumps to StageFailed
// and the call returns no partial output.
type Stage int

const (
	StageIdle Stage = iota
	StageNormalizing
	StageResolvingAlgorithm
	StageLayingOut
	StageEmittingPrimitives
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:               "idle",
	StageNormalizing:        "normalizing",
	StageResolvingAlgorithm: "resolving_algorithm",
	StageLayingOut:          "laying_out",
	StageEmittingPrimitives: "emitting_primitives",
	StageDone:               "done",
	StageFailed:             "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the stage ends a render call.
func (s Stage) Terminal() bool { return s == StageDone || s == StageFailed }
