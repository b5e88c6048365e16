package ink

// ChoicePoint is a runtime node that, when evaluated, may emit a Choice
// for the host (spec GLOSSARY).
type ChoicePoint struct {
	rtBase

	PathOnChoice Path

	HasCondition         bool
	HasStartContent      bool
	HasChoiceOnlyContent bool
	IsInvisibleDefault   bool
	OnceOnly             bool
}

func newChoicePoint() *ChoicePoint { return &ChoicePoint{rtBase: newRTBase(), OnceOnly: true} }

// Choice is the host-visible option produced by evaluating a ChoicePoint.
type Choice struct {
	Text          string
	Index         int
	TargetPath    Path
	SourcePath    Path
	ThreadAtGeneration int // id (not slice position) of the CallStack thread this choice was generated on
	Tags          []string
	OriginalChoicePathIndex int // arena index of the ChoicePoint that generated it
}
