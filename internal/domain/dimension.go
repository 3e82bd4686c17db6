package domain

// Dimension is one of the fixed quality axes a brief is scored on.
type Dimension string

const (
	DimensionCoherence     Dimension = "coherence"
	DimensionConsistency   Dimension = "consistency"
	DimensionEvidence      Dimension = "evidence"
	DimensionAccessibility Dimension = "accessibility"
	DimensionObjectivity   Dimension = "objectivity"
	DimensionAccuracy      Dimension = "accuracy"
	DimensionBias          Dimension = "bias"
)

// Score bounds for every dimension and for overall scores.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// AllDimensions returns the closed set of dimensions in canonical order.
// Panel aggregation and fixer dispatch iterate this order so that
// concurrent work never changes output ordering.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionCoherence,
		DimensionConsistency,
		DimensionEvidence,
		DimensionAccessibility,
		DimensionObjectivity,
		DimensionAccuracy,
		DimensionBias,
	}
}

// DimensionCount is the size of the closed dimension set.
const DimensionCount = 7

func ValidDimension(d string) bool {
	switch Dimension(d) {
	case DimensionCoherence, DimensionConsistency, DimensionEvidence,
		DimensionAccessibility, DimensionObjectivity, DimensionAccuracy, DimensionBias:
		return true
	}
	return false
}

// Description returns the rubric text evaluators and fixers are briefed with.
func (d Dimension) Description() string {
	switch d {
	case DimensionCoherence:
		return "logical flow and structure: sections connect and build on each other"
	case DimensionConsistency:
		return "internal consistency: no claims that contradict other parts of the brief"
	case DimensionEvidence:
		return "evidence quality: claims are supported by cited, verifiable material"
	case DimensionAccessibility:
		return "accessibility: readable by a non-expert without losing precision"
	case DimensionObjectivity:
		return "objectivity: balanced treatment of competing viewpoints"
	case DimensionAccuracy:
		return "factual accuracy: statements match the underlying sources"
	case DimensionBias:
		return "bias: free of loaded language and one-sided framing"
	default:
		return ""
	}
}
