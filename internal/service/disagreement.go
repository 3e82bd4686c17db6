package service

import "github.com/clarionhq/clarion/internal/domain"

// DefaultDisagreementTolerance is the maximum pairwise score spread on a
// single dimension before the panel is considered in disagreement.
const DefaultDisagreementTolerance = 2.0

// DetectDisagreement compares every pair of panel verdicts on each
// dimension. A dimension is disputed when its widest pairwise spread
// strictly exceeds tolerance. A tolerance <= 0 falls back to the default.
func DetectDisagreement(verdicts []domain.EvaluatorVerdict, tolerance float64) domain.DisagreementResult {
	if tolerance <= 0 {
		tolerance = DefaultDisagreementTolerance
	}

	result := domain.DisagreementResult{
		Positions: make(map[domain.Dimension]map[domain.EvaluatorRole]float64),
	}

	for _, dim := range domain.AllDimensions() {
		positions := make(map[domain.EvaluatorRole]float64, len(verdicts))
		min, max := domain.MaxScore, domain.MinScore
		for _, v := range verdicts {
			score, ok := v.ScoreFor(dim)
			if !ok {
				continue
			}
			positions[v.Role] = score
			if score < min {
				min = score
			}
			if score > max {
				max = score
			}
		}
		result.Positions[dim] = positions

		if len(positions) < 2 {
			continue
		}
		spread := max - min
		if spread > result.MaxSpread {
			result.MaxSpread = spread
		}
		if spread > tolerance {
			result.HasDisagreement = true
			result.Dimensions = append(result.Dimensions, dim)
		}
	}

	return result
}
