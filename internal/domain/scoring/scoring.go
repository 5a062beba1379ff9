package scoring

import "math"

// Component weights for the overall evaluation score.
const (
	WeightTechnicalSkills  = 0.40
	WeightPatientRelations = 0.25
	WeightTeamwork         = 0.20
	WeightProfessionalism  = 0.15
)

// Scores holds the four component scores of an evaluation. A nil field means
// the component was not assessed.
type Scores struct {
	TechnicalSkills  *float64
	PatientRelations *float64
	Teamwork         *float64
	Professionalism  *float64
}

// ComputeOverallScore returns the weighted average of the supplied component
// scores, renormalized over the weights of the components actually present,
// rounded to 2 decimal places. Returns nil when no component is supplied.
func ComputeOverallScore(s Scores) *float64 {
	components := []struct {
		score  *float64
		weight float64
	}{
		{s.TechnicalSkills, WeightTechnicalSkills},
		{s.PatientRelations, WeightPatientRelations},
		{s.Teamwork, WeightTeamwork},
		{s.Professionalism, WeightProfessionalism},
	}

	var sum, totalWeight float64
	for _, c := range components {
		if c.score == nil {
			continue
		}
		sum += *c.score * c.weight
		totalWeight += c.weight
	}

	if totalWeight == 0 {
		return nil
	}

	overall := math.Round(sum/totalWeight*100) / 100
	return &overall
}

// InRange reports whether a component score lies in the accepted [0,100] band.
func InRange(score *float64) bool {
	if score == nil {
		return true
	}
	return *score >= 0 && *score <= 100
}
