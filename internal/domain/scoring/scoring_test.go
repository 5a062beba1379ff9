package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestComputeOverallScore(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   *float64
	}{
		{
			name: "all four components weighted",
			scores: Scores{
				TechnicalSkills:  ptr(90),
				PatientRelations: ptr(80),
				Teamwork:         ptr(85),
				Professionalism:  ptr(75),
			},
			// 90*0.40 + 80*0.25 + 85*0.20 + 75*0.15
			want: ptr(84.25),
		},
		{
			name: "mixed components",
			scores: Scores{
				TechnicalSkills:  ptr(80),
				PatientRelations: ptr(90),
				Teamwork:         ptr(70),
				Professionalism:  ptr(100),
			},
			// 80*0.40 + 90*0.25 + 70*0.20 + 100*0.15
			want: ptr(83.5),
		},
		{
			name: "uniform scores stay unchanged",
			scores: Scores{
				TechnicalSkills:  ptr(80),
				PatientRelations: ptr(80),
				Teamwork:         ptr(80),
				Professionalism:  ptr(80),
			},
			want: ptr(80),
		},
		{
			name: "subset renormalizes over present weights",
			scores: Scores{
				TechnicalSkills: ptr(80),
				Teamwork:        ptr(90),
			},
			// (80*0.40 + 90*0.20) / 0.60
			want: ptr(83.33),
		},
		{
			name: "single component returns that component",
			scores: Scores{
				Professionalism: ptr(67.5),
			},
			want: ptr(67.5),
		},
		{
			name:   "no components returns nil",
			scores: Scores{},
			want:   nil,
		},
		{
			name: "rounds to two decimal places",
			scores: Scores{
				TechnicalSkills:  ptr(77),
				PatientRelations: ptr(84),
			},
			// (77*0.40 + 84*0.25) / 0.65 = 79.6923...
			want: ptr(79.69),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverallScore(tt.scores)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(nil))
	assert.True(t, InRange(ptr(0)))
	assert.True(t, InRange(ptr(100)))
	assert.False(t, InRange(ptr(-0.5)))
	assert.False(t, InRange(ptr(100.5)))
}
