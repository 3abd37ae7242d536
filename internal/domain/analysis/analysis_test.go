package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		input   string
		want    Likelihood
		wantErr bool
	}{
		{input: "High", want: LikelihoodHigh},
		{input: "Medium", want: LikelihoodMedium},
		{input: "Low", want: LikelihoodLow},
		{input: "high", wantErr: true},
		{input: "HIGH", wantErr: true},
		{input: "Critical", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLikelihood(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidLikelihoodLabel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLikelihoodRank(t *testing.T) {
	assert.Equal(t, 3, LikelihoodHigh.Rank())
	assert.Equal(t, 2, LikelihoodMedium.Rank())
	assert.Equal(t, 1, LikelihoodLow.Rank())
}

func TestRankAnalysesOrdersByLikelihood(t *testing.T) {
	in := []ProductAnalysis{
		{ProductName: "a", InfringementLikelihood: LikelihoodMedium},
		{ProductName: "b", InfringementLikelihood: LikelihoodHigh},
	}
	out := RankAnalyses(in)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ProductName)
	assert.Equal(t, "a", out[1].ProductName)

	// Input untouched.
	assert.Equal(t, "a", in[0].ProductName)
}

func TestRankAnalysesTruncatesToTwo(t *testing.T) {
	in := []ProductAnalysis{
		{ProductName: "low", InfringementLikelihood: LikelihoodLow},
		{ProductName: "high", InfringementLikelihood: LikelihoodHigh},
		{ProductName: "medium", InfringementLikelihood: LikelihoodMedium},
		{ProductName: "low2", InfringementLikelihood: LikelihoodLow},
	}
	out := RankAnalyses(in)
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].ProductName)
	assert.Equal(t, "medium", out[1].ProductName)
}

func TestRankAnalysesStableAmongEquals(t *testing.T) {
	in := []ProductAnalysis{
		{ProductName: "first", InfringementLikelihood: LikelihoodHigh},
		{ProductName: "second", InfringementLikelihood: LikelihoodHigh},
		{ProductName: "third", InfringementLikelihood: LikelihoodHigh},
	}
	out := RankAnalyses(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].ProductName)
	assert.Equal(t, "second", out[1].ProductName)
}

func TestRankAnalysesIdempotent(t *testing.T) {
	in := []ProductAnalysis{
		{ProductName: "a", InfringementLikelihood: LikelihoodLow},
		{ProductName: "b", InfringementLikelihood: LikelihoodHigh},
		{ProductName: "c", InfringementLikelihood: LikelihoodMedium},
	}
	once := RankAnalyses(in)
	twice := RankAnalyses(once)
	assert.Equal(t, once, twice)
}

func TestRankAnalysesEmpty(t *testing.T) {
	assert.Empty(t, RankAnalyses(nil))
}
