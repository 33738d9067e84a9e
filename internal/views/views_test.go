package views

import (
	"math"
	"testing"
	"time"

	"github.com/rahul4469/propmate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹ 0"},
		{999, "₹ 999"},
		{8364.40, "₹ 8,364"},
		{8364.6, "₹ 8,365"},
		{1_000_000, "₹ 1,000,000"},
		{2_007_456.17, "₹ 2,007,456"},
		{math.NaN(), "₹ 0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRupees(tt.in), "FormatRupees(%v)", tt.in)
	}
	assert.Equal(t, "₹ 7,500,000", FormatRupeesInt(7_500_000))
}

func TestFormatPercentAndMillis(t *testing.T) {
	assert.Equal(t, "8.00%", FormatPercent(8))
	assert.Equal(t, "12.75%", FormatPercent(12.75))
	assert.Equal(t, "1500 ms", FormatMillis(1500*time.Millisecond))
	assert.Equal(t, int64(0), Milliseconds(-time.Second))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", timeAgo(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", timeAgo(now.Add(-90*time.Second), now))
	assert.Equal(t, "5 minutes ago", timeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2 hours ago", timeAgo(now.Add(-2*time.Hour), now))
	assert.Equal(t, "yesterday", timeAgo(now.Add(-30*time.Hour), now))
	assert.Equal(t, "Feb 1, 2025", timeAgo(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestNewLoanView_Defaults(t *testing.T) {
	v := NewLoanView(models.DefaultLoanParameters(), nil, false)

	assert.Equal(t, int64(1_000_000), v.Principal)
	assert.Equal(t, 240, v.TenureMonths)
	assert.Equal(t, "8.00%", v.Rate)
	assert.Equal(t, "₹ 8,364", v.EMI)
	assert.Equal(t, "₹ 2,007,456", v.TotalPayment)
	assert.Equal(t, "₹ 1,007,456", v.TotalInterest)
	assert.NotNil(t, v.Offers)
	assert.Empty(t, v.Offers)
}

func TestNewPropertyView(t *testing.T) {
	now := time.Now()
	long := ""
	for range 100 {
		long += "abcde "
	}
	a := models.PropertyAnalysis{
		Location:        "Pune",
		Area:            1000,
		Bedrooms:        3,
		InvestmentScore: 80,
		EstimatedValue:  "₹ 8,000,000",
		SearchResults:   []models.SearchResult{{Title: "Listing", Content: long, URL: "https://x"}},
		CreatedAt:       now,
	}

	v := NewPropertyView(a, now)
	assert.Equal(t, "high", v.ScoreBand)
	assert.Equal(t, "just now", v.CreatedAgo)
	require.Len(t, v.SearchResults, 1)
	assert.Len(t, []rune(v.SearchResults[0].Snippet), snippetChars)
	assert.Equal(t, "https://x", v.SearchResults[0].URL)

	list := NewPropertiesView([]models.PropertyAnalysis{a, a}, 2, true, now)
	assert.Len(t, list.Analyses, 2)
	assert.True(t, list.Analyzing)
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, "low", scoreBand(0))
	assert.Equal(t, "medium", scoreBand(40))
	assert.Equal(t, "high", scoreBand(100))
}

func TestNewChatViewCopiesQuickQuestions(t *testing.T) {
	v := NewChatView(nil, false)
	require.Len(t, v.QuickQuestions, 3)
	v.QuickQuestions[0] = "mutated"
	assert.NotEqual(t, "mutated", models.QuickQuestions[0])
	assert.NotNil(t, v.Messages)
}

func TestNewStatusView(t *testing.T) {
	v := NewStatusView(Timings{
		Analysis:  1250 * time.Microsecond,
		WebFetch:  800 * time.Millisecond,
		LoanFetch: 2 * time.Second,
		Chat:      0,
	}, 4)

	assert.Equal(t, StatusView{AnalysisMS: 1, WebFetchMS: 800, LoanFetchMS: 2000, ChatMS: 0, AnalysisCount: 4}, v)
}
