package views

import (
	"time"

	"github.com/rahul4469/propmate/internal/models"
)

// snippetChars bounds search snippets shown under an analysis card.
const snippetChars = 280

// SearchResultView is a listing link shown under an analysis.
type SearchResultView struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// PropertyView is one analysis card.
type PropertyView struct {
	Location        string             `json:"location"`
	Area            int                `json:"area"`
	Bedrooms        int                `json:"bedrooms"`
	Bathrooms       int                `json:"bathrooms"`
	Floor           int                `json:"floor"`
	InvestmentScore int                `json:"investment_score"`
	ScoreBand       string             `json:"score_band"`
	EstimatedValue  string             `json:"estimated_value"`
	AreaGrowth      string             `json:"area_growth"`
	AIInsights      string             `json:"ai_insights"`
	MarketInsights  string             `json:"market_insights"`
	SearchResults   []SearchResultView `json:"search_results"`
	CreatedAt       time.Time          `json:"created_at"`
	CreatedAgo      string             `json:"created_ago"`
}

// PropertiesView is the analysis history, newest first.
type PropertiesView struct {
	Analyses  []PropertyView `json:"analyses"`
	Count     int            `json:"count"`
	Analyzing bool           `json:"analyzing"`
}

// LoanView is the calculator panel plus fetched bank offers.
type LoanView struct {
	Principal         int64              `json:"principal"`
	TenureYears       int                `json:"tenure_years"`
	TenureMonths      int                `json:"tenure_months"`
	AnnualRatePercent float64            `json:"annual_rate_percent"`
	Rate              string             `json:"rate"`
	EMI               string             `json:"emi"`
	TotalPayment      string             `json:"total_payment"`
	TotalInterest     string             `json:"total_interest"`
	Offers            []models.LoanOffer `json:"offers"`
	Fetching          bool               `json:"fetching"`
}

// ChatView is the conversation pane.
type ChatView struct {
	Messages       []models.ChatMessage `json:"messages"`
	QuickQuestions []string             `json:"quick_questions"`
	Processing     bool                 `json:"processing"`
}

// StatusView is the status bar: last durations in milliseconds.
type StatusView struct {
	AnalysisMS    int64 `json:"analysis_ms"`
	WebFetchMS    int64 `json:"web_fetch_ms"`
	LoanFetchMS   int64 `json:"loan_fetch_ms"`
	ChatMS        int64 `json:"chat_ms"`
	AnalysisCount int   `json:"analysis_count"`
}

// SessionView identifies the caller's session.
type SessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Timings are the last recorded durations of a session's controllers.
type Timings struct {
	Analysis  time.Duration
	WebFetch  time.Duration
	LoanFetch time.Duration
	Chat      time.Duration
}

func NewPropertyView(a models.PropertyAnalysis, now time.Time) PropertyView {
	results := make([]SearchResultView, 0, len(a.SearchResults))
	for _, r := range a.SearchResults {
		results = append(results, SearchResultView{
			Title:   r.Title,
			Snippet: truncate(r.Content, snippetChars),
			URL:     r.URL,
		})
	}

	return PropertyView{
		Location:        a.Location,
		Area:            a.Area,
		Bedrooms:        a.Bedrooms,
		Bathrooms:       a.Bathrooms,
		Floor:           a.Floor,
		InvestmentScore: a.InvestmentScore,
		ScoreBand:       scoreBand(a.InvestmentScore),
		EstimatedValue:  a.EstimatedValue,
		AreaGrowth:      a.AreaGrowth,
		AIInsights:      a.AIInsights,
		MarketInsights:  a.MarketInsights,
		SearchResults:   results,
		CreatedAt:       a.CreatedAt,
		CreatedAgo:      timeAgo(a.CreatedAt, now),
	}
}

func NewPropertiesView(history []models.PropertyAnalysis, count int, analyzing bool, now time.Time) PropertiesView {
	analyses := make([]PropertyView, 0, len(history))
	for _, a := range history {
		analyses = append(analyses, NewPropertyView(a, now))
	}
	return PropertiesView{Analyses: analyses, Count: count, Analyzing: analyzing}
}

// NewLoanView derives every display figure from params on each call.
func NewLoanView(params models.LoanParameters, offers []models.LoanOffer, fetching bool) LoanView {
	if offers == nil {
		offers = []models.LoanOffer{}
	}
	return LoanView{
		Principal:         params.Principal,
		TenureYears:       params.TenureYears,
		TenureMonths:      params.TenureMonths(),
		AnnualRatePercent: params.AnnualRatePercent,
		Rate:              FormatPercent(params.AnnualRatePercent),
		EMI:               FormatRupees(params.EMI()),
		TotalPayment:      FormatRupees(params.TotalPayment()),
		TotalInterest:     FormatRupees(params.TotalInterest()),
		Offers:            offers,
		Fetching:          fetching,
	}
}

func NewChatView(messages []models.ChatMessage, processing bool) ChatView {
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	quick := make([]string, len(models.QuickQuestions))
	copy(quick, models.QuickQuestions)
	return ChatView{Messages: messages, QuickQuestions: quick, Processing: processing}
}

func NewStatusView(t Timings, analysisCount int) StatusView {
	return StatusView{
		AnalysisMS:    Milliseconds(t.Analysis),
		WebFetchMS:    Milliseconds(t.WebFetch),
		LoanFetchMS:   Milliseconds(t.LoanFetch),
		ChatMS:        Milliseconds(t.Chat),
		AnalysisCount: analysisCount,
	}
}
