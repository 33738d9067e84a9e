package models

import (
	"fmt"
	"math"
	"time"
)

// Valuation constants, in rupees per square foot.
const (
	BaseRatePerSqft     = 7500
	ExtraBedroomRate    = 500
	ExtraBathroomRate   = 400
	ExtraFloorRate      = 100
	InvestmentScoreUnit = 100_000
	MaxInvestmentScore  = 100
)

// Upper bounds accepted from the analysis form.
const (
	MaxArea  = 1_000_000
	MaxRooms = 50
	MaxFloor = 200
)

// Fixed narrative attached to every analysis.
const (
	DefaultAreaGrowth = "Up 4.2% YoY"

	DefaultAIInsights = "Based on the inputs, this property has a reasonable valuation. " +
		"Consider verifying locality amenities, recent sales, and builder reputation."

	DefaultMarketInsights = "Recent market trends indicate stable prices with moderate demand. " +
		"Negotiation margin could be around 3–7% depending on competition."
)

// PropertyInput is what the user types into the analysis form.
type PropertyInput struct {
	Location  string `json:"location"`
	Area      int    `json:"area"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Floor     int    `json:"floor"`
}

// PropertyAnalysis is an immutable snapshot produced by one analysis run.
type PropertyAnalysis struct {
	Location        string         `json:"location"`
	Area            int            `json:"area"`
	Bedrooms        int            `json:"bedrooms"`
	Bathrooms       int            `json:"bathrooms"`
	Floor           int            `json:"floor"`
	InvestmentScore int            `json:"investment_score"`
	EstimatedValue  string         `json:"estimated_value"`
	AreaGrowth      string         `json:"area_growth"`
	AIInsights      string         `json:"ai_insights"`
	MarketInsights  string         `json:"market_insights"`
	SearchResults   []SearchResult `json:"search_results"`
	CreatedAt       time.Time      `json:"created_at"`
}

// RatePerSqft applies the linear adjustments for rooms and floor to the base rate.
// Arithmetic saturates at math.MaxInt64.
func (in PropertyInput) RatePerSqft() int64 {
	rate := int64(BaseRatePerSqft)
	rate = addSat(rate, mulSat(int64(max(in.Bedrooms, 2)-2), ExtraBedroomRate))
	rate = addSat(rate, mulSat(int64(max(in.Bathrooms, 2)-2), ExtraBathroomRate))
	rate = addSat(rate, mulSat(int64(max(in.Floor, 1)-1), ExtraFloorRate))
	return rate
}

// EstimatedValue is the deterministic rupee valuation. Negative areas count as zero.
func (in PropertyInput) EstimatedValue() int64 {
	return mulSat(int64(max(in.Area, 0)), in.RatePerSqft())
}

// Validate reports the first form field above its accepted maximum. Values
// below the valuation thresholds are allowed and count as the threshold.
func (in PropertyInput) Validate() error {
	switch {
	case in.Area > MaxArea:
		return fmt.Errorf("area must be at most %d square feet", MaxArea)
	case in.Bedrooms > MaxRooms:
		return fmt.Errorf("bedrooms must be at most %d", MaxRooms)
	case in.Bathrooms > MaxRooms:
		return fmt.Errorf("bathrooms must be at most %d", MaxRooms)
	case in.Floor > MaxFloor:
		return fmt.Errorf("floor must be at most %d", MaxFloor)
	}
	return nil
}

// mulSat and addSat expect non-negative operands.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// InvestmentScore scales a valuation into [0, MaxInvestmentScore].
func InvestmentScore(value int64) int {
	score := value / InvestmentScoreUnit
	return int(min(max(score, 0), MaxInvestmentScore))
}
