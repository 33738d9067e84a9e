package models

import "math"

// LoanOffer is a bank offer as extracted from search snippets.
// All fields are display strings; missing values are empty, never absent.
type LoanOffer struct {
	BankName      string `json:"bank_name"`
	InterestRate  string `json:"interest_rate"`
	ProcessingFee string `json:"processing_fee"`
}

// Loan parameter bounds and defaults (rupees, years, percent per annum).
const (
	MinPrincipal = 100_000
	MaxPrincipal = 20_000_000

	MinTenureYears = 1
	MaxTenureYears = 30

	MinAnnualRate = 5.0
	MaxAnnualRate = 15.0

	DefaultPrincipal   = 1_000_000
	DefaultTenureYears = 20
	DefaultAnnualRate  = 8.0
)

// LoanParameters holds the calculator inputs. Derived values are never stored.
type LoanParameters struct {
	Principal         int64   `json:"principal"`
	TenureYears       int     `json:"tenure_years"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
}

// DefaultLoanParameters returns the calculator's starting position.
func DefaultLoanParameters() LoanParameters {
	return LoanParameters{
		Principal:         DefaultPrincipal,
		TenureYears:       DefaultTenureYears,
		AnnualRatePercent: DefaultAnnualRate,
	}
}

// ClampPrincipal bounds a requested principal to [MinPrincipal, MaxPrincipal].
// NaN is treated as zero.
func ClampPrincipal(v float64) int64 {
	return int64(clamp(v, MinPrincipal, MaxPrincipal))
}

// ClampTenureYears bounds a requested tenure to [MinTenureYears, MaxTenureYears].
func ClampTenureYears(v float64) int {
	return int(clamp(v, MinTenureYears, MaxTenureYears))
}

// ClampAnnualRate bounds a requested rate to [MinAnnualRate, MaxAnnualRate].
func ClampAnnualRate(v float64) float64 {
	return clamp(v, MinAnnualRate, MaxAnnualRate)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Max(lo, math.Min(v, hi))
}

// MonthlyRate is the annual percentage converted to a monthly fraction.
func (p LoanParameters) MonthlyRate() float64 {
	return p.AnnualRatePercent / 12 / 100
}

// TenureMonths is the number of installments.
func (p LoanParameters) TenureMonths() int {
	return p.TenureYears * 12
}

func (p LoanParameters) EMI() float64 {
	return EMI(float64(p.Principal), p.MonthlyRate(), p.TenureMonths())
}

func (p LoanParameters) TotalPayment() float64 {
	return TotalPayment(float64(p.Principal), p.MonthlyRate(), p.TenureMonths())
}

func (p LoanParameters) TotalInterest() float64 {
	return TotalInterest(float64(p.Principal), p.MonthlyRate(), p.TenureMonths())
}

// EMI returns the equated monthly installment for principal at monthlyRate over
// months installments. A zero rate or zero term degrades to flat repayment.
func EMI(principal, monthlyRate float64, months int) float64 {
	if monthlyRate == 0 || months == 0 {
		return principal / float64(max(months, 1))
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * growth / (growth - 1)
}

// TotalPayment is EMI times the number of installments, or the principal itself
// when there is no interest to amortize.
func TotalPayment(principal, monthlyRate float64, months int) float64 {
	if monthlyRate == 0 || months == 0 {
		return principal
	}
	return EMI(principal, monthlyRate, months) * float64(months)
}

// TotalInterest is never negative.
func TotalInterest(principal, monthlyRate float64, months int) float64 {
	return math.Max(TotalPayment(principal, monthlyRate, months)-principal, 0)
}
