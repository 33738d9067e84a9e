package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

// LoanController handles the EMI calculator and bank offers.
type LoanController struct {
	logger *zap.Logger
}

func NewLoanController(logger *zap.Logger) *LoanController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanController{logger: logger}
}

// loanUpdateRequest holds a partial update; omitted fields keep their value.
type loanUpdateRequest struct {
	Principal         *float64 `json:"principal"`
	TenureYears       *float64 `json:"tenure_years"`
	AnnualRatePercent *float64 `json:"annual_rate_percent"`
}

// GetLoan returns the calculator figures and the last fetched offers.
func (c *LoanController) GetLoan(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)
	views.JSON(w, http.StatusOK, loanView(sess.Loan))
}

// PutLoan updates calculator inputs. Out of range values are clamped.
func (c *LoanController) PutLoan(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)

	var req loanUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		views.Error(w, http.StatusBadRequest, views.CodeBadRequest, err.Error())
		return
	}

	if req.Principal != nil {
		sess.Loan.SetPrincipal(*req.Principal)
	}
	if req.TenureYears != nil {
		sess.Loan.SetTenureYears(*req.TenureYears)
	}
	if req.AnnualRatePercent != nil {
		sess.Loan.SetAnnualRate(*req.AnnualRatePercent)
	}

	views.JSON(w, http.StatusOK, loanView(sess.Loan))
}

// PostOffers starts a background offer fetch and answers 202. With ?wait=true
// it fetches inline and answers 200 with the result. A running fetch gives 409.
func (c *LoanController) PostOffers(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)

	var err error
	status := http.StatusAccepted
	if r.URL.Query().Get("wait") == "true" {
		// A disconnect must not leave the cleared offers empty.
		_, err = sess.Loan.FetchLoanOffers(context.WithoutCancel(r.Context()))
		status = http.StatusOK
	} else {
		err = sess.Loan.StartFetchLoanOffers(r.Context())
	}

	if errors.Is(err, models.ErrFetchInProgress) {
		views.Error(w, http.StatusConflict, views.CodeConflict, "Loan offers are already being fetched")
		return
	}
	if err != nil {
		c.logger.Error("loan offer fetch failed", zap.String("session_id", sess.ID), zap.Error(err))
		views.Error(w, http.StatusInternalServerError, views.CodeInternal, "Failed to fetch loan offers")
		return
	}

	views.JSON(w, status, loanView(sess.Loan))
}

type loanState interface {
	Params() models.LoanParameters
	Offers() []models.LoanOffer
	IsFetching() bool
}

func loanView(l loanState) views.LoanView {
	return views.NewLoanView(l.Params(), l.Offers(), l.IsFetching())
}
