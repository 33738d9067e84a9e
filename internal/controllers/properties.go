package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

const maxLocationLength = 200

// PropertyController handles the analysis form and history.
type PropertyController struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewPropertyController(logger *zap.Logger) *PropertyController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyController{logger: logger, now: time.Now}
}

type analyzeRequest struct {
	Location  string `json:"location"`
	Area      int    `json:"area"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Floor     int    `json:"floor"`
}

// GetProperties lists the session's analyses, newest first.
func (c *PropertyController) GetProperties(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)
	views.JSON(w, http.StatusOK, views.NewPropertiesView(
		sess.Property.History(),
		sess.Property.AnalysisCount(),
		sess.Property.IsAnalyzing(),
		c.now(),
	))
}

// PostAnalyze values a property and returns the new analysis card.
func (c *PropertyController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)

	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		views.Error(w, http.StatusBadRequest, views.CodeBadRequest, err.Error())
		return
	}

	location := strings.TrimSpace(req.Location)
	if utf8.RuneCountInString(location) > maxLocationLength {
		views.Error(w, http.StatusBadRequest, views.CodeBadRequest, "Location is too long")
		return
	}

	input := models.PropertyInput{
		Location:  location,
		Area:      req.Area,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Floor:     req.Floor,
	}
	if err := input.Validate(); err != nil {
		views.Error(w, http.StatusBadRequest, views.CodeBadRequest, err.Error())
		return
	}

	// The analysis is recorded even if the caller goes away mid-request.
	ctx := context.WithoutCancel(r.Context())
	analysis := sess.Property.Analyze(ctx, input)

	c.logger.Debug("analysis served", zap.String("session_id", sess.ID))
	views.JSON(w, http.StatusCreated, views.NewPropertyView(analysis, c.now()))
}
