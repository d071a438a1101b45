package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/database"
	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/frontend"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/security"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
	"github.com/gin-gonic/gin"
)

const maxListLimit = 100

// assess runs the pipeline and persists the result
func (s *Server) assess(ctx context.Context, subject string, values map[string][]string) (*types.Assessment, error) {
	start := time.Now()

	assessment, err := s.analyzer.Assess(security.SanitizeSubject(subject), values)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	s.metrics.RecordPrediction(string(assessment.Prediction), duration)
	s.logger.AssessmentLogger(assessment.ID, string(assessment.Prediction),
		assessment.Axes.ACMinusCE, assessment.Axes.AEMinusRO, assessment.Noise, duration)

	if err := s.store.SaveAssessment(ctx, &assessment); err != nil {
		return nil, apperrors.NewInternalError("failed to store assessment", err)
	}

	return &assessment, nil
}

func (s *Server) render(c *gin.Context, status int, page string, data map[string]any) {
	if err := s.renderer.Render(c, status, page, security.GetNonce(c), data); err != nil {
		_ = c.Error(apperrors.NewInternalError("failed to render page", err))
	}
}

// handleIndex renders the questionnaire
func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK, frontend.PageIndex, frontend.IndexData())
}

// handleSubmitForm scores a questionnaire form post and redirects to the result page
func (s *Server) handleSubmitForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		s.renderFormError(c, apperrors.NewValidationError("malformed form body", err))
		return
	}

	subject := c.PostForm("subject")
	if subject == "" {
		// Field name used by the first version of the form
		subject = c.PostForm("nama")
	}

	assessment, err := s.assess(c.Request.Context(), subject, c.Request.PostForm)
	if err != nil {
		s.renderFormError(c, apperrors.ToAppError(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(resultCookie, assessment.ID, int(s.config.Server.CacheTTL.Seconds()), "/", "", s.config.Server.EnableHSTS, true)
	c.Redirect(http.StatusSeeOther, "/result")
}

func (s *Server) renderFormError(c *gin.Context, appErr *apperrors.AppError) {
	_ = c.Error(appErr)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		return
	}

	data := frontend.IndexData()
	data["Error"] = appErr.ErrBuilder.Msg
	s.render(c, appErr.HTTPStatus, frontend.PageIndex, data)
}

// handleResult renders the assessment named by the result cookie
func (s *Server) handleResult(c *gin.Context) {
	id, err := c.Cookie(resultCookie)
	if err != nil || id == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	assessment, err := s.store.GetAssessment(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	s.render(c, http.StatusOK, frontend.PageResult, frontend.ResultData(assessment))
}

// handleCreateAssessment godoc
// @Summary      Score a questionnaire
// @Description  Aggregates the 48 item ratings into scale totals and axes, then classifies the learning style.
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        request  body      types.AssessRequest  true  "Subject and item ratings keyed ce1..ae12"
// @Success      201      {object}  types.Assessment
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/v1/assessments [post]
func (s *Server) handleCreateAssessment(c *gin.Context) {
	var req types.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid request body", err))
		return
	}

	assessment, err := s.assess(c.Request.Context(), req.Subject, analysis.ValuesFromMap(req.Responses))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", "/api/v1/assessments/"+assessment.ID)
	c.JSON(http.StatusCreated, assessment)
}

// handleGetAssessment godoc
// @Summary      Fetch an assessment
// @Tags         assessments
// @Produce      json
// @Param        id   path      string  true  "Assessment id"
// @Success      200  {object}  types.Assessment
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/assessments/{id} [get]
func (s *Server) handleGetAssessment(c *gin.Context) {
	id := c.Param("id")

	assessment, err := s.store.GetAssessment(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		_ = c.Error(apperrors.NewNotFoundError("assessment", id))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// handleDeleteAssessment godoc
// @Summary      Delete an assessment
// @Description  Removes a stored assessment and any cached copy.
// @Tags         assessments
// @Param        id   path      string  true  "Assessment id"
// @Success      204
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/assessments/{id} [delete]
func (s *Server) handleDeleteAssessment(c *gin.Context) {
	id := c.Param("id")

	err := s.store.DeleteAssessment(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		_ = c.Error(apperrors.NewNotFoundError("assessment", id))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	s.logger.Info("Assessment deleted", "assessment_id", id)
	c.Status(http.StatusNoContent)
}

// handleListAssessments godoc
// @Summary      List recent assessments
// @Tags         assessments
// @Produce      json
// @Param        limit  query     int  false  "Maximum results (1-100)"  default(20)
// @Success      200    {array}   types.Assessment
// @Failure      400    {object}  map[string]interface{}
// @Router       /api/v1/assessments [get]
func (s *Server) handleListAssessments(c *gin.Context) {
	limit := database.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			_ = c.Error(apperrors.NewValidationError("limit must be an integer between 1 and 100", raw))
			return
		}
		limit = n
	}

	assessments, err := s.lister.ListRecent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

// handleStats godoc
// @Summary      Prediction distribution
// @Description  Number of stored assessments per learning style.
// @Tags         assessments
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/stats [get]
func (s *Server) handleStats(c *gin.Context) {
	counts, err := s.lister.CountByPrediction(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"total":         total,
		"by_prediction": counts,
	})
}

// handleModel godoc
// @Summary      Describe the loaded classifier
// @Tags         model
// @Produce      json
// @Success      200  {object}  types.ModelInfo
// @Router       /api/v1/model [get]
func (s *Server) handleModel(c *gin.Context) {
	c.JSON(http.StatusOK, s.model)
}

// handleHealth godoc
// @Summary      Service health
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	services := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		services[name] = "ok"
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
		"model":     s.model.Kind,
		"services":  services,
		"metrics":   s.metrics.GetStats(),
	}
	if s.retention != nil {
		body["retention"] = s.retention.Info()
	}

	c.JSON(code, body)
}
