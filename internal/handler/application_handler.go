package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/response"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/storage"
)

// ApplicationHandler exposes application funnel endpoints.
type ApplicationHandler struct {
	apps    *service.ApplicationService
	stats   *service.StatsService
	exports *service.ExportService
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(apps *service.ApplicationService, stats *service.StatsService, exports *service.ExportService, store *storage.LocalStorage, signer *storage.SignedURLSigner) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, stats: stats, exports: exports, storage: store, signer: signer}
}

const maxResumeFormBytes = 16 << 20

func readResume(c *gin.Context) (name, mime string, data []byte, err error) {
	file, err := c.FormFile("resume")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", "", nil, nil
		}
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resume upload")
	}
	f, err := file.Open()
	if err != nil {
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resume")
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, maxResumeFormBytes))
	if err != nil {
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resume")
	}
	return file.Filename, file.Header.Get("Content-Type"), data, nil
}

// ApplyGuest godoc
// @Summary Apply for a job without an account
// @Description Multipart form: job_id, email, full_name, phone, skills, message plus an optional resume file.
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param job_id formData string true "Job ID"
// @Param email formData string true "Applicant email"
// @Param full_name formData string true "Applicant full name"
// @Param resume formData file false "Resume (PDF, DOC or DOCX, max 5MB)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /applications/guest [post]
func (h *ApplicationHandler) ApplyGuest(c *gin.Context) {
	req := service.GuestApplyRequest{
		JobID:    c.PostForm("job_id"),
		Email:    c.PostForm("email"),
		FullName: c.PostForm("full_name"),
		Phone:    c.PostForm("phone"),
		Skills:   c.PostForm("skills"),
		Message:  c.PostForm("message"),
	}

	name, mime, data, err := readResume(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.ResumeName = name
	req.ResumeMIME = mime
	req.Resume = data

	app, err := h.apps.ApplyGuest(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}

// Apply godoc
// @Summary Apply for a job as an authenticated applicant
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param job_id formData string true "Job ID"
// @Param resume formData file false "Resume (PDF, DOC or DOCX, max 5MB)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	req := service.ApplyRequest{
		JobID:   c.PostForm("job_id"),
		Skills:  c.PostForm("skills"),
		Message: c.PostForm("message"),
	}

	name, mime, data, err := readResume(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.ResumeName = name
	req.ResumeMIME = mime
	req.Resume = data

	app, err := h.apps.Apply(c.Request.Context(), actorFromContext(c), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param jobId query string false "Filter by job"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter, err := applicationFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	apps, pagination, err := h.apps.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, pagination)
}

// ListMine godoc
// @Summary List the authenticated applicant's applications
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applications/mine [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := applicationFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.ApplicantID = claims.UserID

	apps, pagination, err := h.apps.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.apps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleApplicant && app.ApplicantID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "application not found"))
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// UpdateStatus godoc
// @Summary Move an application through the funnel
// @Description Validates the status transition and the optimistic version token before writing.
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	app, err := h.apps.UpdateStatus(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// Withdraw godoc
// @Summary Withdraw own application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /applications/{id}/withdraw [post]
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	app, err := h.apps.Withdraw(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Stats godoc
// @Summary Funnel statistics
// @Description Per-status application counts, system-wide or for one job.
// @Tags Applications
// @Produce json
// @Param jobId query string false "Restrict to one job"
// @Success 200 {object} response.Envelope
// @Router /applications/stats [get]
func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.stats.FunnelCounts(c.Request.Context(), c.Query("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export applications
// @Tags Applications
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Param jobId query string false "Restrict to one job"
// @Success 200 {file} binary
// @Router /applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	filter, err := applicationFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Applications(c.Request.Context(), filter, service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ResumeLink godoc
// @Summary Generate a short-lived resume download link
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/resume-link [get]
func (h *ApplicationHandler) ResumeLink(c *gin.Context) {
	app, err := h.apps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if app.ResumePath == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "application has no resume"))
		return
	}
	if !h.storage.Exists(app.ResumePath) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resume file is no longer available"))
		return
	}

	token, expiresAt, err := h.signer.Generate(app.ID, app.ResumePath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign resume link"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/api/v1/resumes/download?token=" + token,
		"expires_at": expiresAt,
	}, nil)
}

// DownloadResume godoc
// @Summary Download a resume via signed link
// @Tags Applications
// @Produce application/octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /resumes/download [get]
func (h *ApplicationHandler) DownloadResume(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired link"))
		return
	}

	f, err := h.storage.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resume not found"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resume"))
		return
	}

	c.Header("Content-Disposition", "attachment")
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", f, nil)
}

func applicationFilterFromQuery(c *gin.Context) (models.ApplicationFilter, error) {
	var filter models.ApplicationFilter
	filter.JobID = c.Query("jobId")
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseApplicationStatus(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.Status = &status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter, nil
}
