package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := protected.Group("/applications")
	{
		applications.POST("/", handler.Apply)
		applications.GET("/", handler.List)
		applications.GET("/:id/", handler.GetDetail)
	}
}

// ApplyRequest is the JSON form of an application. A resume file requires multipart.
type ApplyRequest struct {
	Job         json.Number `json:"job" swaggertype:"integer"`
	CoverLetter string      `json:"cover_letter"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Creates the application, or returns the existing one when the caller already applied
// @Tags         applications
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body      ApplyRequest  true  "Application data"
// @Success      200   {object}  response.Response{data=domain.Application}  "Already applied"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/ [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	in, err := bindApplyInput(c)
	if err != nil {
		c.Error(err)
		return
	}

	app, created, err := h.applicationUC.Apply(c.Request.Context(), userID, in)
	if err != nil {
		c.Error(err)
		return
	}

	if !created {
		response.Success(c, http.StatusOK, "You have already applied for this job.", app)
		return
	}

	logger.Log.Info("Application submitted", "user_id", userID, "job_id", app.Job.ID, "request_id", response.RequestID(c))
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

func bindApplyInput(c *gin.Context) (domain.ApplyInput, error) {
	var in domain.ApplyInput
	var rawJob string

	if isMultipart(c) {
		rawJob = c.PostForm("job")
		in.CoverLetter = c.PostForm("cover_letter")
		fh, err := formFile(c, "resume")
		if err != nil {
			return in, err
		}
		in.Resume = fh
	} else {
		var req ApplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, apperror.BadRequest("Invalid request body")
		}
		rawJob = req.Job.String()
		in.CoverLetter = req.CoverLetter
	}

	rawJob = strings.TrimSpace(rawJob)
	if rawJob == "" {
		return in, nil
	}
	jobID, err := strconv.ParseInt(rawJob, 10, 64)
	if err != nil {
		return in, apperror.FieldError("job", "A valid integer is required.")
	}
	in.JobID = &jobID
	return in, nil
}

// List godoc
// @Summary      List own applications
// @Description  format=xlsx or format=csv downloads the list as a spreadsheet
// @Tags         applications
// @Produce      json
// @Param        format  query     string  false  "Export format"  Enums(xlsx, csv)
// @Success      200     {object}  response.Response{data=[]domain.Application}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /applications/ [get]
// @Security     BearerAuth
func (h *ApplicationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if format := c.Query("format"); format != "" && format != "json" {
		h.export(c, userID, format)
		return
	}

	apps, err := h.applicationUC.ListOwn(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

func (h *ApplicationHandler) export(c *gin.Context, userID int64, format string) {
	data, filename, err := h.applicationUC.ExportOwn(c.Request.Context(), userID, format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// GetDetail godoc
// @Summary      Get own application
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id}/ [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetDetail(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	app, err := h.applicationUC.GetOwn(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}
