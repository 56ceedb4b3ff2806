package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"csvwizard/internal/config"
	"csvwizard/internal/consolidate"
	"csvwizard/internal/mapping"
	"csvwizard/internal/output"
	"csvwizard/internal/upload"
	"csvwizard/internal/wizard"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) state() StateResponse {
	return StateResponse{
		Steps:                stepResponses(s.page.Views(), s.page.Cards()),
		Errors:               nonNil(s.page.Errors()),
		ConsolidationEnabled: s.page.ConsolidationEnabled(),
	}
}

func (s *Server) listSteps(c *gin.Context) {
	c.JSON(http.StatusOK, s.state())
}

// uploadStep stores the multipart "file" field and submits it for the step.
// A request without a file resubmits the step's current selection.
//
// Unknown, locked, completed and busy steps are refused before anything is
// written to disk.
func (s *Server) uploadStep(c *gin.Context) {
	id := c.Param("id")

	u, err := s.page.Uploader(id)
	if err == nil {
		err = s.acceptsUpload(id, u)
	}
	if err != nil {
		status, body := s.uploadOutcome(id, err)
		c.JSON(status, body)
		return
	}

	fh, formErr := c.FormFile(upload.FileField)
	if formErr == nil {
		path := filepath.Join(s.uploadDir, fmt.Sprintf("%s-%s-%s", id, uuid.NewString()[:8], filepath.Base(fh.Filename)))
		if saveErr := c.SaveUploadedFile(fh, path); saveErr != nil {
			s.logger.Error("Failed to store upload", zap.String("step", id), zap.Error(saveErr))
			s.removeUpload(path)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}
		err = s.page.UploadStep(c.Request.Context(), id, path)
		s.keepUpload(id, path, u.File())
	} else {
		err = s.page.SubmitStep(c.Request.Context(), id)
	}

	status, body := s.uploadOutcome(id, err)
	c.JSON(status, body)
}

// acceptsUpload reports why the step cannot take an upload right now.
func (s *Server) acceptsUpload(id string, u *upload.Uploader) error {
	view, ok := s.page.View(id)
	switch {
	case !ok:
		return fmt.Errorf("%w: %s", wizard.ErrUnknownStep, id)
	case view.Completed:
		return upload.ErrCompleted
	case view.Locked:
		return upload.ErrDisabled
	case u.InFlight():
		return upload.ErrInFlight
	}
	return nil
}

func (s *Server) uploadOutcome(id string, err error) (int, gin.H) {
	var rejected *upload.RejectedError
	switch {
	case err == nil:
		data, _ := s.page.StepData(id)
		return http.StatusOK, gin.H{"step": id, "data": data, "state": s.state()}
	case errors.Is(err, wizard.ErrUnknownStep):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, upload.ErrDisabled), errors.Is(err, upload.ErrCompleted), errors.Is(err, upload.ErrInFlight),
		errors.Is(err, upload.ErrNotApplied):
		return http.StatusConflict, gin.H{"error": err.Error(), "state": s.state()}
	case errors.Is(err, upload.ErrNoFile):
		return http.StatusBadRequest, gin.H{"errors": []string{upload.MsgNoFile}, "state": s.state()}
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity, gin.H{"errors": nonNil(rejected.Messages), "status": rejected.StatusCode, "state": s.state()}
	case errors.Is(err, upload.ErrSendFailed):
		return http.StatusBadGateway, gin.H{"errors": []string{upload.MsgSendFailed}, "state": s.state()}
	default:
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	}
}

func (s *Server) stepColumns(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.page.Uploader(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	cols := s.page.Columns(id)
	if cols == nil {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("step %s has not been uploaded", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": id, "columns": cols})
}

func (s *Server) listErrors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"errors": nonNil(s.page.Errors())})
}

func (s *Server) dismissErrors(c *gin.Context) {
	s.page.DismissErrors()
	c.Status(http.StatusNoContent)
}

// previewMapping applies assignments to a fresh mapping table. Headers come
// from the request or, when a stepId is given, from that step's upload.
func (s *Server) previewMapping(c *gin.Context) {
	var req MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	headers := req.Headers
	if req.StepID != "" {
		headers = s.page.Columns(req.StepID)
		if headers == nil {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("step %s has not been uploaded", req.StepID)})
			return
		}
	}

	m := mapping.New(headers, s.cfg.Mapping.StandardColumns)
	for _, a := range req.Assignments {
		if err := m.SetByHeader(a.CSVColumn, a.StandardColumn); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rows := make([]OptionResponse, len(headers))
	for i, h := range headers {
		rows[i] = OptionResponse{CSVColumn: h, Options: m.Options(i)}
	}
	mapped := m.Mapped()
	if mapped == nil {
		mapped = []mapping.ColumnMapping{}
	}

	c.JSON(http.StatusOK, MappingResponse{
		Mapped:  mapped,
		Summary: output.MappingCount(m.MappedCount(), len(headers)),
		Ready:   m.CanConfirm(),
		Rows:    rows,
	})
}

func (s *Server) consolidate(c *gin.Context) {
	result, err := s.page.Consolidate(c.Request.Context())
	var failure *consolidate.Failure
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": consolidate.MsgSuccess, "data": result})
	case errors.Is(err, consolidate.ErrDisabled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, consolidate.ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &failure):
		c.JSON(http.StatusBadGateway, gin.H{"error": failure.Notice})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) consolidatedResult(c *gin.Context) {
	result := s.page.Consolidator().Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": consolidate.ErrNoResult.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

func (s *Server) downloadConsolidated(c *gin.Context) {
	pretty, err := s.page.Consolidator().Render()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	name := s.cfg.Output.DownloadName
	if name == "" {
		name = config.DefaultDownloadName
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json", []byte(pretty+"\n"))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
