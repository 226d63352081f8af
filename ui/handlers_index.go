package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"dataportal/app"
	"dataportal/internal/analysis"
	"dataportal/internal/errors"
	"dataportal/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie    = "dataportal_flash"
	uploadSuccess  = "File successfully uploaded!"
	multipartSlack = 1 << 20 // multipart headers on top of the file itself
)

// pageData is what index.html renders
type pageData struct {
	MaxUploadMB int64
	Flash       string
	Error       string
	Overview    *app.Overview
	Reducers    []analysis.Reducer
}

// handleIndex renders the single page. Without a loaded table only the
// upload form is shown.
func (s *Server) handleIndex(c *gin.Context) {
	flash := ""
	if raw, err := c.Cookie(flashCookie); err == nil {
		flash = raw
		c.SetCookie(flashCookie, "", -1, "/", "", s.cfg.SecureCookie, true)
	}
	s.renderIndex(c, http.StatusOK, flash, "")
}

func (s *Server) renderIndex(c *gin.Context, status int, flash, errMsg string) {
	data := pageData{
		MaxUploadMB: s.cfg.MaxUploadBytes >> 20,
		Flash:       flash,
		Error:       errMsg,
		Reducers:    analysis.Reducers,
	}

	overview, err := s.service.Overview(c.Request.Context(), sessionID(c), s.rowsParam(c, "head"), s.rowsParam(c, "tail"))
	switch {
	case err == nil:
		data.Overview = overview
	case errors.GetCode(err) == errors.CodeNoTable:
	default:
		s.logger.Error("[Index] overview failed: %v", err)
		if data.Error == "" {
			data.Error = errors.Message(err)
		}
	}

	s.renderHTML(c, status, fragments.Index, data)
}

// handleUpload reads the multipart file field into the session table
func (s *Server) handleUpload(c *gin.Context) {
	limit := s.cfg.MaxUploadBytes
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.uploadFailed(c, s.tooLarge())
			return
		}
		s.uploadFailed(c, errors.InvalidInput("choose a CSV or Excel file to upload"))
		return
	}
	defer file.Close()

	if limit > 0 && header.Size > limit {
		s.uploadFailed(c, s.tooLarge())
		return
	}

	ds, err := s.service.Load(c.Request.Context(), sessionID(c), header.Filename, header.Size, file)
	if err != nil {
		s.uploadFailed(c, err)
		return
	}

	rows, cols := ds.Table.Shape()
	s.logger.Info("[Upload] session %s loaded %s (%d rows, %d columns)", ds.SessionID, ds.Filename, rows, cols)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, uploadSuccess, 60, "/", "", s.cfg.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) uploadFailed(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("[Upload] failed: %v", err)
	}
	s.renderIndex(c, status, "", errors.Message(err))
}

func (s *Server) tooLarge() error {
	return errors.TooLarge(fmt.Sprintf("file is larger than the %dMB upload limit", s.cfg.MaxUploadBytes>>20))
}

// handleReset drops the session table and returns to the empty page
func (s *Server) handleReset(c *gin.Context) {
	if err := s.service.Reset(c.Request.Context(), sessionID(c)); err != nil {
		s.logger.Error("[Reset] failed: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// rowsParam reads a head/tail row count; the table clamps out-of-range values
func (s *Server) rowsParam(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return s.cfg.DefaultRows
	}
	return n
}

// renderHTML renders into a buffer first so template errors become a clean 500
func (s *Server) renderHTML(c *gin.Context, status int, name string, data interface{}) {
	body, err := s.renderer.Render(name, data)
	if err != nil {
		s.logger.Error("[Render] %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}
