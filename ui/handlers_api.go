package ui

import (
	"net/http"

	"dataportal/app"
	"dataportal/domain/dataset"
	"dataportal/internal/chart"
	"dataportal/internal/errors"
	"dataportal/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

type countRequest struct {
	Column string `json:"column" form:"column"`
	Top    int    `json:"top" form:"top"`
}

type chartRequest struct {
	app.GroupRequest
	chart.Spec
}

type countFragment struct {
	Table  dataset.TableView
	Charts []*chart.Figure
}

type groupFragment struct {
	Table   dataset.TableView
	Request app.GroupRequest
	Kinds   []chart.Kind
	Columns []string
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// handleOverview returns describe, head/tail, dtypes and column names
func (s *Server) handleOverview(c *gin.Context) {
	overview, err := s.service.Overview(c.Request.Context(), sessionID(c), s.rowsParam(c, "head"), s.rowsParam(c, "tail"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if isHTMX(c) {
		s.renderHTML(c, http.StatusOK, fragments.Overview, overview)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// handleCount returns the value count of one column with its charts
func (s *Server) handleCount(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid count request: "+err.Error()))
		return
	}

	result, err := s.service.Count(c.Request.Context(), sessionID(c), req.Column, req.Top)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !isHTMX(c) {
		c.JSON(http.StatusOK, result)
		return
	}

	table, err := result.Frequency.Table()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderHTML(c, http.StatusOK, fragments.CountResult, countFragment{Table: table.View(), Charts: result.Charts})
}

// handleGroup returns a group-by aggregation
func (s *Server) handleGroup(c *gin.Context) {
	var req app.GroupRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid group request: "+err.Error()))
		return
	}

	agg, err := s.service.Group(c.Request.Context(), sessionID(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !isHTMX(c) {
		c.JSON(http.StatusOK, agg)
		return
	}

	table, err := agg.Table()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderHTML(c, http.StatusOK, fragments.GroupResult, groupFragment{
		Table:   table.View(),
		Request: req,
		Kinds:   chart.Kinds,
		Columns: table.ColumnNames(),
	})
}

// handleChart aggregates and returns the plotly figure of the result
func (s *Server) handleChart(c *gin.Context) {
	var req chartRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid chart request: "+err.Error()))
		return
	}

	fig, err := s.service.Chart(c.Request.Context(), sessionID(c), req.GroupRequest, req.Spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if isHTMX(c) {
		s.renderHTML(c, http.StatusOK, fragments.ChartResult, fig)
		return
	}
	c.JSON(http.StatusOK, fig)
}

// respondError answers with the error's status: a message fragment for
// HTMX, JSON otherwise
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	msg := errors.Message(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	if isHTMX(c) {
		s.renderHTML(c, status, fragments.Message, map[string]interface{}{"Kind": "warning", "Text": msg})
		return
	}
	c.JSON(status, gin.H{"error": msg, "code": errors.GetCode(err)})
}
