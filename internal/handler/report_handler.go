package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/tablexcel/internal/domain"
	"github.com/locvowork/tablexcel/internal/logger"
	"github.com/locvowork/tablexcel/internal/service"
	"github.com/locvowork/tablexcel/internal/service/serviceutils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SalaryReporter produces the salary workbook.
type SalaryReporter interface {
	Export(ctx context.Context, filter domain.EmployeeFilter, path string, forceRecreate bool) (*service.ExportResult, error)
	Write(ctx context.Context, filter domain.EmployeeFilter, w io.Writer) (*service.ExportResult, error)
}

type ReportHandler struct {
	svc           SalaryReporter
	outputPath    string
	forceRecreate bool
}

// NewReportHandler serves the salary report. Exports go to outputPath;
// forceRecreate is the default of the export endpoint's force parameter.
func NewReportHandler(svc SalaryReporter, outputPath string, forceRecreate bool) *ReportHandler {
	return &ReportHandler{svc: svc, outputPath: outputPath, forceRecreate: forceRecreate}
}

// DownloadHandler handles GET /reports/salaries
func (h *ReportHandler) DownloadHandler(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}

	var buf bytes.Buffer
	result, err := h.svc.Write(c.Request().Context(), filter, &buf)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate salary report", err)
	}
	logger.InfoLog(c.Request().Context(), "salary report %s: %d employees, %d issues", result.RunID, result.Employees, len(result.Issues))

	filename := fmt.Sprintf("salary_report_%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Response().Header().Set("X-Report-Run", result.RunID)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportHandler handles POST /reports/salaries/export
func (h *ReportHandler) ExportHandler(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}

	force := h.forceRecreate
	if v := c.QueryParam("force"); v != "" {
		if force, err = strconv.ParseBool(v); err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid force parameter", err)
		}
	}

	result, err := h.svc.Export(c.Request().Context(), filter, h.outputPath, force)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to export salary report", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salary report exported successfully", result)
}

func parseFilter(c echo.Context) (domain.EmployeeFilter, error) {
	filter := domain.EmployeeFilter{DeptNo: c.QueryParam("dept")}

	var err error
	if v := c.QueryParam("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			return filter, fmt.Errorf("limit must be a non-negative integer: %q", v)
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer: %q", v)
		}
	}
	return filter, nil
}
