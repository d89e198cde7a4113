package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
	ExportMonthly(w http.ResponseWriter, r *http.Request)

	RequestCorrection(w http.ResponseWriter, r *http.Request)
	ListPendingCorrections(w http.ResponseWriter, r *http.Request)
	ApproveCorrection(w http.ResponseWriter, r *http.Request)
	RejectCorrection(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	correctionService attendance.CorrectionService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, correctionService attendance.CorrectionService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		correctionService: correctionService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ClockIn(r.Context(), attendance.ClockInRequest{IP: clientIP(r)})
	if err != nil {
		slog.Error("ClockIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ClockOut(r.Context())
	if err != nil {
		slog.Error("ClockOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out", result)
}

func attendanceFilter(r *http.Request) attendance.AttendanceFilter {
	return attendance.AttendanceFilter{
		Month:  r.URL.Query().Get("month"),
		Params: paginationFromQuery(r),
	}
}

// Recent implements AttendanceHandler.
func (h *attendanceHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetRecent(r.Context(), attendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, meta(result.Page, result.Limit, result.Total, result.TotalPages))
}

// Monthly implements AttendanceHandler.
func (h *attendanceHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMonthly(r.Context(), attendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, meta(result.Page, result.Limit, result.Total, result.TotalPages))
}

// ExportMonthly implements AttendanceHandler. The workbook is buffered so a
// failure halfway still produces a JSON error instead of a truncated file.
func (h *attendanceHandlerImpl) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")

	var buf bytes.Buffer
	if err := h.attendanceService.ExportMonthly(r.Context(), month, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, month))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("ExportMonthly write error", "error", err)
	}
}

// RequestCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.correctionService.RequestCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction requested", result)
}

// ListPendingCorrections implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListPendingCorrections(w http.ResponseWriter, r *http.Request) {
	result, err := h.correctionService.ListPending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApproveCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, attendance.ErrCorrectionNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction approved", result)
}

// RejectCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, attendance.ErrCorrectionNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Reject(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction rejected", result)
}
