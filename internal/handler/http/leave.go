package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.leaveService.RequestLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListLeaves(r.Context(), leave.LeaveFilter{Params: paginationFromQuery(r)})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, meta(result.Page, result.Limit, result.Total, result.TotalPages))
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, leave.StatusApproved, "Leave request approved")
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, leave.StatusRejected, "Leave request rejected")
}

func (l *LeaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, status leave.Status, message string) {
	id, err := pathID(r, leave.ErrLeaveRequestNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// The comment body is optional
	var req leave.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id
	req.Status = status

	result, err := l.leaveService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// GetBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetBalance(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
