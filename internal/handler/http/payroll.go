package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
	"github.com/shopspring/decimal"
)

type PayrollHandler interface {
	CreateDraft(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)

	CreatePayslip(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// CreateDraft implements PayrollHandler.
func (h *payrollHandlerImpl) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.CreateDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll draft created", result)
}

// ListRuns implements PayrollHandler.
func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListRuns(r.Context(), payroll.PayrollRunFilter{Params: paginationFromQuery(r)})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, meta(result.Page, result.Limit, result.Total, result.TotalPages))
}

// GetRun implements PayrollHandler.
func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, payroll.ErrPayrollRunNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Submit implements PayrollHandler.
func (h *payrollHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, payroll.ErrPayrollRunNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Submit(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll submitted", result)
}

// Approve implements PayrollHandler.
func (h *payrollHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, payroll.ErrPayrollRunNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll approved", result)
}

// CreatePayslip implements PayrollHandler.
func (h *payrollHandlerImpl) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.CreatePayslip(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslip created", result)
}

// GetPayslip implements PayrollHandler. format=html renders a printable page.
func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, payroll.ErrPayslipNotFound)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") != "html" {
		response.Success(w, result)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := payslipTemplate.Execute(w, newPayslipView(result)); err != nil {
		slog.Error("GetPayslip render error", "error", err)
	}
}

type payslipLine struct {
	Name   string
	Amount string
}

type payslipView struct {
	payroll.PayslipResponse
	AllowanceLines []payslipLine
	DeductionLines []payslipLine
	Base           string
	Net            string
}

func newPayslipView(p payroll.PayslipResponse) payslipView {
	return payslipView{
		PayslipResponse: p,
		AllowanceLines:  lines(p.Allowances),
		DeductionLines:  lines(p.Deductions),
		Base:            p.BaseSalary.StringFixed(2),
		Net:             p.NetSalary.StringFixed(2),
	}
}

func lines(components map[string]decimal.Decimal) []payslipLine {
	out := make([]payslipLine, 0, len(components))
	for name, amount := range components {
		out = append(out, payslipLine{Name: name, Amount: amount.StringFixed(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var payslipTemplate = template.Must(template.New("payslip").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Payslip</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; border-bottom: 1px solid #ddd; }
td.amount { text-align: right; }
</style>
</head>
<body>
<h1>Payslip</h1>
<p>
{{with .Name}}<strong>{{.}}</strong><br>{{end}}
{{with .NIK}}NIK: {{.}}<br>{{end}}
{{with .Position}}{{.}}{{end}}{{with .Department}} / {{.}}{{end}}<br>
Period: {{.PeriodStart}} to {{.PeriodEnd}}
</p>
<table>
<tr><td>Base salary</td><td class="amount">{{.Base}}</td></tr>
{{range .AllowanceLines}}<tr><td>Allowance: {{.Name}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}{{range .DeductionLines}}<tr><td>Deduction: {{.Name}}</td><td class="amount">-{{.Amount}}</td></tr>
{{end}}<tr><td><strong>Net salary</strong></td><td class="amount"><strong>{{.Net}}</strong></td></tr>
</table>
</body>
</html>
`))
