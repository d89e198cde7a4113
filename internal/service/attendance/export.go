package attendance

import (
	"context"
	"fmt"
	"io"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Attendance"

var exportHeader = []interface{}{"Date", "NIK", "Name", "Clock In", "Clock Out", "IP", "Note"}

// ExportMonthly implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportMonthly(ctx context.Context, month string, w io.Writer) error {
	filter := attendance.AttendanceFilter{Month: month}
	if err := filter.Validate(); err != nil {
		return err
	}

	id, lf, err := a.scopedFilter(ctx, month, pagination.Params{
		Limit:     pagination.MaxLimit,
		SortBy:    "clock_in",
		SortOrder: "asc",
	})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", "G", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	row := 2
	for {
		records, total, err := a.AttendanceRepository.List(ctx, id.TenantID, lf)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}

		for _, r := range records {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				a.clock.LocalDate(r.ClockIn),
				r.EmployeeNIK,
				r.EmployeeName,
				a.clock.Format(r.ClockIn),
				derefOrEmpty(a.clock.FormatPtr(r.ClockOut)),
				r.IP,
				derefOrEmpty(r.Note),
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}

		if int64(lf.Offset()+len(records)) >= total || len(records) == 0 {
			break
		}
		lf.Page++
	}

	return f.Write(w)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
