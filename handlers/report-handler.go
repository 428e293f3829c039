package handlers

import (
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/services"
)

// ReportHandler streams xlsx exports. Admin-only at the route boundary.
type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) ExportTasksReport(w http.ResponseWriter, r *http.Request) {
	buf, err := h.service.ExportTasksReport()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: REPORT_EXPORTED, Description: Tasks report exported")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks_report.xlsx"`)
	w.Write(buf.Bytes())
}

func (h *ReportHandler) ExportUsersReport(w http.ResponseWriter, r *http.Request) {
	buf, err := h.service.ExportUsersReport()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: REPORT_EXPORTED, Description: Users report exported")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="users_report.xlsx"`)
	w.Write(buf.Bytes())
}
