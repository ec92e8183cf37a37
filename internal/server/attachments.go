// internal/server/attachments.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"nutrition-log/internal/models"
	"nutrition-log/internal/render"
	"nutrition-log/internal/tracker"
)

const (
	exportPath = "/v1/export.csv"
	chartPath  = "/v1/chart.png"
)

func (s *NutritionLogServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := s.attachmentQuery(w, r, models.KindExport, models.PeriodAll)
	if !ok {
		return
	}

	body, err := render.CSV(result.Table)
	if err != nil {
		s.writeDomainError(w, err, r.URL.Query().Get("user_id"))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meals-%s.csv"`, result.Period))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *NutritionLogServer) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	result, ok := s.attachmentQuery(w, r, models.KindChart, models.PeriodWeek)
	if !ok {
		return
	}

	body, err := render.ChartPNG(result.Chart)
	if err != nil {
		s.writeDomainError(w, err, r.URL.Query().Get("user_id"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// attachmentQuery parses user_id and period and runs the query. On failure
// the response is already written.
func (s *NutritionLogServer) attachmentQuery(w http.ResponseWriter, r *http.Request, kind models.QueryKind, fallback models.Period) (*tracker.Result, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return nil, false
	}

	userID := r.URL.Query().Get("user_id")
	period := fallback
	if token := r.URL.Query().Get("period"); token != "" {
		var err error
		if period, err = models.ParsePeriod(token); err != nil {
			s.writeDomainError(w, err, userID)
			return nil, false
		}
	}

	result, err := s.tracker.Query(r.Context(), userID, kind, period)
	if err != nil {
		s.writeDomainError(w, err, userID)
		return nil, false
	}
	return result, true
}

func (s *NutritionLogServer) writeDomainError(w http.ResponseWriter, err error, userID string) {
	s.logFailure(err, userID)
	kind := models.KindOf(err)
	writeError(w, statusFor(kind), string(kind), render.UserMessage(err))
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidInput, models.KindInvalidPeriod:
		return http.StatusBadRequest
	case models.KindNotFound, models.KindNoData:
		return http.StatusNotFound
	case models.KindProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
