package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classpilot/classpilot-api/internal/feedback"
	"github.com/classpilot/classpilot-api/internal/grading"
	"github.com/classpilot/classpilot-api/internal/report"
)

// GET /forms/{formID}/grades
func GetGradesHandler(col *grading.Collector, synth *feedback.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := strings.TrimSpace(chi.URLParam(r, "formID"))
		if formID == "" {
			http.Error(w, "formID required", http.StatusBadRequest)
			return
		}
		g, err := col.Collect(r.Context(), formID)
		if err != nil {
			http.Error(w, "collect grades: "+err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(report.Build(r.Context(), g, synth))
	}
}

// GET /forms/{formID}/grades.csv
func GetGradesCSVHandler(col *grading.Collector, synth *feedback.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := strings.TrimSpace(chi.URLParam(r, "formID"))
		if formID == "" {
			http.Error(w, "formID required", http.StatusBadRequest)
			return
		}
		g, err := col.Collect(r.Context(), formID)
		if err != nil {
			http.Error(w, "collect grades: "+err.Error(), http.StatusBadGateway)
			return
		}
		rep := report.Build(r.Context(), g, synth)

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "grades-"+formID+".csv"))
		if err := rep.WriteCSV(w); err != nil {
			// Headers and possibly rows are already out; appending an
			// error body would corrupt the CSV. Log and cut the stream.
			log.Printf("grades csv for form %s: %v", formID, err)
		}
	}
}
