package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/classpilot/classpilot-api/internal/extract"
	"github.com/classpilot/classpilot-api/internal/llm"
)

// uploads are held in memory; 20 MB is generous for lecture PDFs.
const maxUploadBytes = 20 << 20

// readSourceText accepts either a multipart "file" part (PDF) or a JSON
// body with a "text" field. Every document endpoint shares this shape.
func readSourceText(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("parse upload: %w", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing file part: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		if !strings.HasSuffix(strings.ToLower(hdr.Filename), ".pdf") {
			return "", fmt.Errorf("unsupported file type %q, only pdf is accepted", hdr.Filename)
		}
		return extract.Bytes(data)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("bad json: %w", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("text required")
	}
	return req.Text, nil
}

// POST /documents/extract
func ExtractDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := readSourceText(r)
		if err != nil {
			http.Error(w, "extract: "+err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":   text,
			"length": len(text),
		})
	}
}

// POST /documents/summarize
func SummarizeDocumentHandler(model llm.TextModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := readSourceText(r)
		if err != nil {
			http.Error(w, "summarize: "+err.Error(), http.StatusBadRequest)
			return
		}
		prompt := "Summarize the following document in a few short paragraphs for a teacher preparing a lesson:\n\n" +
			clipText(text, 3000)
		summary, err := model.Complete(r.Context(), prompt)
		if err != nil {
			http.Error(w, "summarize: "+err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": summary})
	}
}

// POST /documents/question  { "text": "...", "question": "..." }
func QuestionDocumentHandler(model llm.TextModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text     string `json:"text"`
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Question) == "" {
			http.Error(w, "text and question required", http.StatusBadRequest)
			return
		}
		prompt := fmt.Sprintf("Answer the question using only the document below. If the document does not contain the answer, say so.\n\nQuestion: %s\n\nDocument:\n%s",
			req.Question, clipText(req.Text, 3000))
		answer, err := model.Complete(r.Context(), prompt)
		if err != nil {
			http.Error(w, "question: "+err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": answer})
	}
}

func clipText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
