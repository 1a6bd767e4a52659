package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/thedevsaddam/govalidator"

	"github.com/medsum/medsum/relay"
)

// pageData feeds templates/index.html.
type pageData struct {
	Diagnosis   string
	Medicines   string
	Warning     string
	Success     bool
	Explanation template.HTML
	Error       string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, pageData{Error: "could not read form: " + err.Error()})
		return
	}

	req := relay.Request{
		Diagnosis: r.PostForm.Get("diagnosis"),
		Medicines: r.PostForm.Get("medicines"),
	}
	data := pageData{Diagnosis: req.Diagnosis, Medicines: req.Medicines}

	res, err := s.current().Explain(r.Context(), req)
	switch {
	case err == nil:
		data.Success = true
		data.Explanation = renderMarkdown(res.Content)
		s.render(w, r, http.StatusOK, data)
	case relay.KindOf(err) == relay.KindValidation:
		data.Warning = MissingFieldsWarning
		s.render(w, r, http.StatusUnprocessableEntity, data)
	default:
		data.Error = err.Error()
		s.render(w, r, statusFor(err), data)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering page", "request_id", RequestID(r.Context()), "error", err)
	}
}

type explainPayload struct {
	Diagnosis string `json:"diagnosis"`
	Medicines string `json:"medicines"`
}

type explainResponse struct {
	Explanation      string `json:"explanation"`
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

func (s *Server) handleAPIExplain(w http.ResponseWriter, r *http.Request) {
	var payload explainPayload
	rules := govalidator.MapData{
		"diagnosis": []string{"required"},
		"medicines": []string{"required"},
	}
	opts := govalidator.Options{
		Request: r,
		Data:    &payload,
		Rules:   rules,
	}
	if e := govalidator.New(opts).ValidateJSON(); len(e) != 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"validationError": e})
		return
	}

	res, err := s.current().Explain(r.Context(), relay.Request{
		Diagnosis: payload.Diagnosis,
		Medicines: payload.Medicines,
	})
	if err != nil {
		var vErr *relay.ValidationError
		if errors.As(err, &vErr) {
			fields := map[string][]string{}
			for _, f := range vErr.Fields {
				fields[f] = []string{"The " + f + " field is required"}
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"validationError": fields})
			return
		}
		writeJSON(w, statusFor(err), map[string]string{
			"error": err.Error(),
			"kind":  string(relay.KindOf(err)),
		})
		return
	}

	writeJSON(w, http.StatusOK, explainResponse{
		Explanation:      res.Content,
		Model:            res.Model,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
	})
}

// statusFor maps relay failures onto gateway-style HTTP status codes.
func statusFor(err error) int {
	switch relay.KindOf(err) {
	case relay.KindValidation:
		return http.StatusBadRequest
	case relay.KindTimeout:
		return http.StatusGatewayTimeout
	case relay.KindStatus, relay.KindTransport, relay.KindResponseShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
