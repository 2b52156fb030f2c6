package server

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/matzehuels/sketchmap/pkg/errors"
)

var langMatcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// requestLanguage picks the catalog language for r: the "lang" query
// parameter if set, else the best Accept-Language match.
func requestLanguage(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" && errors.ValidateLanguage(l) == nil {
		return strings.ToLower(l)
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return errors.LangEnglish
	}
	tag, _, _ := langMatcher.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch {
	case code == errors.ErrCodeEmptyFeatureSet, code == errors.ErrCodeNoActiveTool:
		return http.StatusConflict
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	body := errorBody{Code: code, Message: errors.UserMessageIn(err, requestLanguage(r))}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if code == "" {
			body = errorBody{Code: errors.ErrCodeInternal, Message: "internal error"}
		}
	}
	writeJSON(w, status, body)
}
