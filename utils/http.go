package utils

import (
	"encoding/json"
	"net/http"

	"github.com/outreachworks/crm-bridge/crm"
)

// UnexpectedErrorTitle is the only message callers see for failures the
// pipelines did not convert into a structured outcome
const UnexpectedErrorTitle = "An unexpected error has occurred."

// ErrorsBody is the error envelope returned by every API endpoint
type ErrorsBody struct {
	Errors []crm.ErrorItem `json:"errors"`
}

// DataBody is the success envelope returned by every API endpoint
type DataBody struct {
	Data any `json:"data"`
}

// Errors wraps error items in the response envelope
func Errors(items ...crm.ErrorItem) ErrorsBody {
	return ErrorsBody{Errors: items}
}

// TitleErrors wraps plain titles in the response envelope
func TitleErrors(titles ...string) ErrorsBody {
	items := make([]crm.ErrorItem, 0, len(titles))
	for _, title := range titles {
		items = append(items, crm.TitleItem(title))
	}
	return ErrorsBody{Errors: items}
}

// Data wraps a value in the success envelope
func Data(v any) DataBody {
	return DataBody{Data: v}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteErrors writes an error envelope with the given status code
func WriteErrors(w http.ResponseWriter, status int, items ...crm.ErrorItem) {
	WriteJSON(w, status, Errors(items...))
}

// WriteTitleError writes a single-title error envelope
func WriteTitleError(w http.ResponseWriter, status int, title string) {
	WriteJSON(w, status, TitleErrors(title))
}
