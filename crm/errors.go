package crm

import "encoding/json"

// ErrorItem is the single error shape surfaced to API callers, regardless of
// which of the CRM's error formats produced it. Items derived from a
// structured upstream body serialize all three fields, explicit nulls
// included, mirroring the upstream contract; locally synthesized items carry
// only the fields that are set.
type ErrorItem struct {
	Code   *string
	Title  *string
	Detail *string

	structured bool
}

// MarshalJSON emits the two item shapes: structured items always carry
// code/title/detail, synthesized items omit unset fields.
func (i ErrorItem) MarshalJSON() ([]byte, error) {
	if i.structured {
		return json.Marshal(struct {
			Code   *string `json:"code"`
			Title  *string `json:"title"`
			Detail *string `json:"detail"`
		}{i.Code, i.Title, i.Detail})
	}
	return json.Marshal(struct {
		Code   *string `json:"code,omitempty"`
		Title  *string `json:"title,omitempty"`
		Detail *string `json:"detail,omitempty"`
	}{i.Code, i.Title, i.Detail})
}

// TitleItem builds an error item carrying only a title
func TitleItem(title string) ErrorItem {
	return ErrorItem{Title: &title}
}

// NormalizeErrors turns a raw upstream error body into a uniform, non-empty
// list of error items. The CRM answers in several shapes:
//
//   - {"code": ..., "validation_errors": ["...", ...]}: one item per entry
//   - {"code": ..., "message": "..."}: one item, message in detail
//   - any other JSON object: one opaque item
//   - not JSON at all: one generic item with only the caller-supplied title
//
// The caller-supplied title is stamped onto every item whose branch did not
// already set a meaningful title, so generic upstream failures still say what
// the app was trying to do.
func NormalizeErrors(body, title string) []ErrorItem {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return []ErrorItem{TitleItem(title)}
	}

	var code *string
	if c, ok := parsed["code"].(string); ok {
		code = &c
	}

	var items []ErrorItem
	switch {
	case hasList(parsed, "validation_errors"):
		for _, entry := range parsed["validation_errors"].([]any) {
			item := ErrorItem{Code: code, structured: true}
			if text, ok := entry.(string); ok {
				item.Title = &text
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			items = append(items, ErrorItem{Code: code, structured: true})
		}
	case parsed["message"] != nil:
		item := ErrorItem{Code: code, structured: true}
		if text, ok := parsed["message"].(string); ok {
			item.Detail = &text
		}
		items = append(items, item)
	default:
		// opaque body: keep it whole in detail
		item := ErrorItem{Code: code, structured: true}
		if raw, err := json.Marshal(parsed); err == nil {
			detail := string(raw)
			item.Detail = &detail
		}
		items = append(items, item)
	}

	if title != "" {
		for i := range items {
			if items[i].Title == nil || *items[i].Title == "" {
				items[i].Title = &title
			}
		}
	}

	return items
}

func hasList(parsed map[string]any, key string) bool {
	_, ok := parsed[key].([]any)
	return ok
}
