package wms

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

// Fragment is the JSON object found inside a response body.
type Fragment map[string]any

var (
	statusKeys    = []string{"ask", "status", "Ask", "Status"}
	codeKeys      = []string{"errCode", "code", "error_code"}
	messageKeys   = []string{"message", "Message", "msg", "errMessage", "error", "Error"}
	orderCodeKeys = []string{"order_code", "orderCode", "OrderCode"}

	affirmativeTokens = map[string]bool{
		"success": true,
		"succeed": true,
		"ok":      true,
		"true":    true,
		"1":       true,
	}

	skuNotFoundMarkers = []string{"SKU不存在", "产品不存在", "sku not exist"}
	missingPhrases     = []string{"does not exist", "not exist", "not found"}
	itemNouns          = []string{"sku", "product"}

	// successMarker only matches the status field itself, so prose such as
	// "unsuccessful" or "not successful" never counts.
	successMarker = regexp.MustCompile(`(?i)"ask"\s*:\s*"success"|<ask>\s*success\s*</ask>`)
)

// DecodeResponse extracts the JSON object spanning the first "{" to the
// last "}" of body after HTML entities are unescaped. The service wraps
// its JSON in a SOAP response, sometimes entity-encoded.
func DecodeResponse(body string) (Fragment, bool) {
	text := html.UnescapeString(body)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var f Fragment
	if err := json.Unmarshal([]byte(text[start:end+1]), &f); err != nil {
		return nil, false
	}
	return f, true
}

// Classify decides the outcome of a 2xx response body. A SOAP Fault wins
// over anything else in the body.
func Classify(body string) domainwms.Classification {
	if fault, ok := parseFault(body); ok {
		return domainwms.FailureClassification(valueobject.FailureClassFault, fault.Message())
	}
	if f, ok := DecodeResponse(body); ok {
		return classifyFragment(f, body)
	}
	if successMarker.MatchString(html.UnescapeString(body)) {
		return domainwms.SuccessClassification("", "")
	}
	return domainwms.UnknownClassification("unrecognized response")
}

func classifyFragment(f Fragment, body string) domainwms.Classification {
	message := f.message()
	if f.affirmative() {
		return domainwms.SuccessClassification(message, f.orderCode())
	}
	if hasSKUMarker(body) || isSKUNotFound(message) {
		return domainwms.FailureClassification(valueobject.FailureClassSKUNotFound, message)
	}
	if message == "" {
		message = "order rejected"
	}
	return domainwms.FailureClassification(valueobject.FailureClassRejected, message)
}

func (f Fragment) affirmative() bool {
	for _, k := range statusKeys {
		if v, ok := f[k]; ok && affirmativeTokens[strings.ToLower(scalarString(v))] {
			return true
		}
	}
	for _, k := range codeKeys {
		if v, ok := f[k]; ok && scalarString(v) == "0" {
			return true
		}
	}
	return false
}

func (f Fragment) message() string {
	for _, k := range messageKeys {
		if s := describe(f[k]); s != "" {
			return s
		}
	}
	return ""
}

func (f Fragment) orderCode() string {
	for _, k := range orderCodeKeys {
		if s := scalarString(f[k]); s != "" {
			return s
		}
	}
	if data, ok := f["data"].(map[string]any); ok {
		return Fragment(data).orderCode()
	}
	return ""
}

// isSKUNotFound recognizes the warehouse's "unknown item" rejection. A
// generic "does not exist" only counts when the message names a SKU or
// product; "warehouse_code NJX does not exist" is a plain rejection.
func isSKUNotFound(message string) bool {
	if hasSKUMarker(message) {
		return true
	}
	lower := strings.ToLower(message)
	return containsAny(lower, missingPhrases) && containsAny(lower, itemNouns)
}

// hasSKUMarker looks for the explicit item-missing phrases anywhere in text.
func hasSKUMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range skuNotFoundMarkers {
		if strings.Contains(text, m) || strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// scalarString renders JSON scalars; objects and arrays yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}

// describe flattens error payloads such as [{"errCode":..,"errMessage":..}].
func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := describe(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return Fragment(t).message()
	default:
		return scalarString(t)
	}
}

// Fault is a SOAP 1.1 fault.
type Fault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

// Message formats the fault for results and logs.
func (f Fault) Message() string {
	switch {
	case f.Code == "":
		return f.Reason
	case f.Reason == "":
		return f.Code
	}
	return f.Code + ": " + f.Reason
}

type faultEnvelope struct {
	Body struct {
		Fault *Fault `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

func parseFault(body string) (Fault, bool) {
	var env faultEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil || env.Body.Fault == nil {
		return Fault{}, false
	}
	return *env.Body.Fault, true
}
