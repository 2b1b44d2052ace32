package cli

import (
	"encoding/json"
	"os"
	"strings"
)

// jsonOutput is bound to --json.
var jsonOutput bool

// Response is the envelope every --json command prints.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is a failure with a stable code.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem, such as a skipped file.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Meta carries counts and timings.
type Meta struct {
	Count        int   `json:"count,omitempty"`
	SearchTimeMs int64 `json:"search_time_ms,omitempty"`
}

func isJSONOutput() bool {
	return jsonOutput
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data interface{}, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Meta: meta})
}

func outputSuccessWithWarnings(data interface{}, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

// commandError is what a failing command returns in text mode. Cobra prints
// Error(), so the suggestion and details are rendered below the message.
type commandError struct {
	info ErrorInfo
	err  error
}

func (e *commandError) Error() string {
	var b strings.Builder
	b.WriteString(e.info.Message)
	if lines, ok := e.info.Details.([]string); ok {
		for _, l := range lines {
			b.WriteString("\n  ")
			b.WriteString(l)
		}
	}
	if e.info.Suggestion != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.info.Suggestion)
	}
	return b.String()
}

func (e *commandError) Unwrap() error { return e.err }

// report prints info as the JSON envelope and returns nil in JSON mode, so
// cobra does not print it again. In text mode it returns the failure.
func report(info ErrorInfo, err error) error {
	if jsonOutput {
		outputJSON(Response{OK: false, Error: &info})
		return nil
	}
	return &commandError{info: info, err: err}
}

// handleError reports err under code.
func handleError(code string, err error, suggestion string) error {
	return report(ErrorInfo{Code: code, Message: err.Error(), Suggestion: suggestion}, err)
}

// handleSearchError reports err with the code and suggestion derived from it.
func handleSearchError(err error) error {
	return handleError(errorCode(err), err, suggestionFor(err))
}

// handleErrorMsg reports a failure that has no underlying error.
func handleErrorMsg(code, message, suggestion string) error {
	return report(ErrorInfo{Code: code, Message: message, Suggestion: suggestion}, nil)
}

// handleErrorWithDetails reports a failure with structured details.
func handleErrorWithDetails(code, message, suggestion string, details interface{}) error {
	return report(ErrorInfo{Code: code, Message: message, Details: details, Suggestion: suggestion}, nil)
}
