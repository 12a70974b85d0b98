package common

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIResponse envelope of the marketplace and chat endpoints
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta describes a list result
type Meta struct {
	Total    int64  `json:"total,omitempty"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

// ErrorInfo is the "error" member of a failed response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageBody flat {message} body used by the auth and product endpoints
type MessageBody struct {
	Message string `json:"message"`
}

// SuccessResponse writes 200 with data wrapped in the envelope
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{Data: data, Meta: meta})
}

// ErrorResponse writes {"error":{...}}. The cause is only exposed in debug mode.
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	info := &ErrorInfo{Code: ErrorCode(status), Message: message}
	if err != nil && gin.Mode() == gin.DebugMode {
		info.Details = err.Error()
	}
	c.JSON(status, APIResponse{Error: info})
}

// AlertResponse is a 400 the client shows as an alert dialog (title + message)
func AlertResponse(c *gin.Context, title, message string) {
	c.JSON(http.StatusBadRequest, APIResponse{Error: &ErrorInfo{
		Code:    ErrorCode(http.StatusBadRequest),
		Title:   title,
		Message: message,
	}})
}

// MessageResponse returns the flat {message} body
func MessageResponse(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

// ErrorCode turns a status into its upper snake case name: 429 -> TOO_MANY_REQUESTS
func ErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
