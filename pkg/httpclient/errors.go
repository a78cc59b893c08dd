package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
)

// downstreamError mirrors the httputil error envelope.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and maps it
// to an AppError, keeping the downstream code and message when the body uses
// the standard error envelope.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	var de downstreamError
	if json.Unmarshal(body, &de) != nil || de.Error == nil {
		return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, string(body))
	}

	msg := fmt.Sprintf("%s: %s", service, de.Error.Message)
	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return apperrors.NotFound(service, de.Error.Message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(msg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, de.Error.Code, de.Error.Message)
	default:
		return &apperrors.AppError{Code: de.Error.Code, Message: msg, Status: status}
	}
}
