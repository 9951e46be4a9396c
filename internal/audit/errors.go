package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xteampro/funnel/internal/api"
)

// User-facing submission failure messages
const (
	MsgNetwork    = "Network error: Please check your internet connection and try again."
	MsgValidation = "Validation error: Please check all required fields are filled correctly."
	MsgServer     = "Server error: Please try again later or contact support."
)

// Classify turns a submission failure into the message shown to the user
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}

	var nerr *api.NetworkError
	if errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded) {
		return MsgNetwork
	}

	var herr *api.HTTPError
	if errors.As(err, &herr) {
		body := api.ParseErrorBody(herr.Body)
		switch {
		case herr.StatusCode == http.StatusUnprocessableEntity:
			if len(body.DetailList) > 0 {
				return "Validation error: " + api.JoinDetails(body.DetailList)
			}
			if body.Detail != "" {
				return "Validation error: " + body.Detail
			}
			return MsgValidation
		case herr.StatusCode >= 500:
			return MsgServer
		case body.Detail != "":
			return body.Detail
		case body.Message != "":
			return body.Message
		default:
			return fmt.Sprintf("HTTP %d: %s", herr.StatusCode, herr.StatusText)
		}
	}

	if errors.Is(err, api.ErrUnexpectedResponse) {
		return MsgServer
	}

	return err.Error()
}
