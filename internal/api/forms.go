package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xteampro/funnel/internal/models"
)

// ValidationDetail is one entry of a structured 422 body
type ValidationDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// String renders the detail as "loc.path - msg"
func (d ValidationDetail) String() string {
	parts := make([]string, 0, len(d.Loc))
	for _, p := range d.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".") + " - " + d.Msg
}

// JoinDetails renders every detail entry, comma separated
func JoinDetails(details []ValidationDetail) string {
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.String())
	}
	return strings.Join(out, ", ")
}

// ErrorBody is the union of error body shapes the backend produces:
// {"detail": "..."}, {"detail": [{loc, msg}]}, {"errors": {field: msg}},
// {"message": "..."} and {"error": "..."}.
type ErrorBody struct {
	Detail       string
	DetailList   []ValidationDetail
	Errors       map[string]string
	Message      string
	ErrorMessage string
}

// ParseErrorBody decodes a failed response body. Unknown shapes yield a zero ErrorBody.
func ParseErrorBody(data []byte) ErrorBody {
	var raw struct {
		Detail  json.RawMessage   `json:"detail"`
		Errors  map[string]string `json:"errors"`
		Message string            `json:"message"`
		Error   string            `json:"error"`
	}
	var out ErrorBody
	if err := json.Unmarshal(data, &raw); err != nil {
		return out
	}

	out.Errors = raw.Errors
	out.Message = raw.Message
	out.ErrorMessage = raw.Error
	if len(raw.Detail) > 0 {
		if err := json.Unmarshal(raw.Detail, &out.Detail); err != nil {
			_ = json.Unmarshal(raw.Detail, &out.DetailList)
		}
	}
	return out
}

// SubmitContact posts a normalized contact submission
func (c *Client) SubmitContact(ctx context.Context, sub *models.ContactSubmission) (*models.ContactResponse, error) {
	_, data, err := c.doJSON(ctx, http.MethodPost, "/api/contact/contact-submit", sub, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.ContactResponse
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateROI asks the backend for a financial projection
func (c *Client) CalculateROI(ctx context.Context, req *models.ROICalculationRequest) (*models.ROICalculationResponse, error) {
	_, data, err := c.doJSON(ctx, http.MethodPost, "/api/calculator/roi", req, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.ROICalculationResponse
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
