package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"thgletter/internal/letter"
)

// Backend routes.
const (
	PathLogin          = "/login"
	PathFetchParcel    = "/fetch_parcel_ui"
	PathGenerateReport = "/generate_report"
	PathSendEmail      = "/send_email"
)

// LoginResult is the backend's answer to a credential check.
type LoginResult struct {
	Success bool   `json:"success"`
	User    string `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Login checks credentials. A rejected login is a normal result with
// Success false, even when the backend answers it with 401.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	req := map[string]string{"username": username, "password": password}

	res, err := c.Post(ctx, PathLogin, req, RequestOptions{})
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			var lr LoginResult
			if json.Unmarshal(apiErr.body, &lr) == nil && !lr.Success {
				return LoginResult{}, nil
			}
		}
		return LoginResult{}, err
	}
	defer res.Body.Close()

	var lr LoginResult
	if err := json.NewDecoder(res.Body).Decode(&lr); err != nil {
		return LoginResult{}, bodyError(ctx, err, "decode login response")
	}
	return lr, nil
}

// ErrParcelNotFound is returned when the backend answers without a parcel id.
var ErrParcelNotFound = errors.New("Parcel not found.")

// FetchParcel asks the backend to look up the parcel id for an address.
func (c *Client) FetchParcel(ctx context.Context, fullAddress, countyName string) (string, error) {
	req := map[string]string{"full_address": fullAddress, "county_name": countyName}

	res, err := c.Post(ctx, PathFetchParcel, req, RequestOptions{Timeout: c.parcelTimeout})
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var body struct {
		ParcelID string `json:"parcel_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", bodyError(ctx, err, "decode parcel response")
	}
	if strings.TrimSpace(body.ParcelID) == "" {
		return "", ErrParcelNotFound
	}
	return body.ParcelID, nil
}

// ReportRequest carries the agreement fields. Numbers travel as the strings
// the user typed; the backend formats them.
type ReportRequest struct {
	Name                   string `json:"name"`
	Address                string `json:"address"`
	PropertyUnderAppraisal string `json:"property_under_appraisal"`
	ParcelID               string `json:"parcel_id"`
	Fee                    string `json:"fee"`
	DueSigning             string `json:"due_signing"`
	DueCompletion          string `json:"due_completion"`
	ReportDate             string `json:"report_date"`
}

// GenerateReport renders the engagement letter and returns the PDF.
func (c *Client) GenerateReport(ctx context.Context, r ReportRequest) (*letter.Artifact, error) {
	res, err := c.Post(ctx, PathGenerateReport, r, RequestOptions{Timeout: c.reportTimeout})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, bodyError(ctx, err, "read report body")
	}

	return &letter.Artifact{
		FileName:    letter.FileNameFromDisposition(res.Header.Get("Content-Disposition")),
		ContentType: res.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// EmailRequest asks the backend to archive and email a generated letter.
type EmailRequest struct {
	PDFPath       string `json:"pdf_path"`
	CustomerEmail string `json:"customer_email"`
	ClientName    string `json:"client_name"`
	Address       string `json:"address"`
}

// EmailResult reports a completed send. Warning is set when the backend
// archived the letter but could not email it.
type EmailResult struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// SendEmail posts the letter reference and recipient to the backend.
func (c *Client) SendEmail(ctx context.Context, r EmailRequest) (EmailResult, error) {
	res, err := c.Post(ctx, PathSendEmail, r, RequestOptions{})
	if err != nil {
		return EmailResult{}, err
	}
	defer res.Body.Close()

	// the body is informational; any 2xx is a send
	var out EmailResult
	_ = json.NewDecoder(res.Body).Decode(&out)
	out.Success = true
	return out, nil
}
