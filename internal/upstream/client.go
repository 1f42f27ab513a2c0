// Package upstream talks to the external SMS-number-lookup API.
//
// Every network, status or decoding failure is folded into a structured
// {success:false, error} value; errors never propagate past this boundary
// except for the deliberate FetchNumber pass-through.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Upstream paths, fixed by the external service.
const (
	loginPath      = "/api/login"
	fetchNumPath   = "/api/sms/getnum"
	accessListPath = "/api/source-idea?action=get_access_list"
	balancePath    = "/api/user/summary/29"
)

// Gateway is the capability interface handlers and the profile registry use
// to reach the external API, so call policy can change without touching callers.
type Gateway interface {
	// Login exchanges a profile's auth token for a session.
	Login(ctx context.Context, authToken string) LoginReply
	// FetchNumber relays a number request and returns the raw response.
	FetchNumber(ctx context.Context, cfg RequestConfig) (*RawResponse, error)
	// AccessList returns the 10 most recent working test numbers.
	AccessList(ctx context.Context, cfg CallConfig) AccessListResult
	// Balance returns today's and the summed account balance.
	Balance(ctx context.Context, cfg CallConfig) BalanceResult
}

// RequestConfig fully describes an outbound number-fetch request. It has the
// same shape as the current_config configuration entry.
type RequestConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Cookies map[string]string `json:"cookies"`
	Data    map[string]any    `json:"data"`
}

// CallConfig carries the header/cookie template for profile-backed calls.
type CallConfig struct {
	Headers map[string]string `json:"headers"`
	Cookies map[string]string `json:"cookies,omitempty"`
}

// RawResponse is an upstream response relayed verbatim.
type RawResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// LoginData is the payload section of a successful upstream login.
type LoginData struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	AuthToken      string `json:"authToken"`
	SessionExpires string `json:"sessionExpires"`
}

// LoginReply is the structured outcome of a login attempt.
type LoginReply struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    LoginData `json:"data,omitempty"`
}

// AccessNumber is one working test number from the access list.
type AccessNumber struct {
	TestNumber string `json:"test_number"`
	Comment    string `json:"comment"`
	Datetime   string `json:"datetime"`
	Rate       string `json:"rate"`
	Currency   string `json:"currency"`
}

// AccessListResult is the normalized access-list response.
type AccessListResult struct {
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	WorkingNumbers []AccessNumber `json:"working_numbers,omitempty"`
	TotalResults   int            `json:"total_results,omitempty"`
}

// BalanceResult is the normalized balance summary.
type BalanceResult struct {
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
	TodayBalance float64 `json:"today_balance,omitempty"`
	TodayOTP     float64 `json:"today_otp,omitempty"`
	TodayDate    string  `json:"today_date,omitempty"`
	TotalBalance float64 `json:"total_balance,omitempty"`
}

// Client is the HTTP implementation of Gateway. Calls are synchronous with a
// fixed timeout and are never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient constructs a client for the given upstream base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func applyHeaders(req *http.Request, headers, cookies map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
}

// Login posts the auth token with the fixed browser template and interprets
// the documented success shape; everything else is a structured failure.
func (c *Client) Login(ctx context.Context, authToken string) LoginReply {
	body, err := json.Marshal(map[string]string{"authToken": authToken})
	if err != nil {
		return LoginReply{Message: fmt.Sprintf("login error: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return LoginReply{Message: fmt.Sprintf("login error: %v", err)}
	}
	applyHeaders(req, LoginHeaders(c.baseURL), BrowserCookies())

	resp, err := c.http.Do(req)
	if err != nil {
		return LoginReply{Message: fmt.Sprintf("login error: %v", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return LoginReply{Message: fmt.Sprintf("HTTP Error %d", resp.StatusCode)}
	}

	var envelope struct {
		Code    int       `json:"code"`
		Message string    `json:"message"`
		Data    LoginData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return LoginReply{Message: fmt.Sprintf("invalid JSON response: %v", err)}
	}
	if envelope.Code != 200 || envelope.Message != "Login successful" {
		msg := envelope.Message
		if msg == "" {
			msg = "Login failed"
		}
		return LoginReply{Message: msg}
	}
	return LoginReply{Success: true, Message: envelope.Message, Data: envelope.Data}
}

// FetchNumber relays a number request. The response is returned unmodified;
// inspecting or retrying it is deliberately out of scope.
func (c *Client) FetchNumber(ctx context.Context, cfg RequestConfig) (*RawResponse, error) {
	url := cfg.URL
	if url == "" {
		url = c.baseURL + fetchNumPath
	}
	body, err := json.Marshal(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("fetch number: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fetch number: %w", err)
	}
	applyHeaders(req, cfg.Headers, cfg.Cookies)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch number: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch number: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return &RawResponse{Status: resp.StatusCode, ContentType: ct, Body: raw}, nil
}

// accessListEpoch sorts unparseable datetimes behind every real one.
var accessListEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// AccessList posts the listing query and normalizes the result: sorted by
// Datetime descending, blank test numbers dropped, truncated to the 10 latest.
func (c *Client) AccessList(ctx context.Context, cfg CallConfig) AccessListResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+accessListPath,
		strings.NewReader("prefix=&source=&keyword=chatgpt"))
	if err != nil {
		return AccessListResult{Error: err.Error()}
	}
	headers := mergeHeaders(cfg.Headers, map[string]string{
		"accept":           "application/json, text/javascript, */*; q=0.01",
		"content-type":     "application/x-www-form-urlencoded; charset=UTF-8",
		"referer":          c.baseURL + "/source-idea",
		"x-requested-with": "XMLHttpRequest",
	})
	applyHeaders(req, headers, cfg.Cookies)

	resp, err := c.http.Do(req)
	if err != nil {
		return AccessListResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AccessListResult{Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var envelope struct {
		Success bool `json:"success"`
		Results []struct {
			TestNumber string `json:"Test number"`
			Comment    string `json:"Comment"`
			Datetime   string `json:"Datetime"`
			Rate       string `json:"Rate"`
			Currency   string `json:"Currency"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return AccessListResult{Error: "Invalid response format"}
	}
	if !envelope.Success || envelope.Results == nil {
		return AccessListResult{Error: "Invalid response format"}
	}

	results := envelope.Results
	sort.SliceStable(results, func(i, j int) bool {
		return rowTime(results[i].Datetime).After(rowTime(results[j].Datetime))
	})

	working := make([]AccessNumber, 0, len(results))
	for _, row := range results {
		n := strings.TrimSpace(row.TestNumber)
		if n == "" {
			continue
		}
		working = append(working, AccessNumber{
			TestNumber: n,
			Comment:    row.Comment,
			Datetime:   row.Datetime,
			Rate:       row.Rate,
			Currency:   row.Currency,
		})
	}
	if len(working) > 10 {
		working = working[:10]
	}
	return AccessListResult{
		Success:        true,
		WorkingNumbers: working,
		TotalResults:   len(envelope.Results),
	}
}

func rowTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return accessListEpoch
	}
	return t
}

// Balance fetches the account summary. A non-empty array becomes today's
// figures plus the summed total rounded to 3 decimal places; anything else
// is a soft failure.
func (c *Client) Balance(ctx context.Context, cfg CallConfig) BalanceResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+balancePath, nil)
	if err != nil {
		return BalanceResult{Error: err.Error()}
	}
	headers := mergeHeaders(cfg.Headers, map[string]string{
		"referer":  c.baseURL + "/summary",
		"userrate": "0.007",
	})
	applyHeaders(req, headers, cfg.Cookies)

	resp, err := c.http.Do(req)
	if err != nil {
		return BalanceResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BalanceResult{Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var rows []struct {
		Amount float64 `json:"amount"`
		OTP    float64 `json:"otp"`
		Date   string  `json:"date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil || len(rows) == 0 {
		return BalanceResult{Error: "No balance data available"}
	}

	var total float64
	for _, row := range rows {
		total += row.Amount
	}
	return BalanceResult{
		Success:      true,
		TodayBalance: rows[0].Amount,
		TodayOTP:     rows[0].OTP,
		TodayDate:    rows[0].Date,
		TotalBalance: math.Round(total*1000) / 1000,
	}
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// ParseSessionExpires parses the two session-expiry layouts the upstream is
// known to emit. Unparseable values are dropped by the caller, not treated
// as errors.
func ParseSessionExpires(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", strings.Replace(s, " ", "T", 1)); err == nil {
		return t, true
	}
	return time.Time{}, false
}
