// Package eastmoney provides a client for the Eastmoney public endpoints
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "-" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	// null and anything else degrade to zero
	*f = 0
	return nil
}

const (
	DefaultQuoteBaseURL      = "https://push2.eastmoney.com"
	DefaultNoticeBaseURL     = "https://np-anotice-stock.eastmoney.com"
	DefaultF10BaseURL        = "https://emweb.securities.eastmoney.com"
	DefaultDataCenterBaseURL = "https://datacenter.eastmoney.com"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultReferer   = "https://emweb.securities.eastmoney.com/"

	DefaultTimeout      = 10 * time.Second
	DefaultRateLimit    = 10 // requests per second
	DefaultListPageSize = 6000
)

// Client implements the EastmoneyClient interface
type Client struct {
	quoteBaseURL      string
	noticeBaseURL     string
	f10BaseURL        string
	dataCenterBaseURL string
	userAgent         string
	referer           string
	listPageSize      int
	httpClient        *http.Client
	logger            *common.Logger
	limiter           *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithQuoteBaseURL sets the quote (push2) base URL
func WithQuoteBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.quoteBaseURL = baseURL }
}

// WithNoticeBaseURL sets the announcement base URL
func WithNoticeBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.noticeBaseURL = baseURL }
}

// WithF10BaseURL sets the F10 company-detail base URL
func WithF10BaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.f10BaseURL = baseURL }
}

// WithDataCenterBaseURL sets the datacenter base URL
func WithDataCenterBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.dataCenterBaseURL = baseURL }
}

// WithHeaders sets the User-Agent and Referer sent on every request.
// The F10 endpoints reject requests without browser-looking headers.
func WithHeaders(userAgent, referer string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		if referer != "" {
			c.referer = referer
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithListPageSize sets the page size used for the full listing pull
func WithListPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.listPageSize = size
		}
	}
}

// NewClient creates a new Eastmoney client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		quoteBaseURL:      DefaultQuoteBaseURL,
		noticeBaseURL:     DefaultNoticeBaseURL,
		f10BaseURL:        DefaultF10BaseURL,
		dataCenterBaseURL: DefaultDataCenterBaseURL,
		userAgent:         DefaultUserAgent,
		referer:           DefaultReferer,
		listPageSize:      DefaultListPageSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from the eastmoney config section.
// Extra options are applied after the config-derived ones.
func NewClientFromConfig(cfg common.EastmoneyConfig, logger *common.Logger, extra ...ClientOption) *Client {
	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(cfg.GetTimeout()),
		WithHeaders(cfg.UserAgent, cfg.Referer),
	}
	if cfg.QuoteBaseURL != "" {
		opts = append(opts, WithQuoteBaseURL(cfg.QuoteBaseURL))
	}
	if cfg.NoticeBaseURL != "" {
		opts = append(opts, WithNoticeBaseURL(cfg.NoticeBaseURL))
	}
	if cfg.F10BaseURL != "" {
		opts = append(opts, WithF10BaseURL(cfg.F10BaseURL))
	}
	if cfg.DataCenterBaseURL != "" {
		opts = append(opts, WithDataCenterBaseURL(cfg.DataCenterBaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.RateLimit))
	}
	opts = append(opts, extra...)
	return NewClient(opts...)
}

// APIError represents a vendor API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsShanghai reports whether a bare A-share code lists on the Shanghai
// exchange. Codes starting with "6" are Shanghai, everything else is
// Shenzhen. Every endpoint URL derives its market identifier from this.
func IsShanghai(code string) bool {
	return len(code) > 0 && code[0] == '6'
}

// SecID returns the push2 security id ("1.600519" or "0.000001")
func SecID(code string) string {
	if IsShanghai(code) {
		return "1." + code
	}
	return "0." + code
}

// EMCode returns the F10 code form ("SH600519" or "SZ000001")
func EMCode(code string) string {
	if IsShanghai(code) {
		return "SH" + code
	}
	return "SZ" + code
}

// SecuCode returns the datacenter code form ("600519.SH" or "000001.SZ")
func SecuCode(code string) string {
	if IsShanghai(code) {
		return code + ".SH"
	}
	return code + ".SZ"
}

// fetch performs a rate-limited GET and returns the raw body. A non-200
// status comes back as *APIError so callers can degrade instead of fail.
// No retries: a failed call fails once.
func (c *Client) fetch(ctx context.Context, baseURL, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)

	c.logger.Debug().Str("url", baseURL+path).Msg("Eastmoney API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	return body, nil
}

// getJSON fetches and decodes into result
func (c *Client) getJSON(ctx context.Context, baseURL, path string, params url.Values, result interface{}) error {
	body, err := c.fetch(ctx, baseURL, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// listRow is one row of the clist response
type listRow struct {
	Code     string          `json:"f12"`
	Name     string          `json:"f14"`
	Industry json.RawMessage `json:"f100"`
}

// GetStockList retrieves the full symbol universe from the clist endpoint
func (c *Client) GetStockList(ctx context.Context) ([]models.SymbolRecord, error) {
	params := url.Values{}
	params.Set("pn", "1")
	params.Set("pz", strconv.Itoa(c.listPageSize))
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fields", "f12,f14,f100")
	params.Set("fs", "m:0 t:6,m:0 t:80,m:1 t:2,m:1 t:23")

	var resp struct {
		Data struct {
			Diff []listRow `json:"diff"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.quoteBaseURL, "/api/qt/clist/get", params, &resp); err != nil {
		return nil, err
	}

	records := make([]models.SymbolRecord, 0, len(resp.Data.Diff))
	for _, row := range resp.Data.Diff {
		if row.Code == "" {
			continue
		}
		// f100 is usually a string but comes back as "-" or a number for
		// suspended boards; missing industry normalizes to empty string
		industry := decodeIndustry(row.Industry)
		records = append(records, models.NewSymbolRecord(row.Code, row.Name, industry))
	}

	c.logger.Debug().Int("symbols", len(records)).Msg("Eastmoney stock list loaded")
	return records, nil
}

func decodeIndustry(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "-" {
			return ""
		}
		return s
	}
	return ""
}

// GetSnapshot retrieves the valuation snapshot for a code. The vendor has
// shipped two response generations for this endpoint; decoding tries the
// current wrapped shape first and falls back to the legacy flat shape.
// A non-200 status yields an empty snapshot, not an error.
func (c *Client) GetSnapshot(ctx context.Context, code string) (models.Snapshot, error) {
	params := url.Values{}
	params.Set("secid", SecID(code))
	params.Set("fields", "f58,f43,f170,f167,f116,f127,f186,f114,f115,f117")

	body, err := c.fetch(ctx, c.quoteBaseURL, "/api/qt/stock/get", params)
	if err != nil {
		if _, ok := err.(*APIError); ok {
			return models.Snapshot{}, nil
		}
		return nil, err
	}

	return decodeSnapshot(body), nil
}

// decodeSnapshot tries the wrapped {"data":{...}} shape first, then the
// legacy flat shape where field codes sit at the top level.
func decodeSnapshot(body []byte) models.Snapshot {
	var wrapped struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 {
		return models.Snapshot(wrapped.Data)
	}

	var flat map[string]any
	if err := json.Unmarshal(body, &flat); err == nil {
		snap := models.Snapshot{}
		for k, v := range flat {
			if len(k) > 1 && k[0] == 'f' {
				snap[k] = v
			}
		}
		return snap
	}

	return models.Snapshot{}
}

// GetAnnouncements retrieves recent announcements, most recent first.
// A non-200 status yields an empty list, not an error.
func (c *Client) GetAnnouncements(ctx context.Context, code string, pageSize int) ([]models.Announcement, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	params := url.Values{}
	params.Set("sr", "-1")
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("page_index", "1")
	params.Set("stock_list", code)

	var resp struct {
		Data struct {
			List []struct {
				Title      string `json:"title"`
				ArtCode    string `json:"art_code"`
				NoticeDate string `json:"notice_date"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.noticeBaseURL, "/api/security/ann", params, &resp); err != nil {
		if _, ok := err.(*APIError); ok {
			return []models.Announcement{}, nil
		}
		return nil, err
	}

	anns := make([]models.Announcement, 0, len(resp.Data.List))
	for _, item := range resp.Data.List {
		anns = append(anns, models.Announcement{
			Title:      item.Title,
			ArtCode:    item.ArtCode,
			NoticeDate: item.NoticeDate,
		})
	}
	return anns, nil
}

// GetCompanyProfile retrieves the F10 company survey. Returns (nil, nil)
// when the vendor has no survey block for the code.
func (c *Client) GetCompanyProfile(ctx context.Context, code string) (*models.CompanyProfile, error) {
	params := url.Values{}
	params.Set("code", EMCode(code))

	var resp struct {
		Jbzl []map[string]any `json:"jbzl"`
	}
	if err := c.getJSON(ctx, c.f10BaseURL, "/PC_HSF10/CompanySurvey/PageAjax", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Jbzl) == 0 {
		return nil, nil
	}

	row := resp.Jbzl[0]
	profile := &models.CompanyProfile{
		RegName:      strField(row, "ORG_NAME", "SECURITY_NAME_ABBR"),
		Chairman:     strField(row, "CHAIRMAN", "LEGAL_PERSON"),
		MainBusiness: strField(row, "BUSINESS_SCOPE"),
		Introduction: strField(row, "ORG_PROFILE"),
		Province:     strField(row, "PROVINCE"),
		City:         strField(row, "ADDRESS"),
	}
	return profile, nil
}

// strField returns the first non-empty string value among keys
func strField(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// holderRow is one row of the shareholder tables
type holderRow struct {
	HolderName string      `json:"HOLDER_NAME"`
	HoldRatio  flexFloat64 `json:"HOLD_NUM_RATIO"`
	HoldNum    flexFloat64 `json:"HOLD_NUM"`
}

func (r holderRow) toModel() models.HolderRecord {
	return models.HolderRecord{
		HolderName: r.HolderName,
		HoldRatio:  float64(r.HoldRatio),
		HoldAmount: float64(r.HoldNum),
	}
}

// GetShareholders retrieves the top-ten holder and float-holder tables
func (c *Client) GetShareholders(ctx context.Context, code string) ([]models.HolderRecord, []models.HolderRecord, error) {
	params := url.Values{}
	params.Set("code", EMCode(code))

	var resp struct {
		Sdgd   []holderRow `json:"sdgd"`
		Sdltgd []holderRow `json:"sdltgd"`
	}
	if err := c.getJSON(ctx, c.f10BaseURL, "/PC_HSF10/ShareholderResearch/PageAjax", params, &resp); err != nil {
		return nil, nil, err
	}

	holders := make([]models.HolderRecord, 0, len(resp.Sdgd))
	for _, row := range resp.Sdgd {
		holders = append(holders, row.toModel())
	}
	floatHolders := make([]models.HolderRecord, 0, len(resp.Sdltgd))
	for _, row := range resp.Sdltgd {
		floatHolders = append(floatHolders, row.toModel())
	}
	return holders, floatHolders, nil
}

// finaRow is one reporting period from the datacenter main-indicator report
type finaRow struct {
	ReportDateName string      `json:"REPORT_DATE_NAME"`
	ROE            flexFloat64 `json:"ROEJQ"`
	NetProfitYoY   flexFloat64 `json:"PARENTNETPROFITTZ"`
	RevenueYoY     flexFloat64 `json:"TOTALOPERATEREVETZ"`
	BasicEPS       flexFloat64 `json:"EPSJB"`
	Revenue        flexFloat64 `json:"TOTALOPERATEREVE"`
	NetProfit      flexFloat64 `json:"PARENTNETPROFIT"`
}

// GetMainFinancials retrieves the main financial indicators, newest first
func (c *Client) GetMainFinancials(ctx context.Context, code string, periods int) ([]models.FinancialPeriod, error) {
	if periods <= 0 {
		periods = 6
	}
	params := url.Values{}
	params.Set("type", "RPT_F10_FINANCE_MAINFINADATA")
	params.Set("sty", "APP_F10_MAINFINADATA")
	params.Set("quoteColumns", "")
	params.Set("filter", fmt.Sprintf("(SECUCODE=%q)", SecuCode(code)))
	params.Set("p", "1")
	params.Set("ps", strconv.Itoa(periods))
	params.Set("sr", "-1")
	params.Set("st", "REPORT_DATE")

	var resp struct {
		Result struct {
			Data []finaRow `json:"data"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, c.dataCenterBaseURL, "/securities/api/data/get", params, &resp); err != nil {
		return nil, err
	}

	rows := resp.Result.Data
	if len(rows) > periods {
		rows = rows[:periods]
	}
	fina := make([]models.FinancialPeriod, 0, len(rows))
	for _, row := range rows {
		fina = append(fina, models.FinancialPeriod{
			EndDate:      row.ReportDateName,
			ROE:          float64(row.ROE),
			NetProfitYoY: float64(row.NetProfitYoY),
			RevenueYoY:   float64(row.RevenueYoY),
			BasicEPS:     float64(row.BasicEPS),
			Revenue:      float64(row.Revenue),
			NetProfit:    float64(row.NetProfit),
		})
	}
	return fina, nil
}

// Ensure Client implements EastmoneyClient
var _ interfaces.EastmoneyClient = (*Client)(nil)
