package opensubtitles

import (
	"bytes"
	"cmp"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL     = "https://api.opensubtitles.com/api/v1"
	defaultUserAgent   = "reelscript v1.0"
	defaultHTTPTimeout = 45 * time.Second
)

// Config describes the OpenSubtitles client configuration.
type Config struct {
	APIKey     string
	UserAgent  string
	Username   string
	Password   string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the OpenSubtitles REST API.
type Client struct {
	apiKey    string
	userAgent string
	username  string
	password  string
	token     string
	baseURL   *url.URL
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("opensubtitles: api key is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:    apiKey,
		userAgent: userAgent,
		username:  strings.TrimSpace(cfg.Username),
		password:  cfg.Password,
		baseURL:   baseURL,
		http:      client,
	}, nil
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opensubtitles: %s failed (%s): %s", e.Op, e.Status, e.Body)
}

// SearchRequest describes subtitle discovery filters for a single language.
type SearchRequest struct {
	IMDBID    string
	Query     string
	Year      int
	Language  string
	MediaType string
}

// Subtitle represents a subtitle candidate returned by OpenSubtitles.
type Subtitle struct {
	ID              string
	FileID          int64
	Language        string
	Release         string
	FeatureTitle    string
	FeatureYear     int
	Downloads       int
	HearingImpaired bool
	AITranslated    bool
}

// DownloadResult captures the downloaded subtitle payload as valid UTF-8.
type DownloadResult struct {
	Data        []byte
	FileName    string
	Language    string
	DownloadURL string
	Remaining   int
}

// Authenticated reports whether Login has produced a bearer token.
func (c *Client) Authenticated() bool {
	return c != nil && c.token != ""
}

// Login exchanges the configured username and password for a bearer token
// attached to every later request.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return errors.New("opensubtitles: username and password are required")
	}
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": c.username, "password": c.password}
	if err := c.call(ctx, "login", http.MethodPost, "login", nil, body, &out); err != nil {
		return err
	}
	token := strings.TrimSpace(out.Token)
	if token == "" {
		return errors.New("opensubtitles: login response missing token")
	}
	c.token = token
	return nil
}

// Search lists subtitle candidates in one language. An IMDb id takes
// precedence over a free-text query. Entries without a language or a file
// are skipped.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Subtitle, error) {
	params := url.Values{}
	switch imdb, query := sanitizeIMDBID(req.IMDBID), strings.TrimSpace(req.Query); {
	case imdb != "":
		params.Set("imdb_id", imdb)
	case query != "":
		params.Set("query", query)
		if req.Year > 0 {
			params.Set("year", strconv.Itoa(req.Year))
		}
	default:
		return nil, errors.New("opensubtitles: imdb id or query is required")
	}
	if lang := strings.ToLower(strings.TrimSpace(req.Language)); lang != "" {
		params.Set("languages", lang)
	}
	params.Set("type", cmp.Or(strings.TrimSpace(req.MediaType), "movie"))

	var raw json.RawMessage
	if err := c.call(ctx, "search", http.MethodGet, "subtitles", params, nil, &raw); err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("opensubtitles: search response is not valid JSON")
	}

	var found []Subtitle
	gjson.GetBytes(raw, "data").ForEach(func(_, entry gjson.Result) bool {
		attrs := entry.Get("attributes")
		lang := strings.ToLower(attrs.Get("language").String())
		fileID := attrs.Get("files.0.file_id").Int()
		if lang == "" || fileID == 0 {
			return true
		}
		found = append(found, Subtitle{
			ID:              entry.Get("id").String(),
			FileID:          fileID,
			Language:        lang,
			Release:         attrs.Get("release").String(),
			FeatureTitle:    attrs.Get("feature_details.title").String(),
			FeatureYear:     int(attrs.Get("feature_details.year").Int()),
			Downloads:       int(attrs.Get("download_count").Int()),
			HearingImpaired: attrs.Get("hearing_impaired").Bool(),
			AITranslated:    attrs.Get("ai_translated").Bool() || attrs.Get("machine_translated").Bool(),
		})
		return true
	})
	return found, nil
}

// Download negotiates a temporary link for fileID and fetches the SRT
// body through it. The payload is passed through DecodePayload.
func (c *Client) Download(ctx context.Context, fileID int64) (DownloadResult, error) {
	if fileID <= 0 {
		return DownloadResult{}, errors.New("opensubtitles: invalid file id")
	}
	var link struct {
		Link      string `json:"link"`
		FileName  string `json:"file_name"`
		Language  string `json:"language"`
		Remaining int    `json:"remaining"`
	}
	body := map[string]any{"file_id": fileID, "sub_format": "srt"}
	if err := c.call(ctx, "download negotiation", http.MethodPost, "download", nil, body, &link); err != nil {
		return DownloadResult{}, err
	}
	if link.Link == "" {
		return DownloadResult{}, errors.New("opensubtitles: download response missing link")
	}
	target, err := c.baseURL.JoinPath("download").Parse(link.Link)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: parse download url: %w", err)
	}

	raw, err := c.fetch(ctx, target.String())
	if err != nil {
		return DownloadResult{}, err
	}
	data, err := DecodePayload(raw)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{
		Data:        data,
		FileName:    link.FileName,
		Language:    link.Language,
		DownloadURL: target.String(),
		Remaining:   link.Remaining,
	}, nil
}

// call sends one authenticated API request. in is JSON-encoded when non-nil
// and a 2xx body is decoded into out.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	var payload io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("opensubtitles: encode %s request: %w", op, err)
		}
		payload = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), payload)
	if err != nil {
		return fmt.Errorf("opensubtitles: build %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opensubtitles: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, op); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("opensubtitles: decode %s response: %w", op, err)
	}
	return nil
}

// fetch downloads a subtitle body from a negotiated link. Links are
// pre-signed, so only the user agent is sent.
func (c *Client) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build link request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: fetch subtitle payload: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "subtitle download"); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: read subtitle data: %w", err)
	}
	return raw, nil
}

// DecodePayload inflates gzip content (detected by the 0x1f 0x8b magic
// bytes), drops a UTF-8 byte order mark and replaces invalid UTF-8.
func DecodePayload(raw []byte) ([]byte, error) {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("opensubtitles: open gzip payload: %w", err)
		}
		defer zr.Close()
		inflated, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("opensubtitles: inflate gzip payload: %w", err)
		}
		raw = inflated
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	return []byte(strings.ToValidUTF8(string(raw), "\uFFFD")), nil
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}

func sanitizeIMDBID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.TrimPrefix(value, "tt")
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return ""
	}
	return value
}
