package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// GenerateRequest asks the model about one uploaded file.
type GenerateRequest struct {
	Prompt          string
	File            File
	Temperature     float64
	MaxOutputTokens int
}

// GenerateResult holds the concatenated text parts of the first candidate.
type GenerateResult struct {
	Text         string
	FinishReason string
	BlockReason  string
}

// EmptyResponseError reports a successful call whose candidate has no text.
type EmptyResponseError struct {
	FinishReason string
	BlockReason  string
	Snippet      string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("gemini generate: empty content (finish_reason=%q, block_reason=%q, response_snippet=%s)",
		e.FinishReason, e.BlockReason, e.Snippet)
}

type generateBody struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Generate runs generateContent with the file followed by the prompt.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return GenerateResult{}, fmt.Errorf("gemini generate: prompt required")
	}
	parts := make([]part, 0, 2)
	if req.File.URI != "" {
		parts = append(parts, part{FileData: &fileData{MIMEType: req.File.MIMEType, FileURI: req.File.URI}})
	}
	parts = append(parts, part{Text: prompt})
	encoded, err := json.Marshal(generateBody{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxOutputTokens},
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("gemini generate: encode body: %w", err)
	}

	var result GenerateResult
	err = c.withRetry(ctx, "generate", func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.endpoint(apiVersion, "models", c.cfg.Model+":generateContent"), bytes.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("gemini generate: new request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		body, _, err := c.do(httpReq, "generate")
		if err != nil {
			return err
		}
		result = parseGenerateResponse(body)
		if result.Text == "" {
			return &EmptyResponseError{
				FinishReason: result.FinishReason,
				BlockReason:  result.BlockReason,
				Snippet:      summarizePayloadSnippet(string(body)),
			}
		}
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

func parseGenerateResponse(body []byte) GenerateResult {
	parsed := gjson.ParseBytes(body)
	var text strings.Builder
	for _, t := range parsed.Get("candidates.0.content.parts.#.text").Array() {
		text.WriteString(t.String())
	}
	return GenerateResult{
		Text:         strings.TrimSpace(text.String()),
		FinishReason: parsed.Get("candidates.0.finishReason").String(),
		BlockReason:  parsed.Get("promptFeedback.blockReason").String(),
	}
}
