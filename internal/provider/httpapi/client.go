package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/voulezvous/translation-ledger/internal/provider"
)

// Client is a machine-translation provider backed by an HTTP service that
// accepts {source_language, target_language, text} and answers with
// {translated_text, confidence}.
type Client struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    resty.New().SetTimeout(timeout),
	}
}

func (c *Client) Name() string { return "httpapi" }

func (c *Client) Translate(ctx context.Context, q provider.Query) (provider.Result, error) {
	var resp struct {
		TranslatedText string  `json:"translated_text"`
		Confidence     float64 `json:"confidence"`
	}

	r := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(q).
		SetResult(&resp)
	if c.apiKey != "" {
		r.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	rr, err := r.Post(c.baseURL + "/v1/translate")
	if err != nil {
		return provider.Result{}, err
	}
	if rr.IsError() {
		return provider.Result{}, fmt.Errorf("translation backend: %s; body: %s", rr.Status(), rr.String())
	}
	if strings.TrimSpace(resp.TranslatedText) == "" {
		return provider.Result{}, fmt.Errorf("translation backend returned empty output")
	}

	return provider.Result{TranslatedText: resp.TranslatedText, Confidence: resp.Confidence}, nil
}
