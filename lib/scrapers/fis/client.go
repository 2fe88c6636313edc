package fis

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"fisski-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/fis")

var ErrNotFound = fmt.Errorf("competition not found")

const DefaultBaseUrl = "https://www.fis-ski.com"

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	season  string
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to "2025"
	SeasonCode string
	// outbound request budget, defaults to 4 req/s with a burst of 8.
	// event detail pages fan out into one results request per race so
	// the limiter is what keeps that fan-out polite.
	RequestsPerSecond float64
	Burst             int
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SeasonCode == "" {
		opts.SeasonCode = "2025"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 4
	}
	if opts.Burst <= 0 {
		opts.Burst = 8
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(time.Second)
	client.SetRetryMaxWaitTime(time.Second * 3)

	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/fis/http")

	return &Client{
		http:    client,
		limiter: limiter,
		season:  opts.SeasonCode,
	}, nil
}

// document fetches a page and hands it to goquery.
func (c *Client) document(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}
