// Package fetcher loads the monitored page and flattens it to the text a
// visitor would see. The default implementation is a plain HTTP client
// dressed up as a browser; a javascript-executing renderer can be swapped
// in behind the same interface without touching the checker.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"ticketwatch-backend/internal/checker"
	"ticketwatch-backend/lib/htmlutil"
	"ticketwatch-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type PageRenderer struct {
	http *resty.Client
}

type Options struct {
	// sent with every request so the ticket site sees an in-site visit
	Referer string
	// defaults to 30s, bounds the whole fetch including redirects
	Timeout time.Duration
}

func NewPageRenderer(opts Options) (*PageRenderer, error) {
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browserUserAgent)
	if opts.Referer != "" {
		client.SetHeader("referer", opts.Referer)
	}
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "ticketwatch.fetcher")

	return &PageRenderer{http: client}, nil
}

// Render fetches url and returns its visible text. Any transport error,
// timeout or non-200 status comes back as a *checker.FetchError; the
// caller aborts the run and leaves retrying to the next scheduled
// invocation.
func (r *PageRenderer) Render(ctx context.Context, url string) (string, error) {
	res, err := r.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &checker.FetchError{URL: url, Err: err}
	}
	if res.StatusCode() != 200 {
		return "", &checker.FetchError{
			URL: url,
			Err: fmt.Errorf("unexpected status %d", res.StatusCode()),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return "", &checker.FetchError{URL: url, Err: err}
	}

	return htmlutil.VisibleText(doc), nil
}
