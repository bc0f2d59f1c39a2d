/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: html_source.go
Description: Source implementation for HTML tables. Pages are fetched either with a plain
HTTP client or, for script-rendered pages, through a headless Chrome session driven by
chromedp. The selected table is parsed with goquery; its header row names the fields.
*/

package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/kleascm/ontoforge/pkg/records"
)

// Fetcher returns the HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher downloads pages with net/http
type HTTPFetcher struct {
	Client  *http.Client
	Headers map[string]string
}

// Fetch performs a GET request and returns the body
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	return string(data), nil
}

// BrowserFetcher renders pages in headless Chrome and returns the resulting DOM
type BrowserFetcher struct {
	Headers      map[string]string
	WaitSelector string // element to wait for before reading the DOM
	Timeout      time.Duration
}

// Fetch navigates to the page and returns the outer HTML of the document
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, f.Timeout)
		defer cancel()
	}

	actions := []chromedp.Action{network.Enable()}
	if len(f.Headers) > 0 {
		hdrs := make(network.Headers, len(f.Headers))
		for k, v := range f.Headers {
			hdrs[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(hdrs))
	}
	actions = append(actions, chromedp.Navigate(url))
	if f.WaitSelector != "" {
		actions = append(actions, chromedp.WaitReady(f.WaitSelector, chromedp.ByQuery))
	}

	var dom string
	actions = append(actions, chromedp.OuterHTML("html", &dom, chromedp.ByQuery))
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("browser fetch of %s failed: %w", url, err)
	}
	return dom, nil
}

// HTMLTableSource reads one table of a page
type HTMLTableSource struct {
	NameStr        string
	DescriptionStr string
	URL            string
	Selector       string // CSS selector of the table; defaults to "table"
	Index          int    // which match of Selector to read
	Fetcher        Fetcher
}

// NewHTMLTableSource creates a new HTMLTableSource
func NewHTMLTableSource(name, url, selector string, fetcher Fetcher) *HTMLTableSource {
	return &HTMLTableSource{
		NameStr:        name,
		DescriptionStr: fmt.Sprintf("Records from HTML table at %s", url),
		URL:            url,
		Selector:       selector,
		Fetcher:        fetcher,
	}
}

func (hs *HTMLTableSource) Name() string        { return hs.NameStr }
func (hs *HTMLTableSource) Description() string { return hs.DescriptionStr }

// FetchRecords fetches the page and converts the table into records
func (hs *HTMLTableSource) FetchRecords(ctx context.Context) (records.Dataset, error) {
	fetcher := hs.Fetcher
	if fetcher == nil {
		fetcher = &HTTPFetcher{}
	}
	page, err := fetcher.Fetch(ctx, hs.URL)
	if err != nil {
		return nil, err
	}
	return ParseHTMLTable(page, hs.Selector, hs.Index)
}

// ParseHTMLTable extracts the index-th table matching selector as records
func ParseHTMLTable(page, selector string, index int) (records.Dataset, error) {
	if selector == "" {
		selector = "table"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find(selector).Eq(index)
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table matches %q at index %d", selector, index)
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rowsToDataset(rows)
}
