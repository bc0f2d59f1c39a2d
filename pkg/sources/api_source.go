/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: api_source.go
Description: Source implementation for paginated REST APIs such as api.mindat.org. Pages are
followed through their "next" link and each page's "results" array is appended. Requests
carry an "Authorization: Token <key>" header when a key is set. The collected records are
cached on disk as {"results": [...]} and the cache is reused on later runs.
*/

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/sirupsen/logrus"
)

// APISource fetches records from a paginated JSON API
type APISource struct {
	NameStr        string
	DescriptionStr string
	URL            string
	Params         map[string]string
	Headers        map[string]string
	Token          string
	CachePath      string // empty disables the cache
	MaxPages       int    // 0 means follow every page
	Timeout        time.Duration
	Client         *http.Client
	Logger         logrus.FieldLogger
}

// NewAPISource creates a new APISource
func NewAPISource(name, endpoint string, params map[string]string, timeout time.Duration) *APISource {
	return &APISource{
		NameStr:        name,
		DescriptionStr: fmt.Sprintf("Records from API %s", endpoint),
		URL:            endpoint,
		Params:         params,
		Headers:        map[string]string{},
		Timeout:        timeout,
	}
}

func (as *APISource) Name() string        { return as.NameStr }
func (as *APISource) Description() string { return as.DescriptionStr }

type apiPage struct {
	Next    string          `json:"next"`
	Results records.Dataset `json:"results"`
}

// FetchRecords returns the cached records when a cache file exists, otherwise walks every page
func (as *APISource) FetchRecords(ctx context.Context) (records.Dataset, error) {
	if as.CachePath != "" {
		if ds, err := as.readCache(); err == nil {
			as.log().WithFields(logrus.Fields{
				"source":  as.NameStr,
				"cache":   as.CachePath,
				"records": len(ds),
			}).Info("Loaded records from cache")
			return ds, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	next, err := as.firstPageURL()
	if err != nil {
		return nil, err
	}

	var ds records.Dataset
	for page := 1; next != ""; page++ {
		if as.MaxPages > 0 && page > as.MaxPages {
			break
		}
		body, err := as.get(ctx, next)
		if err != nil {
			return nil, err
		}
		p, err := decodePage(body)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		for _, rec := range p.Results {
			if rec != nil {
				ds = append(ds, rec)
			}
		}
		as.log().WithFields(logrus.Fields{
			"source": as.NameStr,
			"page":   page,
			"total":  len(ds),
		}).Debug("Fetched API page")
		next = p.Next
	}

	as.log().WithFields(logrus.Fields{
		"source":  as.NameStr,
		"records": len(ds),
	}).Info("Retrieved entries from API")

	if as.CachePath != "" {
		if err := as.writeCache(ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Check succeeds when the cache file exists or the first page can be retrieved
func (as *APISource) Check(ctx context.Context) error {
	if as.CachePath != "" {
		if _, err := os.Stat(as.CachePath); err == nil {
			return nil
		}
	}
	first, err := as.firstPageURL()
	if err != nil {
		return err
	}
	_, err = as.get(ctx, first)
	return err
}

func (as *APISource) firstPageURL() (string, error) {
	u, err := url.Parse(as.URL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", as.URL, err)
	}
	q := u.Query()
	for k, v := range as.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (as *APISource) get(ctx context.Context, target string) ([]byte, error) {
	client := as.Client
	if client == nil {
		client = &http.Client{Timeout: as.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range as.Headers {
		req.Header.Set(k, v)
	}
	if as.Token != "" {
		req.Header.Set("Authorization", "Token "+as.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status %d for %s", resp.StatusCode, target)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read API response: %w", err)
	}
	return data, nil
}

// decodePage accepts a paginated envelope or, for unpaginated APIs, any record collection
func decodePage(body []byte) (*apiPage, error) {
	var p apiPage
	if err := json.Unmarshal(body, &p); err == nil && p.Results != nil {
		return &p, nil
	}
	ds, err := records.ParseJSON(body)
	if err != nil {
		return nil, err
	}
	return &apiPage{Results: ds}, nil
}

func (as *APISource) readCache() (records.Dataset, error) {
	file, err := os.Open(as.CachePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	ds, err := records.ReadJSON(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", as.CachePath, err)
	}
	return ds, nil
}

func (as *APISource) writeCache(ds records.Dataset) error {
	if ds == nil {
		ds = records.Dataset{}
	}
	data, err := json.MarshalIndent(struct {
		Results records.Dataset `json:"results"`
	}{ds}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(as.CachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(as.CachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (as *APISource) log() logrus.FieldLogger {
	if as.Logger == nil {
		return logrus.StandardLogger()
	}
	return as.Logger
}
