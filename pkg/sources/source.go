/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: Record sources. A Source produces the heterogeneous record collection that
inference runs over: local JSON/CSV/XLSX files, a paginated REST API with an on-disk cache,
HTML tables fetched over HTTP or through a headless browser, and SQL queries.
*/

package sources

import (
	"context"
	"errors"

	"github.com/kleascm/ontoforge/pkg/records"
)

// ErrUnsupportedFormat is returned for file formats and source types that have no reader
var ErrUnsupportedFormat = errors.New("unsupported format")

// Source defines an interface for record connectors
type Source interface {
	Name() string
	Description() string
	FetchRecords(ctx context.Context) (records.Dataset, error)
}

// Checker is implemented by sources that can verify they are reachable without a full fetch
type Checker interface {
	Check(ctx context.Context) error
}

// Check verifies src is reachable. Sources without a cheaper check are fetched.
func Check(ctx context.Context, src Source) error {
	if c, ok := src.(Checker); ok {
		return c.Check(ctx)
	}
	_, err := src.FetchRecords(ctx)
	return err
}
