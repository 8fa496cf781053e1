package streams

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/bamboohr"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/photostore"
)

// Options configure the stream set.
type Options struct {
	// MismatchPolicy decides what happens when a custom report returns other
	// fields than requested.
	MismatchPolicy fields.MismatchPolicy

	// StartDate bounds incremental resources. The zero value means the Unix
	// epoch.
	StartDate time.Time

	// Tables lists the table aliases to extract. Empty means every table
	// defined for the company.
	Tables []string

	// Streams names the streams the caller will select. Table metadata is
	// only fetched when the selection can include a table stream. Empty
	// means every stream.
	Streams []string

	CustomReports []CustomReport

	// Supplemental is the catalog merged into custom report schemas.
	Supplemental fields.Supplemental

	PhotoSize string

	// PhotoStore receives photos. When nil, photos are emitted inline.
	PhotoStore photostore.Store

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Build creates every stream the options describe. Table streams are created
// per table, which may require fetching table metadata.
func Build(ctx context.Context, api API, opts Options, logger hclog.Logger) ([]Stream, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("streams")

	if opts.MismatchPolicy == "" {
		opts.MismatchPolicy = fields.MismatchFail
	}
	if opts.PhotoSize == "" {
		opts.PhotoSize = bamboohr.DefaultPhotoSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Supplemental == nil {
		supplemental, err := fields.BundledSupplemental()
		if err != nil {
			return nil, err
		}
		opts.Supplemental = supplemental
	}
	start := opts.StartDate
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}

	src := newSource(api)
	streams := []Stream{
		newEmployeesStream(src, logger),
		&timeOffStream{api: api, start: start, now: opts.Now},
		&listFieldsStream{api: api},
		&photosStream{src: src, size: opts.PhotoSize, store: opts.PhotoStore, logger: logger.Named(PhotosStreamName)},
	}

	for _, report := range opts.CustomReports {
		if strings.TrimSpace(report.Name) == "" {
			return nil, fmt.Errorf("custom report name is required")
		}
		streams = append(streams, newCustomReportStream(src, report, &opts, logger))
	}

	tables := opts.Tables
	if len(tables) == 0 && selectsTables(opts.Streams) {
		metaTables, err := src.MetaTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		for _, t := range metaTables {
			tables = append(tables, t.Alias)
		}
	}
	for _, alias := range tables {
		streams = append(streams, newTableStream(src, alias, start, logger))
	}

	seen := make(map[string]bool, len(streams))
	for _, s := range streams {
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate stream name %q", s.Name())
		}
		seen[s.Name()] = true
	}

	return streams, nil
}

// selectsTables reports whether names can select a table stream.
func selectsTables(names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if strings.HasPrefix(n, TablePrefix) {
			return true
		}
	}
	return false
}

// Select returns the named streams in their original order. No names selects
// every stream.
func Select(streams []Stream, names []string) ([]Stream, error) {
	if len(names) == 0 {
		return streams, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []Stream
	for _, s := range streams {
		if wanted[s.Name()] {
			selected = append(selected, s)
			delete(wanted, s.Name())
		}
	}

	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown streams: %s", strings.Join(unknown, ", "))
	}

	return selected, nil
}
