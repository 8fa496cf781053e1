package bamboohr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// CustomReportRequest is the body of a custom report request.
type CustomReportRequest struct {
	Title   string              `json:"title"`
	Fields  []string            `json:"fields"`
	Filters *CustomReportFilter `json:"filters,omitempty"`

	// OnlyCurrent limits the report to current values of historical fields.
	OnlyCurrent bool `json:"-"`
}

// CustomReportFilter restricts a report to employees changed since a time.
type CustomReportFilter struct {
	LastChanged *LastChangedFilter `json:"lastChanged,omitempty"`
}

// LastChangedFilter is the lastChanged report filter.
type LastChangedFilter struct {
	IncludeNull string `json:"includeNull"`
	Value       string `json:"value"`
}

// NewLastChangedFilter returns a filter for employees changed since t.
func NewLastChangedFilter(t time.Time, includeNull bool) *CustomReportFilter {
	include := "no"
	if includeNull {
		include = "yes"
	}
	return &CustomReportFilter{
		LastChanged: &LastChangedFilter{
			IncludeNull: include,
			Value:       t.UTC().Format(time.RFC3339),
		},
	}
}

// CustomReport is a custom report response. Fields lists what the API
// actually returned, which may differ from what was requested.
type CustomReport struct {
	Title     string             `mapstructure:"title"`
	Fields    []fields.MetaField `mapstructure:"fields"`
	Employees []fields.Record    `mapstructure:"employees"`
}

// FieldSet returns the canonical names of the returned fields.
func (r *CustomReport) FieldSet() (fields.FieldSet, error) {
	ids := make([]any, len(r.Fields))
	for i, f := range r.Fields {
		ids[i] = f.ID
	}
	return fields.NewFieldSet(ids...)
}

// CustomReport runs a custom report.
func (c *Client) CustomReport(ctx context.Context, req CustomReportRequest) (*CustomReport, error) {
	query := url.Values{}
	query.Set("format", "JSON")
	query.Set("onlyCurrent", strconv.FormatBool(req.OnlyCurrent))

	var report CustomReport
	err := c.doDecode(ctx, request{
		method: http.MethodPost,
		path:   "/reports/custom",
		query:  query,
		body:   req,
	}, &report)
	if err != nil {
		return nil, fmt.Errorf("failed to run custom report %q: %w", req.Title, err)
	}

	return &report, nil
}
