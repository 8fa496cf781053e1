package bamboohr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// dateLayout is the date format BambooHR query parameters use.
const dateLayout = "2006-01-02"

// TimeOffRequests lists time off requests overlapping [start, end].
func (c *Client) TimeOffRequests(ctx context.Context, start, end time.Time) ([]fields.Record, error) {
	query := url.Values{}
	query.Set("start", start.Format(dateLayout))
	query.Set("end", end.Format(dateLayout))

	var requests []fields.Record
	err := c.doDecode(ctx, request{
		method: http.MethodGet,
		path:   "/time_off/requests/",
		query:  query,
	}, &requests)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time off requests: %w", err)
	}

	return requests, nil
}
