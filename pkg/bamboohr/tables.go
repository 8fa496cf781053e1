package bamboohr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// ChangedTable holds the rows of one table for every employee whose rows
// changed since the requested time.
type ChangedTable struct {
	Table     string                          `mapstructure:"table"`
	Employees map[string]ChangedTableEmployee `mapstructure:"employees"`
}

// ChangedTableEmployee is one employee's rows of a changed table.
type ChangedTableEmployee struct {
	LastChanged string          `mapstructure:"lastChanged"`
	Rows        []fields.Record `mapstructure:"rows"`
}

// EmployeeIDs returns the employee IDs in the response in a stable order.
func (t *ChangedTable) EmployeeIDs() []string {
	ids := make([]string, 0, len(t.Employees))
	for id := range t.Employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChangedTable fetches the rows of table for employees changed since since.
func (c *Client) ChangedTable(ctx context.Context, table string, since time.Time) (*ChangedTable, error) {
	query := url.Values{}
	query.Set("since", since.UTC().Format(time.RFC3339))

	var changed ChangedTable
	err := c.doDecode(ctx, request{
		method: http.MethodGet,
		path:   "/employees/changed/tables/" + url.PathEscape(table),
		query:  query,
	}, &changed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changed rows of table %q: %w", table, err)
	}

	return &changed, nil
}

