package bamboohr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// Directory is the company directory: the fields it shows and one entry per
// employee.
type Directory struct {
	Fields    []fields.MetaField `mapstructure:"fields"`
	Employees []fields.Record    `mapstructure:"employees"`
}

// Directory fetches the employee directory.
func (c *Client) Directory(ctx context.Context) (*Directory, error) {
	var dir Directory
	if err := c.doDecode(ctx, request{method: http.MethodGet, path: "/employees/directory"}, &dir); err != nil {
		return nil, fmt.Errorf("failed to fetch employee directory: %w", err)
	}
	return &dir, nil
}

// MetaFields lists every field defined for the company.
func (c *Client) MetaFields(ctx context.Context) ([]fields.MetaField, error) {
	var metaFields []fields.MetaField
	if err := c.doDecode(ctx, request{method: http.MethodGet, path: "/meta/fields"}, &metaFields); err != nil {
		return nil, fmt.Errorf("failed to fetch field metadata: %w", err)
	}
	return metaFields, nil
}

// Table describes one tabular field (a change-history table such as jobInfo).
type Table struct {
	Alias  string             `mapstructure:"alias"`
	Fields []fields.MetaField `mapstructure:"fields"`
}

// MetaTables lists the tables defined for the company.
func (c *Client) MetaTables(ctx context.Context) ([]Table, error) {
	var tables []Table
	if err := c.doDecode(ctx, request{method: http.MethodGet, path: "/meta/tables"}, &tables); err != nil {
		return nil, fmt.Errorf("failed to fetch table metadata: %w", err)
	}
	return tables, nil
}

// ListField is a list-type field together with its options.
type ListField struct {
	FieldID    any             `mapstructure:"fieldId"`
	Alias      string          `mapstructure:"alias"`
	Name       string          `mapstructure:"name"`
	Manageable string          `mapstructure:"manageable"`
	Multiple   string          `mapstructure:"multiple"`
	Options    []fields.Record `mapstructure:"options"`
}

// MetaLists lists the list-type fields and their options.
func (c *Client) MetaLists(ctx context.Context) ([]ListField, error) {
	var lists []ListField
	if err := c.doDecode(ctx, request{method: http.MethodGet, path: "/meta/lists"}, &lists); err != nil {
		return nil, fmt.Errorf("failed to fetch list metadata: %w", err)
	}
	return lists, nil
}
