package streams

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// TablePrefix prefixes the name of every table stream.
const TablePrefix = "table_"

// tableFields are the technical fields of every table row.
var tableFields = append(append([]fields.Descriptor{}, fields.ChangeHistoryFields...),
	fields.Descriptor{Name: "employeeId", Type: fields.TypeString, Label: "Employee ID", Required: true},
)

// tableStream emits the change-history rows of one table, such as jobInfo.
type tableStream struct {
	src     *source
	alias   string
	since   time.Time
	builder *fields.Builder
	logger  hclog.Logger
	schema  lazy[fields.Schema]
}

func newTableStream(src *source, alias string, since time.Time, logger hclog.Logger) *tableStream {
	logger = logger.Named(TablePrefix + strcase.ToSnake(alias))
	return &tableStream{
		src:     src,
		alias:   alias,
		since:   since,
		builder: fields.NewBuilder(fields.NarrowTypes, logger),
		logger:  logger,
	}
}

func (s *tableStream) Name() string {
	return TablePrefix + strcase.ToSnake(s.alias)
}

func (s *tableStream) KeyProperties() []string {
	return []string{"id"}
}

func (s *tableStream) Schema(ctx context.Context) (fields.Schema, error) {
	return s.schema.get(func() (fields.Schema, error) {
		tables, err := s.src.MetaTables(ctx)
		if err != nil {
			return fields.Schema{}, err
		}
		for _, t := range tables {
			if t.Alias == s.alias {
				return s.builder.Build(t.Fields, nil, tableFields...), nil
			}
		}
		return fields.Schema{}, fmt.Errorf("table %q is not defined for this company", s.alias)
	})
}

func (s *tableStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	schema, err := s.Schema(ctx)
	if err != nil {
		return err
	}

	changed, err := s.src.api.ChangedTable(ctx, s.alias, s.since)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, schema, emit)
	for _, employeeID := range changed.EmployeeIDs() {
		employee := changed.Employees[employeeID]
		for i, row := range employee.Rows {
			rec := fields.CanonicalKeys(row)
			seq := i + 1

			rec["employeeId"] = employeeID
			rec["rowSequence"] = seq
			rec["lastChanged"] = employee.LastChanged
			if id := idString(rec["id"]); id != "" {
				rec["id"] = id
			} else {
				rec["id"] = employeeID + ":" + strconv.Itoa(seq)
			}

			if err := emit(rec); err != nil {
				return fmt.Errorf("failed to emit row %d of employee %s: %w", seq, employeeID, err)
			}
		}
	}

	s.logger.Debug("table extracted", "employees", len(changed.Employees), "since", s.since)
	return nil
}
