package streams

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// EmployeesStreamName is the name of the directory stream.
const EmployeesStreamName = "employees"

// employeesStream emits the employee directory. Its schema comes from the
// fields the directory itself advertises, typed with BroadTypes.
type employeesStream struct {
	src     *source
	builder *fields.Builder
	schema  lazy[fields.Schema]
}

func newEmployeesStream(src *source, logger hclog.Logger) *employeesStream {
	return &employeesStream{
		src:     src,
		builder: fields.NewBuilder(fields.BroadTypes, logger.Named(EmployeesStreamName)),
	}
}

func (s *employeesStream) Name() string {
	return EmployeesStreamName
}

func (s *employeesStream) KeyProperties() []string {
	return []string{"id"}
}

func (s *employeesStream) Schema(ctx context.Context) (fields.Schema, error) {
	return s.schema.get(func() (fields.Schema, error) {
		dir, err := s.src.Directory(ctx)
		if err != nil {
			return fields.Schema{}, err
		}
		return s.builder.Build(dir.Fields, nil, idField), nil
	})
}

func (s *employeesStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	schema, err := s.Schema(ctx)
	if err != nil {
		return err
	}
	dir, err := s.src.Directory(ctx)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, schema, emit)
	for _, employee := range dir.Employees {
		if err := emit(fields.CanonicalKeys(employee)); err != nil {
			return fmt.Errorf("failed to emit employee %v: %w", employee["id"], err)
		}
	}
	return nil
}

// idField is the record id every employee-keyed stream carries.
var idField = fields.Descriptor{Name: "id", Type: fields.TypeString, Label: "ID", Required: true}
