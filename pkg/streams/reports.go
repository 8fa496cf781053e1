package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/bamboohr"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// CustomReportPrefix prefixes the name of every custom report stream.
const CustomReportPrefix = "custom_report_"

// CustomReport configures one custom report stream.
type CustomReport struct {
	Name string

	// Fields are the field aliases or numeric IDs to request. Empty means
	// every field known from metadata and the supplemental catalog.
	Fields []string

	OnlyCurrent bool

	// LastChangedSince restricts the report to employees changed since then.
	LastChangedSince *time.Time
	IncludeNull      bool
}

// customReportStream runs a custom report. The fields the API returns are
// reconciled with the requested ones before anything is emitted.
type customReportStream struct {
	src          *source
	api          API
	config       CustomReport
	supplemental fields.Supplemental
	policy       fields.MismatchPolicy
	builder      *fields.Builder
	logger       hclog.Logger

	report lazy[*bamboohr.CustomReport]
	schema lazy[fields.Schema]
}

func newCustomReportStream(src *source, cfg CustomReport, opts *Options, logger hclog.Logger) *customReportStream {
	name := CustomReportPrefix + strcase.ToSnake(cfg.Name)
	logger = logger.Named(name)
	return &customReportStream{
		src:          src,
		api:          src.api,
		config:       cfg,
		supplemental: opts.Supplemental,
		policy:       opts.MismatchPolicy,
		builder:      fields.NewBuilder(fields.NarrowTypes, logger),
		logger:       logger,
	}
}

func (s *customReportStream) Name() string {
	return CustomReportPrefix + strcase.ToSnake(s.config.Name)
}

func (s *customReportStream) KeyProperties() []string {
	return []string{"id"}
}

// known builds the schema of every field the report could return.
func (s *customReportStream) known(ctx context.Context) (fields.Schema, error) {
	metaFields, err := s.src.MetaFields(ctx)
	if err != nil {
		return fields.Schema{}, err
	}
	return s.builder.Build(metaFields, s.supplemental, idField), nil
}

// requestedFields returns the raw field identifiers sent with the report
// request.
func (s *customReportStream) requestedFields(ctx context.Context) ([]string, error) {
	if len(s.config.Fields) > 0 {
		return s.config.Fields, nil
	}

	metaFields, err := s.src.MetaFields(ctx)
	if err != nil {
		return nil, err
	}

	var requested []string
	seen := make(map[fields.CanonicalName]bool)
	add := func(raw string) {
		name, err := fields.Canonicalize(raw)
		if err != nil || raw == "" || seen[name] {
			return
		}
		seen[name] = true
		requested = append(requested, raw)
	}
	for _, mf := range metaFields {
		if mf.Alias != "" {
			add(mf.Alias)
		} else {
			add(idString(mf.ID))
		}
	}
	for _, sf := range s.supplemental {
		add(sf.ID)
	}
	return requested, nil
}

func (s *customReportStream) fetch(ctx context.Context) (*bamboohr.CustomReport, error) {
	return s.report.get(func() (*bamboohr.CustomReport, error) {
		requested, err := s.requestedFields(ctx)
		if err != nil {
			return nil, err
		}

		req := bamboohr.CustomReportRequest{
			Title:       s.config.Name,
			Fields:      requested,
			OnlyCurrent: s.config.OnlyCurrent,
		}
		if s.config.LastChangedSince != nil {
			req.Filters = bamboohr.NewLastChangedFilter(*s.config.LastChangedSince, s.config.IncludeNull)
		}

		return s.api.CustomReport(ctx, req)
	})
}

// Schema runs the report on first use: the schema holds the fields that are
// actually emitted, which under the ignore policy are the returned ones.
func (s *customReportStream) Schema(ctx context.Context) (fields.Schema, error) {
	return s.schema.get(func() (fields.Schema, error) {
		known, err := s.known(ctx)
		if err != nil {
			return fields.Schema{}, err
		}
		requestedRaw, err := s.requestedFields(ctx)
		if err != nil {
			return fields.Schema{}, err
		}
		requested, err := fields.NewFieldSet(toAny(requestedRaw)...)
		if err != nil {
			return fields.Schema{}, fmt.Errorf("invalid field in report %q: %w", s.config.Name, err)
		}

		report, err := s.fetch(ctx)
		if err != nil {
			return fields.Schema{}, err
		}
		returned, err := report.FieldSet()
		if err != nil {
			return fields.Schema{}, fmt.Errorf("invalid field returned by report %q: %w", s.config.Name, err)
		}

		mismatch, err := fields.Reconcile(requested, returned, s.policy)
		if err != nil {
			return fields.Schema{}, fmt.Errorf("custom report %q: %w", s.config.Name, err)
		}
		fields.LogMismatch(s.logger, mismatch)

		effective := requested
		if mismatch.Mismatched() {
			effective = returned
		}
		schema := known.Select(effective)

		// Returned fields that metadata does not describe are typed from the
		// report's own field list.
		var extra []fields.MetaField
		names := schema.Names()
		for _, f := range report.Fields {
			name, err := fields.Canonicalize(f.ID)
			if err != nil || !effective.Has(name) || names.Has(name) {
				continue
			}
			extra = append(extra, fields.MetaField{ID: f.ID, Name: f.Name, Type: f.Type})
		}
		if len(extra) > 0 {
			schema = fields.NewSchema(append(schema.Fields(), s.builder.Build(extra, nil).Fields()...)...)
		}

		return schema, nil
	})
}

func (s *customReportStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	schema, err := s.Schema(ctx)
	if err != nil {
		return err
	}
	report, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, schema, emit)
	for _, employee := range report.Employees {
		if err := emit(fields.CanonicalKeys(employee)); err != nil {
			return fmt.Errorf("failed to emit report row %v: %w", employee["id"], err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
