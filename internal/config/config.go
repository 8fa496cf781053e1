// Package config loads the tap configuration file.
//
// Example:
//
//	subdomain      = "acme"
//	auth_token     = env("BAMBOOHR_AUTH_TOKEN")
//	field_mismatch = "ignore"
//	start_date     = "2024-01-01"
//	tables         = ["jobInfo", "compensation"]
//	max_parallel   = 4
//
//	http {
//	  timeout     = "30s"
//	  max_retries = 5
//	}
//
//	custom_report "Terminated Employees" {
//	  fields       = ["firstName", "lastName", "4047"]
//	  only_current = true
//	}
//
//	photo_storage {
//	  s3 {
//	    region = "us-east-1"
//	    bucket = "hr-photos"
//	  }
//	}
//
//	output {
//	  kafka {
//	    brokers = ["localhost:19092"]
//	    topic   = "bamboohr"
//	  }
//	}
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/bamboohr"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/output"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/photostore"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/streams"
)

// Config contains the tap configuration.
type Config struct {
	// Subdomain is the company domain, as in https://acme.bamboohr.com
	Subdomain string `hcl:"subdomain"`

	// AuthToken is the BambooHR API key
	AuthToken string `hcl:"auth_token"`

	UserAgent string `hcl:"user_agent,optional"`
	BaseURL   string `hcl:"base_url,optional"`

	// FieldMismatch is "fail" (default) or "ignore"
	FieldMismatch string `hcl:"field_mismatch,optional"`

	// PhotoSize is one of original (default), large, medium, small, xs, tiny
	PhotoSize string `hcl:"photo_size,optional"`

	// StartDate bounds incremental streams. Any common date layout is
	// accepted.
	StartDate string `hcl:"start_date,optional"`

	// Tables to extract; empty means all.
	Tables []string `hcl:"tables,optional"`

	// Streams to extract; empty means all.
	Streams []string `hcl:"streams,optional"`

	// MaxParallel bounds concurrently extracted streams
	// Default: 1
	MaxParallel int `hcl:"max_parallel,optional"`

	// SupplementalFieldsFile replaces the bundled supplemental field
	// catalog. It is a YAML mapping of field id to BambooHR type, resolved
	// relative to the config file.
	SupplementalFieldsFile string `hcl:"supplemental_fields_file,optional"`

	HTTP          *HTTP           `hcl:"http,block"`
	CustomReports []*CustomReport `hcl:"custom_report,block"`
	PhotoStorage  *PhotoStorage   `hcl:"photo_storage,block"`
	Output        *Output         `hcl:"output,block"`

	// path is the file the config was loaded from.
	path string
}

// HTTP configures the API client.
type HTTP struct {
	Timeout         string `hcl:"timeout,optional"`
	MaxRetries      *int   `hcl:"max_retries,optional"`
	InitialInterval string `hcl:"initial_interval,optional"`
	MaxInterval     string `hcl:"max_interval,optional"`
	TLSVerify       *bool  `hcl:"tls_verify,optional"`
}

// CustomReport configures one custom report stream.
type CustomReport struct {
	Name             string   `hcl:"name,label"`
	Fields           []string `hcl:"fields,optional"`
	OnlyCurrent      bool     `hcl:"only_current,optional"`
	LastChangedSince string   `hcl:"last_changed_since,optional"`
	IncludeNull      bool     `hcl:"include_null,optional"`
}

// PhotoStorage configures where photos are written. Without it photos are
// emitted inline.
type PhotoStorage struct {
	Directory string `hcl:"directory,optional"`
	S3        *S3    `hcl:"s3,block"`
}

// S3 configures photo uploads to S3 or an S3-compatible service.
type S3 struct {
	Endpoint  string `hcl:"endpoint,optional"`
	Region    string `hcl:"region"`
	Bucket    string `hcl:"bucket"`
	Prefix    string `hcl:"prefix,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
}

// Output configures where messages go. Without it they are written to
// stdout.
type Output struct {
	Kafka *Kafka `hcl:"kafka,block"`
}

// Kafka configures publishing to a Kafka or Redpanda topic.
type Kafka struct {
	Brokers []string `hcl:"brokers"`
	Topic   string   `hcl:"topic"`
}

// Loader reads configuration files.
type Loader struct {
	// FS defaults to the OS filesystem.
	FS afero.Fs

	// LookupEnv resolves env() calls; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load reads, decodes and validates the config file at path.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}

	fs := l.fs()
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := hclsimple.Decode(path, src, l.evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	cfg.path = path

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (l *Loader) fs() afero.Fs {
	if l.FS == nil {
		return afero.NewOsFs()
	}
	return l.FS
}

// evalContext exposes env(name) to the configuration file.
func (l *Loader) evalContext() *hcl.EvalContext {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": function.New(&function.Spec{
				Params: []function.Parameter{
					{Name: "name", Type: cty.String},
				},
				Type: function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					name := args[0].AsString()
					value, ok := lookup(name)
					if !ok {
						return cty.NilVal, fmt.Errorf("environment variable %s is not set", name)
					}
					return cty.StringVal(value), nil
				},
			}),
		},
	}
}

// SetDefaults fills unset optional fields
func (c *Config) SetDefaults() {
	if c.FieldMismatch == "" {
		c.FieldMismatch = string(fields.MismatchFail)
	}
	if c.PhotoSize == "" {
		c.PhotoSize = bamboohr.DefaultPhotoSize
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = 1
	}
	if c.HTTP == nil {
		c.HTTP = &HTTP{}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	sizes := make([]interface{}, len(bamboohr.PhotoSizes))
	for i, s := range bamboohr.PhotoSizes {
		sizes[i] = s
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Subdomain, validation.Required),
		validation.Field(&c.AuthToken, validation.Required),
		validation.Field(&c.FieldMismatch, validation.In(string(fields.MismatchFail), string(fields.MismatchIgnore))),
		validation.Field(&c.PhotoSize, validation.In(sizes...)),
		validation.Field(&c.StartDate, validation.By(isDate)),
		validation.Field(&c.MaxParallel, validation.Min(1)),
		validation.Field(&c.HTTP),
		validation.Field(&c.CustomReports, validation.By(uniqueReportNames)),
		validation.Field(&c.PhotoStorage),
		validation.Field(&c.Output),
	)
}

// Validate checks the HTTP settings
func (h *HTTP) Validate() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.Timeout, validation.By(isDuration)),
		validation.Field(&h.MaxRetries, validation.Min(0)),
		validation.Field(&h.InitialInterval, validation.By(isDuration)),
		validation.Field(&h.MaxInterval, validation.By(isDuration)),
	)
}

// Validate checks a custom report block
func (r *CustomReport) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.LastChangedSince, validation.By(isDate)),
	)
}

// Validate checks the photo storage block
func (p *PhotoStorage) Validate() error {
	if (p.Directory == "") == (p.S3 == nil) {
		return fmt.Errorf("exactly one of directory or s3 must be set")
	}
	if p.S3 != nil {
		return validation.ValidateStruct(p.S3,
			validation.Field(&p.S3.Region, validation.Required),
			validation.Field(&p.S3.Bucket, validation.Required),
			validation.Field(&p.S3.SecretKey, validation.When(p.S3.AccessKey != "", validation.Required)),
		)
	}
	return nil
}

// Validate checks the output block
func (o *Output) Validate() error {
	if o.Kafka == nil {
		return nil
	}
	return validation.ValidateStruct(o.Kafka,
		validation.Field(&o.Kafka.Brokers, validation.Required),
		validation.Field(&o.Kafka.Topic, validation.Required),
	)
}

func isDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := parseDate(s); err != nil {
		return fmt.Errorf("must be a date: %w", err)
	}
	return nil
}

func isDuration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as \"30s\": %w", err)
	}
	return nil
}

func uniqueReportNames(value interface{}) error {
	reports, _ := value.([]*CustomReport)
	seen := make(map[string]bool, len(reports))
	for _, r := range reports {
		if seen[r.Name] {
			return fmt.Errorf("duplicate custom report %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// parseDate parses a date in any common layout; dates without a zone are
// UTC.
func parseDate(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
}

// parseDuration returns the parsed duration, or zero when s is empty.
func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ClientConfig returns the BambooHR client configuration.
func (c *Config) ClientConfig() *bamboohr.Config {
	return &bamboohr.Config{
		Subdomain:       c.Subdomain,
		AuthToken:       c.AuthToken,
		UserAgent:       c.UserAgent,
		BaseURL:         c.BaseURL,
		TLSVerify:       c.HTTP.TLSVerify,
		Timeout:         parseDuration(c.HTTP.Timeout),
		MaxRetries:      c.HTTP.MaxRetries,
		InitialInterval: parseDuration(c.HTTP.InitialInterval),
		MaxInterval:     parseDuration(c.HTTP.MaxInterval),
	}
}

// StartTime returns the parsed start date, or the zero time when unset.
func (c *Config) StartTime() time.Time {
	if c.StartDate == "" {
		return time.Time{}
	}
	t, _ := parseDate(c.StartDate)
	return t
}

// StreamOptions returns the stream options. The supplemental field file is
// read from fs when configured.
func (c *Config) StreamOptions(fs afero.Fs, store photostore.Store) (streams.Options, error) {
	policy, err := fields.ParseMismatchPolicy(c.FieldMismatch)
	if err != nil {
		return streams.Options{}, err
	}

	opts := streams.Options{
		MismatchPolicy: policy,
		StartDate:      c.StartTime(),
		Tables:         c.Tables,
		PhotoSize:      c.PhotoSize,
		PhotoStore:     store,
	}

	for _, r := range c.CustomReports {
		report := streams.CustomReport{
			Name:        r.Name,
			Fields:      r.Fields,
			OnlyCurrent: r.OnlyCurrent,
			IncludeNull: r.IncludeNull,
		}
		if r.LastChangedSince != "" {
			since, _ := parseDate(r.LastChangedSince)
			report.LastChangedSince = &since
		}
		opts.CustomReports = append(opts.CustomReports, report)
	}

	if c.SupplementalFieldsFile != "" {
		path := c.resolve(c.SupplementalFieldsFile)
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return streams.Options{}, fmt.Errorf("failed to read supplemental fields file: %w", err)
		}
		opts.Supplemental, err = fields.ParseSupplemental(data)
		if err != nil {
			return streams.Options{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	return opts, nil
}

// resolve makes path relative to the config file.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.path), path)
}

// NewPhotoStore creates the configured photo store, or returns nil when
// photos are emitted inline.
func (c *Config) NewPhotoStore(ctx context.Context, fs afero.Fs, logger hclog.Logger) (photostore.Store, error) {
	switch {
	case c.PhotoStorage == nil:
		return nil, nil
	case c.PhotoStorage.S3 != nil:
		s3 := c.PhotoStorage.S3
		return photostore.NewS3Store(ctx, &photostore.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
		}, logger)
	default:
		return photostore.NewFSStore(fs, c.resolve(c.PhotoStorage.Directory), logger)
	}
}

// NewSink creates the configured message sink. Without an output block
// messages are written to w.
func (c *Config) NewSink(w io.Writer, logger hclog.Logger) (output.Sink, error) {
	if c.Output == nil || c.Output.Kafka == nil {
		return output.NewJSONLinesSink(w), nil
	}
	return output.NewKafkaSink(output.KafkaConfig{
		Brokers: c.Output.Kafka.Brokers,
		Topic:   c.Output.Kafka.Topic,
	}, logger)
}
