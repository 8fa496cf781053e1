package config

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/output"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/photostore"
)

func testLoader(t *testing.T, files map[string]string, env map[string]string) *Loader {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return &Loader{
		FS: fs,
		LookupEnv: func(name string) (string, bool) {
			v, ok := env[name]
			return v, ok
		},
	}
}

const fullConfig = `
subdomain      = "acme"
auth_token     = env("BAMBOOHR_AUTH_TOKEN")
user_agent     = "tap-bamboohr/1.0"
field_mismatch = "ignore"
photo_size     = "small"
start_date     = "2024-01-15"
tables         = ["jobInfo"]
streams        = ["employees", "table_job_info"]
max_parallel   = 4

supplemental_fields_file = "extra_fields.yaml"

http {
  timeout          = "10s"
  max_retries      = 2
  initial_interval = "500ms"
  max_interval     = "5s"
}

custom_report "Terminated Employees" {
  fields             = ["firstName", "4047"]
  only_current       = true
  last_changed_since = "2024-03-01T00:00:00Z"
}

photo_storage {
  directory = "photos"
}
`

func TestLoad_Full(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"/etc/tap/config.hcl":       fullConfig,
		"/etc/tap/extra_fields.yaml": "isPhoto: bool\n\"4047\": list\n",
	}, map[string]string{"BAMBOOHR_AUTH_TOKEN": "secret"})

	cfg, err := loader.Load("/etc/tap/config.hcl")
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Subdomain)
	assert.Equal(t, "secret", cfg.AuthToken)
	assert.Equal(t, 4, cfg.MaxParallel)
	assert.Equal(t, []string{"employees", "table_job_info"}, cfg.Streams)

	client := cfg.ClientConfig()
	assert.Equal(t, "tap-bamboohr/1.0", client.UserAgent)
	assert.Equal(t, 10*time.Second, client.Timeout)
	require.NotNil(t, client.MaxRetries)
	assert.Equal(t, 2, *client.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, client.InitialInterval)
	assert.Equal(t, 5*time.Second, client.MaxInterval)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), cfg.StartTime())

	opts, err := cfg.StreamOptions(loader.FS, nil)
	require.NoError(t, err)
	assert.Equal(t, fields.MismatchIgnore, opts.MismatchPolicy)
	assert.Equal(t, "small", opts.PhotoSize)
	assert.Equal(t, []string{"jobInfo"}, opts.Tables)
	assert.Equal(t, fields.Supplemental{
		{ID: "isPhoto", Type: "bool"},
		{ID: "4047", Type: "list"},
	}, opts.Supplemental)

	require.Len(t, opts.CustomReports, 1)
	report := opts.CustomReports[0]
	assert.Equal(t, "Terminated Employees", report.Name)
	assert.True(t, report.OnlyCurrent)
	require.NotNil(t, report.LastChangedSince)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), report.LastChangedSince.UTC())

	store, err := cfg.NewPhotoStore(context.Background(), loader.FS, nil)
	require.NoError(t, err)
	require.IsType(t, &photostore.FSStore{}, store)
	location, err := store.Put(context.Background(), "1/original.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/tap/photos/1/original.jpg", location)
}

func TestLoad_Defaults(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"config.hcl": `
subdomain  = "acme"
auth_token = "token"
`,
	}, nil)

	cfg, err := loader.Load("config.hcl")
	require.NoError(t, err)

	assert.Equal(t, "fail", cfg.FieldMismatch)
	assert.Equal(t, "original", cfg.PhotoSize)
	assert.Equal(t, 1, cfg.MaxParallel)
	assert.True(t, cfg.StartTime().IsZero())
	assert.Nil(t, cfg.ClientConfig().MaxRetries)

	opts, err := cfg.StreamOptions(loader.FS, nil)
	require.NoError(t, err)
	assert.Equal(t, fields.MismatchFail, opts.MismatchPolicy)
	assert.Nil(t, opts.Supplemental)

	store, err := cfg.NewPhotoStore(context.Background(), loader.FS, nil)
	require.NoError(t, err)
	assert.Nil(t, store)

	var buf bytes.Buffer
	sink, err := cfg.NewSink(&buf, nil)
	require.NoError(t, err)
	assert.IsType(t, &output.JSONLinesSink{}, sink)
}

func TestLoad_ZeroRetries(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"config.hcl": `
subdomain  = "acme"
auth_token = "token"

http {
  max_retries = 0
}
`,
	}, nil)

	cfg, err := loader.Load("config.hcl")
	require.NoError(t, err)

	client := cfg.ClientConfig()
	client.SetDefaults()
	require.NotNil(t, client.MaxRetries)
	assert.Equal(t, 0, *client.MaxRetries)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		env      map[string]string
		errorMsg string
	}{
		{
			name:     "Missing env var",
			config:   `subdomain = "acme"` + "\n" + `auth_token = env("BAMBOOHR_AUTH_TOKEN")`,
			errorMsg: "BAMBOOHR_AUTH_TOKEN is not set",
		},
		{
			name:     "Missing subdomain",
			config:   `auth_token = "token"`,
			errorMsg: "subdomain",
		},
		{
			name:     "Empty auth token",
			config:   `subdomain = "acme"` + "\n" + `auth_token = env("TOKEN")`,
			env:      map[string]string{"TOKEN": ""},
			errorMsg: "AuthToken",
		},
		{
			name:     "Invalid mismatch policy",
			config:   `subdomain = "acme"` + "\n" + `auth_token = "t"` + "\n" + `field_mismatch = "warn"`,
			errorMsg: "FieldMismatch",
		},
		{
			name:     "Invalid photo size",
			config:   `subdomain = "acme"` + "\n" + `auth_token = "t"` + "\n" + `photo_size = "huge"`,
			errorMsg: "PhotoSize",
		},
		{
			name:     "Invalid start date",
			config:   `subdomain = "acme"` + "\n" + `auth_token = "t"` + "\n" + `start_date = "someday"`,
			errorMsg: "StartDate",
		},
		{
			name:     "Invalid duration",
			config:   `subdomain = "acme"` + "\n" + `auth_token = "t"` + "\n" + `http { timeout = "ten seconds" }`,
			errorMsg: "Timeout",
		},
		{
			name: "Duplicate report",
			config: `subdomain = "acme"
auth_token = "t"
custom_report "a" {}
custom_report "a" {}`,
			errorMsg: "duplicate custom report",
		},
		{
			name: "Both photo stores",
			config: `subdomain = "acme"
auth_token = "t"
photo_storage {
  directory = "photos"
  s3 {
    region = "us-east-1"
    bucket = "photos"
  }
}`,
			errorMsg: "exactly one of directory or s3",
		},
		{
			name: "Kafka without topic",
			config: `subdomain = "acme"
auth_token = "t"
output {
  kafka {
    brokers = ["localhost:9092"]
    topic   = ""
  }
}`,
			errorMsg: "Topic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := testLoader(t, map[string]string{"config.hcl": tt.config}, tt.env)
			_, err := loader.Load("config.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	loader := testLoader(t, nil, nil)
	_, err := loader.Load("missing.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read configuration file")

	_, err = loader.Load("")
	require.Error(t, err)
}

func TestStreamOptions_MissingSupplementalFile(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"/tap/config.hcl": `
subdomain  = "acme"
auth_token = "t"
supplemental_fields_file = "/nowhere.yaml"
`,
	}, nil)

	cfg, err := loader.Load("/tap/config.hcl")
	require.NoError(t, err)

	_, err = cfg.StreamOptions(loader.FS, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read supplemental fields file")
}

func TestStreamOptions_EmptySupplementalFile(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"/tap/config.hcl": `
subdomain  = "acme"
auth_token = "t"
supplemental_fields_file = "none.yaml"
`,
		"/tap/none.yaml": "# no extra fields\n",
	}, nil)

	cfg, err := loader.Load("/tap/config.hcl")
	require.NoError(t, err)

	opts, err := cfg.StreamOptions(loader.FS, nil)
	require.NoError(t, err)
	assert.NotNil(t, opts.Supplemental)
	assert.Empty(t, opts.Supplemental)
}

func TestNewSink_Kafka(t *testing.T) {
	cfg := &Config{Output: &Output{Kafka: &Kafka{Brokers: []string{"localhost:19092"}, Topic: "bamboohr"}}}
	sink, err := cfg.NewSink(nil, nil)
	require.NoError(t, err)
	defer sink.Close()
	assert.IsType(t, &output.KafkaSink{}, sink)
}
