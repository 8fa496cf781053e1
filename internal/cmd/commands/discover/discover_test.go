package discover

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/base"
)

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/employees/directory":
			fmt.Fprint(w, `{"fields":[{"id":"hireDate","type":"date","name":"Hire date"}],"employees":[]}`)
		case "/meta/tables":
			fmt.Fprint(w, `[{"alias":"jobInfo","fields":[{"id":4022,"alias":"location","name":"Location","type":"list"}]}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	config := fmt.Sprintf(`
subdomain  = "acme"
auth_token = "token"
base_url   = %q
streams    = ["employees", "table_job_info", "photos"]
`, server.URL)
	require.NoError(t, afero.WriteFile(fs, "config.hcl", []byte(config), 0o644))

	ui := cli.NewMockUi()
	var out bytes.Buffer
	c := &Command{Command: base.NewCommand(hclog.NewNullLogger(), ui), FS: fs, Out: &out}

	code := c.Run([]string{"-config=config.hcl"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	var catalog struct {
		Streams []struct {
			Stream        string   `json:"stream"`
			KeyProperties []string `json:"key_properties"`
			Schema        struct {
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"schema"`
		} `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &catalog))
	require.Len(t, catalog.Streams, 3)

	assert.Equal(t, "employees", catalog.Streams[0].Stream)
	assert.Contains(t, catalog.Streams[0].Schema.Properties, "hireDate")
	assert.Equal(t, "photos", catalog.Streams[1].Stream)
	assert.Equal(t, []string{"employeeId"}, catalog.Streams[1].KeyProperties)
	assert.Equal(t, "table_job_info", catalog.Streams[2].Stream)
	assert.Contains(t, catalog.Streams[2].Schema.Properties, "location")
	assert.Contains(t, catalog.Streams[2].Schema.Properties, "rowSequence")
}
