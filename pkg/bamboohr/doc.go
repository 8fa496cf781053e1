// Package bamboohr is a client for the BambooHR REST API.
//
// # Authentication
//
// BambooHR uses HTTP basic auth with the API key as the username and any
// password. Requests go to
// https://api.bamboohr.com/api/gateway.php/{subdomain}/v1 unless BaseURL is
// set.
//
// # Endpoints
//
//   - GET  /employees/directory
//   - GET  /meta/fields
//   - GET  /meta/tables
//   - GET  /meta/lists
//   - POST /reports/custom?format=JSON
//   - GET  /time_off/requests/?start=&end=
//   - GET  /employees/changed/tables/{table}?since=
//   - GET  /employees/{id}/photo/{size}
//
// # Error Handling
//
// Network errors, 5xx, 408 and 429 responses are retried with exponential
// backoff up to MaxRetries times. Other responses outside 2xx fail at once as
// an *APIError; a 404 matches ErrNotFound.
package bamboohr
