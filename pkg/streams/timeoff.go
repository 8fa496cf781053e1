package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// TimeOffRequestsStreamName is the name of the time off stream.
const TimeOffRequestsStreamName = "time_off_requests"

// timeOffSchema is the flattened shape of a time off request.
var timeOffSchema = fields.NewSchema(
	fields.Descriptor{Name: "id", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "employeeId", Type: fields.TypeString},
	fields.Descriptor{Name: "name", Type: fields.TypeString},
	fields.Descriptor{Name: "start", Type: fields.TypeDate},
	fields.Descriptor{Name: "end", Type: fields.TypeDate},
	fields.Descriptor{Name: "created", Type: fields.TypeDate},
	fields.Descriptor{Name: "status_status", Type: fields.TypeString},
	fields.Descriptor{Name: "status_lastChanged", Type: fields.TypeDate},
	fields.Descriptor{Name: "status_lastChangedByUserId", Type: fields.TypeString},
	fields.Descriptor{Name: "type_id", Type: fields.TypeString},
	fields.Descriptor{Name: "type_name", Type: fields.TypeString},
	fields.Descriptor{Name: "type_icon", Type: fields.TypeString},
	fields.Descriptor{Name: "amount_unit", Type: fields.TypeString},
	fields.Descriptor{Name: "amount_amount", Type: fields.TypeString},
	fields.Descriptor{Name: "actions_view", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "actions_edit", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "actions_cancel", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "actions_approve", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "actions_deny", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "actions_bypass", Type: fields.TypeBoolean},
	fields.Descriptor{Name: "dates", Type: fields.TypeString},
	fields.Descriptor{Name: "notes_employee", Type: fields.TypeString},
	fields.Descriptor{Name: "notes_manager", Type: fields.TypeString},
)

// flattenedObjects are the nested objects whose members become top-level
// "<object>_<member>" fields.
var flattenedObjects = map[string]bool{
	"status":  true,
	"type":    true,
	"amount":  true,
	"actions": true,
	"notes":   true,
}

// timeOffStream emits time off requests from a start date to a year from now.
type timeOffStream struct {
	api   API
	start time.Time
	now   func() time.Time
}

func (s *timeOffStream) Name() string {
	return TimeOffRequestsStreamName
}

func (s *timeOffStream) KeyProperties() []string {
	return []string{"id"}
}

func (s *timeOffStream) Schema(context.Context) (fields.Schema, error) {
	return timeOffSchema, nil
}

func (s *timeOffStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	end := s.now().AddDate(1, 0, 0)
	requests, err := s.api.TimeOffRequests(ctx, s.start, end)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, timeOffSchema, emit)
	for _, req := range requests {
		rec, err := flatten(req)
		if err != nil {
			return err
		}
		if err := emit(rec); err != nil {
			return fmt.Errorf("failed to emit time off request %v: %w", req["id"], err)
		}
	}
	return nil
}

// flatten lifts the members of flattenedObjects to the top level. Other
// nested values are kept as JSON text.
func flatten(rec fields.Record) (fields.Record, error) {
	out := make(fields.Record, len(rec))
	for k, v := range rec {
		switch nested := v.(type) {
		case map[string]any:
			if flattenedObjects[k] {
				for nk, nv := range nested {
					out[k+"_"+nk] = scalar(nv)
				}
				continue
			}
			data, err := json.Marshal(nested)
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
			}
			out[k] = string(data)
		case []any:
			data, err := json.Marshal(nested)
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
			}
			out[k] = string(data)
		default:
			out[k] = scalar(v)
		}
	}
	return out, nil
}

// scalar turns decoded JSON numbers into strings; the time off API mixes
// numeric and string ids.
func scalar(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}
