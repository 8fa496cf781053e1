package streams

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// ListFieldsStreamName is the name of the list options stream.
const ListFieldsStreamName = "list_fields"

var listFieldsSchema = fields.NewSchema(
	fields.Descriptor{Name: "fieldId", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "id", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "alias", Type: fields.TypeString},
	fields.Descriptor{Name: "fieldName", Type: fields.TypeString},
	fields.Descriptor{Name: "manageable", Type: fields.TypeString},
	fields.Descriptor{Name: "multiple", Type: fields.TypeString},
	fields.Descriptor{Name: "name", Type: fields.TypeString},
	fields.Descriptor{Name: "archived", Type: fields.TypeString},
	fields.Descriptor{Name: "createdDate", Type: fields.TypeDateTime},
	fields.Descriptor{Name: "archivedDate", Type: fields.TypeDateTime},
)

// listFieldsStream emits one record per option of every list field.
type listFieldsStream struct {
	api API
}

func (s *listFieldsStream) Name() string {
	return ListFieldsStreamName
}

func (s *listFieldsStream) KeyProperties() []string {
	return []string{"fieldId", "id"}
}

func (s *listFieldsStream) Schema(context.Context) (fields.Schema, error) {
	return listFieldsSchema, nil
}

func (s *listFieldsStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	lists, err := s.api.MetaLists(ctx)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, listFieldsSchema, emit)
	for _, list := range lists {
		fieldID := idString(list.FieldID)
		for _, option := range list.Options {
			rec := fields.Record{
				"fieldId":      fieldID,
				"id":           idString(option["id"]),
				"alias":        list.Alias,
				"fieldName":    list.Name,
				"manageable":   list.Manageable,
				"multiple":     list.Multiple,
				"name":         option["name"],
				"archived":     option["archived"],
				"createdDate":  option["createdDate"],
				"archivedDate": option["archivedDate"],
			}
			if err := emit(rec); err != nil {
				return fmt.Errorf("failed to emit option %s of list %s: %w", rec["id"], fieldID, err)
			}
		}
	}
	return nil
}
