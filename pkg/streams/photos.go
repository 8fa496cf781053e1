package streams

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/photostore"
)

// PhotosStreamName is the name of the employee photo stream.
const PhotosStreamName = "photos"

var photosSchema = fields.NewSchema(
	fields.Descriptor{Name: "employeeId", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "size", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "contentType", Type: fields.TypeString},
	fields.Descriptor{Name: "photo", Type: fields.TypeString, Label: "Base64 encoded photo"},
	fields.Descriptor{Name: "location", Type: fields.TypeString, Label: "Stored photo location"},
)

// photosStream fetches the photo of every employee in the directory. Photos
// go to the store when one is configured, otherwise inline as base64.
type photosStream struct {
	src    *source
	size   string
	store  photostore.Store
	logger hclog.Logger
}

func (s *photosStream) Name() string {
	return PhotosStreamName
}

func (s *photosStream) KeyProperties() []string {
	return []string{"employeeId"}
}

func (s *photosStream) Schema(context.Context) (fields.Schema, error) {
	return photosSchema, nil
}

func (s *photosStream) Records(ctx context.Context, emit func(fields.Record) error) error {
	dir, err := s.src.Directory(ctx)
	if err != nil {
		return err
	}

	emit = emitNormalized(ctx, photosSchema, emit)
	for _, employee := range dir.Employees {
		employeeID := idString(employee["id"])
		if employeeID == "" || !hasPhoto(employee) {
			continue
		}

		photo, err := s.src.api.Photo(ctx, employeeID, s.size)
		if err != nil {
			return err
		}
		if photo == nil {
			s.logger.Debug("employee has no photo", "employee_id", employeeID)
			continue
		}

		rec := fields.Record{
			"employeeId":  employeeID,
			"size":        photo.Size,
			"contentType": photo.ContentType,
		}
		if s.store != nil {
			key := photostore.ObjectKey(employeeID, photo.Size, photo.ContentType)
			location, err := s.store.Put(ctx, key, photo.ContentType, photo.Data)
			if err != nil {
				return fmt.Errorf("failed to store photo of employee %s: %w", employeeID, err)
			}
			rec["location"] = location
		} else {
			rec["photo"] = base64.StdEncoding.EncodeToString(photo.Data)
		}

		if err := emit(rec); err != nil {
			return fmt.Errorf("failed to emit photo of employee %s: %w", employeeID, err)
		}
	}
	return nil
}

// hasPhoto is false only when the directory says the photo is missing.
func hasPhoto(employee fields.Record) bool {
	switch v := employee["photoUploaded"].(type) {
	case bool:
		return v
	case string:
		return v != "false"
	default:
		return true
	}
}
