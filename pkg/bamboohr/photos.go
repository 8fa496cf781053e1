package bamboohr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// PhotoSizes are the sizes the photo endpoint serves.
var PhotoSizes = []string{"original", "large", "medium", "small", "xs", "tiny"}

// DefaultPhotoSize is used when no size is configured.
const DefaultPhotoSize = "original"

// Photo is an employee photo.
type Photo struct {
	EmployeeID  string
	Size        string
	ContentType string
	Data        []byte
}

// Photo fetches an employee photo. It returns (nil, nil) when the employee
// has no photo.
func (c *Client) Photo(ctx context.Context, employeeID, size string) (*Photo, error) {
	path := fmt.Sprintf("/employees/%s/photo/%s", url.PathEscape(employeeID), url.PathEscape(size))

	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		accept: "image/*",
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo of employee %s: %w", employeeID, err)
	}

	contentType := resp.contentType
	if contentType == "" {
		contentType = http.DetectContentType(resp.body)
	}

	return &Photo{
		EmployeeID:  employeeID,
		Size:        size,
		ContentType: contentType,
		Data:        resp.body,
	}, nil
}
