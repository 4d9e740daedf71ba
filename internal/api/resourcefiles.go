package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"os"

	"github.com/bellycard/apigee-cli/internal/constants"
	"github.com/bellycard/apigee-cli/internal/models"
)

const (
	resourceFilesPath = "/o/{{org}}/environments/{{env}}/resourcefiles"
	resourceFilePath  = resourceFilesPath + "/{{type}}/{{name}}"
)

// UploadResult reports what an upload did on the server.
type UploadResult int

const (
	// UploadCreated means the resource file did not exist and was created.
	UploadCreated UploadResult = iota + 1
	// UploadOverwritten means an existing resource file was replaced.
	UploadOverwritten
)

func (r UploadResult) String() string {
	switch r {
	case UploadCreated:
		return "created"
	case UploadOverwritten:
		return "overwritten"
	default:
		return "unknown"
	}
}

func resourceType(t string) string {
	if t == "" {
		return constants.DefaultResourceType
	}
	return t
}

// ListResourceFiles returns every resource file in the environment.
func (c *Client) ListResourceFiles(ctx context.Context) ([]models.ResourceFileInfo, error) {
	var list models.ResourceFileList
	err := c.callJSON(ctx, request{
		method: nethttp.MethodGet,
		path:   c.path(resourceFilesPath, nil),
	}, nil, &list, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("list resource files: %w", err)
	}
	return list.ResourceFiles, nil
}

// ReadResourceFile returns the content of a resource file. An empty type means jsc.
func (c *Client) ReadResourceFile(ctx context.Context, name, fileType string) (string, error) {
	body, err := c.call(ctx, request{
		method: nethttp.MethodGet,
		path:   c.path(resourceFilePath, map[string]string{"name": name, "type": resourceType(fileType)}),
	}, nethttp.StatusOK)
	if err != nil {
		return "", fmt.Errorf("read resource file %q: %w", name, err)
	}
	return string(body), nil
}

// UploadResourceFile uploads the file at path under name, creating the resource
// file when it does not exist yet and overwriting it otherwise.
func (c *Client) UploadResourceFile(ctx context.Context, name, fileType, path string) (UploadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.UploadResourceContent(ctx, name, fileType, content)
}

// UploadResourceContent is UploadResourceFile for content already in memory.
func (c *Client) UploadResourceContent(ctx context.Context, name, fileType string, content []byte) (UploadResult, error) {
	fileType = resourceType(fileType)

	_, err := c.ReadResourceFile(ctx, name, fileType)
	switch {
	case err == nil:
		_, err = c.call(ctx, request{
			method:      nethttp.MethodPut,
			path:        c.path(resourceFilePath, map[string]string{"name": name, "type": fileType}),
			contentType: "application/octet-stream",
			body:        content,
		}, nethttp.StatusOK)
		if err != nil {
			return 0, fmt.Errorf("overwrite resource file %q: %w", name, err)
		}
		return UploadOverwritten, nil

	case IsNotFound(err):
		_, err = c.call(ctx, request{
			method:      nethttp.MethodPost,
			path:        c.path(resourceFilesPath, nil),
			query:       url.Values{"name": {name}, "type": {fileType}},
			contentType: "application/octet-stream",
			body:        content,
		}, nethttp.StatusCreated, nethttp.StatusOK)
		if err != nil {
			return 0, fmt.Errorf("create resource file %q: %w", name, err)
		}
		return UploadCreated, nil

	default:
		return 0, err
	}
}

// RemoveResourceFile deletes a resource file. An empty type means jsc.
func (c *Client) RemoveResourceFile(ctx context.Context, name, fileType string) error {
	_, err := c.call(ctx, request{
		method: nethttp.MethodDelete,
		path:   c.path(resourceFilePath, map[string]string{"name": name, "type": resourceType(fileType)}),
	}, nethttp.StatusOK)
	if err != nil {
		return fmt.Errorf("delete resource file %q: %w", name, err)
	}
	return nil
}
