// Package storage uploads spreadsheet exports to the data lake.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/service"
)

// ErrFileSystemNotFound is returned when the configured container does not
// exist; the handler maps it to a 400 rather than a server error.
var ErrFileSystemNotFound = errors.New("file system does not exist")

// Uploader writes uploaded .xls files into the configured data lake
// filesystem, named by their upload time in Seoul local time.
type Uploader struct {
	connectionString string
	container        string
	location         *time.Location
}

func NewUploader(connectionString, container string) *Uploader {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Uploader{
		connectionString: connectionString,
		container:        container,
		location:         loc,
	}
}

// Configured reports whether an upload target is set.
func (u *Uploader) Configured() bool {
	return u.connectionString != "" && u.container != ""
}

// UploadXLS stores content as <timestamp>.xls and returns the file name.
func (u *Uploader) UploadXLS(ctx context.Context, content []byte) (string, error) {
	if !u.Configured() {
		return "", errors.New("missing storage configuration (connection string/container)")
	}

	svc, err := service.NewClientFromConnectionString(u.connectionString, nil)
	if err != nil {
		return "", fmt.Errorf("storage: service client: %w", err)
	}

	fsClient := svc.NewFileSystemClient(u.container)
	if _, err := fsClient.GetProperties(ctx, nil); err != nil {
		return "", ErrFileSystemNotFound
	}

	fileName := time.Now().In(u.location).Format("20060102_150405") + ".xls"
	fileClient := fsClient.NewFileClient(fileName)

	if _, err := fileClient.Create(ctx, nil); err != nil {
		return "", fmt.Errorf("storage: create %s: %w", fileName, err)
	}
	body := streaming.NopCloser(bytes.NewReader(content))
	if _, err := fileClient.AppendData(ctx, 0, body, nil); err != nil {
		return "", fmt.Errorf("storage: append %s: %w", fileName, err)
	}
	if _, err := fileClient.FlushData(ctx, int64(len(content)), nil); err != nil {
		return "", fmt.Errorf("storage: flush %s: %w", fileName, err)
	}

	return fileName, nil
}
