// FilePath: server/telemetry/internal/models/models.archive.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ArchiveCategory is the top-level prefix of an archived blob
type ArchiveCategory string

const (
	SensorDataCategory ArchiveCategory = "sensor_data"
	ImageCategory      ArchiveCategory = "images"

	// archiveTimeFormat matches an ISO-8601 UTC timestamp with microseconds and no zone suffix
	archiveTimeFormat = "2006-01-02T15:04:05.000000"
)

// Extension returns the file extension used for blobs in the category
func (c ArchiveCategory) Extension() string {
	switch c {
	case ImageCategory:
		return "jpg"
	default:
		return "json"
	}
}

// ContentType returns the MIME type stored with blobs in the category
func (c ArchiveCategory) ContentType() string {
	switch c {
	case ImageCategory:
		return "image/jpeg"
	default:
		return "application/json"
	}
}

// ArchiveObject describes one raw ingestion payload written to the object store
type ArchiveObject struct {
	Path        string          `json:"path"`
	SensorID    string          `json:"sensor_id"`
	Category    ArchiveCategory `json:"category"`
	ContentType string          `json:"content_type"`
	Size        int64           `json:"size"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewArchiveObject builds the object for a payload received at ts.
// The path is {category}/{sensor_id}/{timestamp}.{ext}.
func NewArchiveObject(category ArchiveCategory, sensorID string, ts time.Time, size int) ArchiveObject {
	ts = ts.UTC()
	return ArchiveObject{
		Path:        ArchivePath(category, sensorID, ts),
		SensorID:    sensorID,
		Category:    category,
		ContentType: category.ContentType(),
		Size:        int64(size),
		Timestamp:   ts,
	}
}

func ArchivePath(category ArchiveCategory, sensorID string, ts time.Time) string {
	return fmt.Sprintf("%s/%s/%s.%s", category, sensorID, ts.UTC().Format(archiveTimeFormat), category.Extension())
}

// ValidPathSegment reports whether s can be used as one segment of an archive
// path: non-empty, no separators and not a relative directory reference.
func ValidPathSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}
