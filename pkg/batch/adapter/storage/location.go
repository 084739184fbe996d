package storage

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Location is a parsed storage URI.
type Location struct {
	// Scheme is "file", "http", "https" or "gs".
	Scheme string
	// Bucket is the GCS bucket or the HTTP host. Empty for local files.
	Bucket string
	// Object is the object name, the local path, or the full URL for HTTP.
	Object string
}

// String renders the location back into URI form.
func (l Location) String() string {
	switch l.Scheme {
	case "file":
		return l.Object
	case "http", "https":
		return l.Object
	default:
		return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Object)
	}
}

// Ext returns the lower-cased extension of the object name (".csv", ".parquet").
func (l Location) Ext() string {
	obj := l.Object
	if l.Scheme == "http" || l.Scheme == "https" {
		if u, err := url.Parse(obj); err == nil {
			obj = u.Path
		}
	}
	return strings.ToLower(filepath.Ext(obj))
}

// ParseLocation parses a location. Strings without a scheme are local paths.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("empty location")
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: "file", Object: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location '%s': %w", raw, err)
	}
	switch u.Scheme {
	case "file":
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = u.Host + p
		}
		return Location{Scheme: "file", Object: p}, nil
	case "http", "https":
		return Location{Scheme: u.Scheme, Bucket: u.Host, Object: raw}, nil
	case "gs":
		obj := strings.TrimPrefix(u.Path, "/")
		if obj == "" {
			return Location{}, fmt.Errorf("location '%s' has no object name", raw)
		}
		return Location{Scheme: "gs", Bucket: u.Host, Object: obj}, nil
	default:
		return Location{}, fmt.Errorf("unsupported location scheme '%s' in '%s'", u.Scheme, raw)
	}
}
