package util

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// StdoutName is the output name that denotes standard output.
const StdoutName = "-"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutputFile opens the named output for writing.
// StdoutName gives standard output, whose Close does nothing;
// any other name is created or truncated, along with missing parent
// directories.
func OpenOutputFile(name string) (io.WriteCloser, error) {
	if name == StdoutName {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(name)
}

// IsS3URI returns whether the given output name is an s3://bucket/key URI,
// and if so, the parsed URL.
func IsS3URI(name string) (*url.URL, bool) {
	parsed, err := url.Parse(name)
	if err != nil || parsed.Scheme != "s3" || parsed.Host == "" {
		return nil, false
	}
	return parsed, true
}

// Close closes c, ignoring any error; for deferred cleanup after the
// result has been checked another way.
func Close(c io.Closer) { _ = c.Close() }
