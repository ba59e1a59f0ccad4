package field

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filepond/internal/storage"
)

// Result holds the records a value resolved to, shaped by the value's
// multiplicity.
type Result[R Record] struct {
	Multiple bool
	Records  []R
}

// Empty reports whether no record was found.
func (r Result[R]) Empty() bool { return len(r.Records) == 0 }

// One returns the record of a single result.
func (r Result[R]) One() (R, bool) {
	var zero R
	if len(r.Records) == 0 {
		return zero, false
	}
	return r.Records[0], true
}

// All returns every record.
func (r Result[R]) All() []R { return r.Records }

// UploadErrOK marks a file that was received completely.
const UploadErrOK = 0

// UploadedFile is a received file still sitting on the temporary disk.
type UploadedFile struct {
	// Path is the physical location on the temporary disk.
	Path     string
	Filename string
	MimeType string
	Size     int64
	Error    int
	// Test marks files that did not come through a live multipart
	// request, so callers skip is-uploaded-file checks.
	Test bool

	disk storage.Disk
	key  string
}

// Open streams the file bytes from the temporary disk.
func (f *UploadedFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return f.disk.Open(ctx, f.key)
}

// Extension returns the lower-cased extension of the original filename
// without the dot.
func (f *UploadedFile) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Filename), "."))
}
