package field

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/filepond/internal/auth"
	"github.com/dmitrijs2005/filepond/internal/common"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/dmitrijs2005/filepond/internal/storage"
)

// Record is the capability set the resolver needs from an upload record.
type Record interface {
	GetID() string
	GetFilepath() string
	GetFilename() string
	GetExtension() string
	GetMimetype() string
}

// Repository is the backing store of records of type R. FindByID reports
// a missing record with common.ErrorNotFound.
type Repository[R Record] interface {
	FindByID(ctx context.Context, scope models.Scope, id string) (R, error)
	FindManyByIDs(ctx context.Context, scope models.Scope, ids []string) ([]R, error)
	SoftDelete(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// Options is the per-resolver configuration.
type Options struct {
	// TempDisk names the disk holding the temporary upload bytes.
	TempDisk string
	// OwnershipAware limits lookups to records created by the context actor.
	OwnershipAware bool
	// SoftDeletable makes Delete mark records instead of removing them and
	// their bytes.
	SoftDeletable bool
}

var timeNow = time.Now

// Resolver binds field values to upload records. It holds only immutable
// configuration and may be shared.
type Resolver[R Record] struct {
	repo  Repository[R]
	dec   Decrypter
	disks storage.Disks
	opts  Options
}

// New returns a resolver over repo, decrypting references with dec and
// reading bytes from disks.
func New[R Record](repo Repository[R], dec Decrypter, disks storage.Disks, opts Options) *Resolver[R] {
	return &Resolver[R]{repo: repo, dec: dec, disks: disks, opts: opts}
}

// Options returns the resolver configuration.
func (r *Resolver[R]) Options() Options { return r.opts }

// ParseValue accepts a raw field value. See Value for the accepted shapes.
// A reference that does not decrypt fails with common.ErrDecryption.
func (r *Resolver[R]) ParseValue(raw any) (Value, error) {
	return parseValue(r.dec, raw)
}

// ParseForm reads field name from a submitted form and accepts it.
func (r *Resolver[R]) ParseForm(form url.Values, name string) (Value, error) {
	return parseValue(r.dec, formValue(form, name))
}

func (r *Resolver[R]) scope(ctx context.Context) models.Scope {
	if !r.opts.OwnershipAware {
		return models.Scope{}
	}
	return models.OwnedBy(auth.Actor(ctx))
}

// Resolve looks up the records referenced by v. A single value whose
// record is missing resolves to an empty result; a multiple value omits
// missing ids. Records of a multiple value come back in store order.
func (r *Resolver[R]) Resolve(ctx context.Context, v Value) (Result[R], error) {
	res := Result[R]{Multiple: v.multiple}
	if v.Empty() {
		return res, nil
	}

	scope := r.scope(ctx)

	if v.multiple {
		records, err := r.repo.FindManyByIDs(ctx, scope, v.IDs())
		if err != nil {
			return Result[R]{}, fmt.Errorf("find uploads: %w", err)
		}
		res.Records = records
		return res, nil
	}

	rec, err := r.repo.FindByID(ctx, scope, v.ids[0])
	if errors.Is(err, common.ErrorNotFound) {
		return res, nil
	}
	if err != nil {
		return Result[R]{}, fmt.Errorf("find upload: %w", err)
	}
	res.Records = []R{rec}
	return res, nil
}

// Field accepts raw and resolves it.
func (r *Resolver[R]) Field(ctx context.Context, raw any) (Result[R], error) {
	v, err := r.ParseValue(raw)
	if err != nil {
		return Result[R]{}, err
	}
	return r.Resolve(ctx, v)
}

func (r *Resolver[R]) tempDisk() (storage.Disk, error) {
	return r.disks.Disk(r.opts.TempDisk)
}

// FileObject returns a handle on the temporary bytes of rec. Nothing is
// copied. A missing blob fails with common.ErrBlobNotFound.
func (r *Resolver[R]) FileObject(ctx context.Context, rec R) (*UploadedFile, error) {
	disk, err := r.tempDisk()
	if err != nil {
		return nil, err
	}

	key := rec.GetFilepath()
	size, err := disk.Size(ctx, key)
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		Path:     disk.Path(key),
		Filename: rec.GetFilename(),
		MimeType: rec.GetMimetype(),
		Size:     size,
		Error:    UploadErrOK,
		Test:     true,
		disk:     disk,
		key:      key,
	}, nil
}

// DataURL reads the whole blob of rec and returns it as
// data:<mimetype>;base64,<bytes>.
func (r *Resolver[R]) DataURL(ctx context.Context, rec R) (string, error) {
	disk, err := r.tempDisk()
	if err != nil {
		return "", err
	}

	b, err := disk.Get(ctx, rec.GetFilepath())
	if err != nil {
		return "", err
	}

	return "data:" + rec.GetMimetype() + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// CopyTo copies the temporary bytes of rec to dst under path, with the
// record's extension appended, and returns the destination key.
func (r *Resolver[R]) CopyTo(ctx context.Context, rec R, dst storage.Disk, path string) (string, error) {
	src, err := r.tempDisk()
	if err != nil {
		return "", err
	}

	key := path
	if ext := rec.GetExtension(); ext != "" {
		key += "." + ext
	}
	if err := storage.Copy(ctx, src, rec.GetFilepath(), dst, key, rec.GetMimetype()); err != nil {
		return "", err
	}
	return key, nil
}

// CopyAll copies every record of res. Records of a multiple result are
// numbered path-1, path-2, ... in result order.
func (r *Resolver[R]) CopyAll(ctx context.Context, res Result[R], dst storage.Disk, path string) ([]string, error) {
	keys := make([]string, 0, len(res.Records))
	for i, rec := range res.Records {
		p := path
		if res.Multiple {
			p = fmt.Sprintf("%s-%d", path, i+1)
		}
		key, err := r.CopyTo(ctx, rec, dst, p)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// MoveTo copies rec to dst and then deletes it.
func (r *Resolver[R]) MoveTo(ctx context.Context, rec R, dst storage.Disk, path string) (string, error) {
	key, err := r.CopyTo(ctx, rec, dst, path)
	if err != nil {
		return "", err
	}
	if err := r.Delete(ctx, rec); err != nil {
		return key, err
	}
	return key, nil
}

// Delete disposes of rec. Soft-deletable resolvers only mark the record;
// otherwise the record and then its temporary blob are removed.
func (r *Resolver[R]) Delete(ctx context.Context, rec R) error {
	if r.opts.SoftDeletable {
		if err := r.repo.SoftDelete(ctx, rec.GetID(), timeNow()); err != nil {
			return fmt.Errorf("soft delete %s: %w", rec.GetID(), err)
		}
		return nil
	}

	disk, err := r.tempDisk()
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, rec.GetID()); err != nil {
		return fmt.Errorf("delete %s: %w", rec.GetID(), err)
	}
	if err := disk.Delete(ctx, rec.GetFilepath()); err != nil {
		return fmt.Errorf("delete blob %s: %w", rec.GetFilepath(), err)
	}
	return nil
}
