// Package field resolves a submitted upload field into its temporary
// upload records.
//
// The upload widget posts one opaque reference per file. A reference is
// the encrypted form of {"id": "<upload id>"} issued when the file was
// received. Resolution runs in two phases:
//
//	v, err := r.ParseForm(form, "avatar") // decrypt, fixes single vs multiple
//	res, err := r.Resolve(ctx, v)         // look records up, optionally owner-scoped
//
// A resolved record can then be materialized as an UploadedFile backed by
// the temporary disk, as a base64 data URL, or copied to a permanent disk.
package field
