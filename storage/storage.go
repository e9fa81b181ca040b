package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rpupo63/melba-site-backend/errs"
)

// DefaultMaxBytes is the largest image accepted by the admin forms.
const DefaultMaxBytes = 5 << 20

// Store persists uploaded images and hands back the public path to them.
//
// Delete only touches paths the store itself produced and treats a missing
// file as already deleted.
type Store interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, path string) error
	Owns(path string) bool
}

// Upload is a sniffed, size-checked image ready to be stored.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Policy restricts uploads by sniffed content type and size.
type Policy struct {
	MaxBytes int64
	Allowed  []string
}

func DefaultPolicy() Policy {
	return Policy{
		MaxBytes: DefaultMaxBytes,
		Allowed:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
}

// Inspect reads at most MaxBytes+1 from r and sniffs the content. The
// declared content type of the upload is ignored.
func (p Policy) Inspect(r io.Reader) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return Upload{}, errs.NewMalformedPayloadError("image", err)
	}
	if int64(len(data)) > p.MaxBytes {
		return Upload{}, errs.NewMaxBodySizeExceededError(p.MaxBytes)
	}

	mtype := mimetype.Detect(data)
	for _, allowed := range p.Allowed {
		if mtype.Is(allowed) {
			return Upload{Data: data, ContentType: allowed, Extension: mtype.Extension()}, nil
		}
	}
	return Upload{}, errs.NewUnsupportedMediaTypeError(mtype.String(), p.Allowed)
}

func (u Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}
