package profile

import "errors"

// MaxPhotoSize is the upload limit for mentor profile photos.
const MaxPhotoSize = 5 << 20 // 5 MB

var (
	ErrPhotoRequired        = errors.New("profile photo is required")
	ErrPhotoTooLarge        = errors.New("file too large, maximum size is 5MB")
	ErrUnsupportedPhotoType = errors.New("unsupported photo type, use JPEG, PNG or WebP")
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Photo is an uploaded profile photo.
type Photo struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Validate checks presence, size and content type. Anything beyond that
// (decoding, resizing) is out of scope.
func (p Photo) Validate() error {
	if len(p.Data) == 0 {
		return ErrPhotoRequired
	}
	if len(p.Data) > MaxPhotoSize {
		return ErrPhotoTooLarge
	}
	if !allowedPhotoTypes[p.ContentType] {
		return ErrUnsupportedPhotoType
	}
	return nil
}
