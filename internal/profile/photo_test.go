package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoValidate(t *testing.T) {
	t.Run("valid photo", func(t *testing.T) {
		p := Photo{Data: []byte("bytes"), ContentType: "image/jpeg", FileName: "me.jpg"}
		assert.NoError(t, p.Validate())
	})

	t.Run("missing data", func(t *testing.T) {
		p := Photo{ContentType: "image/jpeg"}
		assert.ErrorIs(t, p.Validate(), ErrPhotoRequired)
	})

	t.Run("too large", func(t *testing.T) {
		p := Photo{Data: make([]byte, MaxPhotoSize+1), ContentType: "image/png"}
		assert.ErrorIs(t, p.Validate(), ErrPhotoTooLarge)
	})

	t.Run("unsupported type", func(t *testing.T) {
		for _, ct := range []string{"image/gif", "application/pdf", "text/html", ""} {
			p := Photo{Data: []byte("bytes"), ContentType: ct}
			assert.ErrorIs(t, p.Validate(), ErrUnsupportedPhotoType, "content type %q", ct)
		}
	})

	t.Run("allowed types", func(t *testing.T) {
		for _, ct := range []string{"image/jpeg", "image/png", "image/webp"} {
			p := Photo{Data: []byte("bytes"), ContentType: ct}
			assert.NoError(t, p.Validate(), "content type %q", ct)
		}
	})
}
