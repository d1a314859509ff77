package forms

import (
	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxUploadSize = 1 << 20

	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// Upload is a file picked by the user.
type Upload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

func (u *Upload) Size() int {
	if u == nil {
		return 0
	}

	return len(u.Data)
}

// ContentType sniffs the MIME type from the file contents.
func (u *Upload) ContentType() string {
	if u == nil {
		return ""
	}

	return mimetype.Detect(u.Data).String()
}

// Problems lists why u cannot be accepted as a QR image. A nil upload counts
// as missing.
func (u *Upload) Problems() []string {
	if u == nil || len(u.Data) == 0 {
		return []string{"Please upload a file."}
	}

	var problems []string
	if u.Size() > MaxUploadSize {
		problems = append(problems, "Max 1 MB upload size.")
	}

	if mime := mimetype.Detect(u.Data); !mime.Is(MIMEPNG) && !mime.Is(MIMEJPEG) {
		problems = append(problems, "Should be image/png or image/jpeg")
	}

	return problems
}
