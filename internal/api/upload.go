package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/video"
)

// UploadResult is the service's answer to an upload.
type UploadResult struct {
	SessionID  string  `json:"session_id"`
	FrameCount int     `json:"frame_count,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
}

// ProgressFunc receives the number of bytes sent so far out of total.
type ProgressFunc func(sent, total int64)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload streams f to the service as the multipart field "video". The body
// is produced while it is sent, so memory use does not grow with the file.
func (c *Client) Upload(
	ctx context.Context,
	f *video.File,
	onProgress ProgressFunc,
) (*UploadResult, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeVideoPart(mw, f, &countingReader{
			r:     file,
			total: f.Size,
			fn:    onProgress,
		}))
	}()

	var res UploadResult

	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        c.endpoints.Upload,
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, &res)
	if err != nil {
		return nil, err
	}

	if res.SessionID == "" {
		return nil, fmt.Errorf("%w: upload response has no session_id", failure.ErrMalformedResponse)
	}

	return &res, nil
}

func writeVideoPart(mw *multipart.Writer, f *video.File, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="video"; filename="%s"`,
		quoteEscaper.Replace(f.Name),
	))

	contentType := f.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, r); err != nil {
		return err
	}

	return mw.Close()
}

// countingReader reports the running byte count of every read.
type countingReader struct {
	r     io.Reader
	fn    ProgressFunc
	total int64
	read  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.read += int64(n)

		if c.fn != nil {
			c.fn(c.read, c.total)
		}
	}

	return n, err
}
