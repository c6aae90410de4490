// Package video stages a local video file for upload: it checks the file
// against the upload limits and reads best-effort container metadata.
package video

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MiB is the unit used for every size shown to the user.
const MiB = 1024 * 1024

// sniffLen is the number of leading bytes inspected when the extension does
// not identify the file type.
const sniffLen = 512

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
}

// File is a local file selected for upload.
type File struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// SizeMB returns the file size in mebibytes.
func (f *File) SizeMB() float64 {
	return float64(f.Size) / MiB
}

// IsVideo reports whether the declared type of the file indicates a video.
func (f *File) IsVideo() bool {
	return strings.HasPrefix(f.MIMEType, "video/")
}

// Open stats the file at path and declares its MIME type from the extension,
// falling back to content sniffing.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, errIsDir.Fmt(path)
	}

	f := &File{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}

	f.MIMEType, err = detectType(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}

func detectType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if t, ok := videoExtensions[ext]; ok {
		return t, nil
	}

	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}

	defer file.Close()

	buf := make([]byte, sniffLen)

	n, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return "application/octet-stream", nil
	}

	return mediaType, nil
}
