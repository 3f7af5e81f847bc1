package storage

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"WChat/tools/errs"
)

// MediaStore persists uploaded avatars and message media on local disk.
// Files are served back under PublicPath by the HTTP layer.
type MediaStore struct {
	Dir        string // filesystem root, e.g. ./media
	PublicPath string // URL prefix, e.g. /media
}

func NewMediaStore(dir, publicPath string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.WrapMsg(err, "create media dir", "dir", dir)
	}
	return &MediaStore{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/")}, nil
}

// SaveUpload stores a multipart upload and returns its public URL.
func (s *MediaStore) SaveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errs.Wrap(err)
	}
	defer func() { _ = src.Close() }()

	name := uuid.NewString() + safeExt(filepath.Ext(fh.Filename))
	if err := s.writeFile(name, src); err != nil {
		return "", err
	}
	return s.PublicPath + "/" + name, nil
}

// SaveDataURL stores an inline "data:<mime>;base64,<payload>" value, the
// shape clients send message media in. A plain URL is passed through
// untouched.
func (s *MediaStore) SaveDataURL(value string) (string, error) {
	if !strings.HasPrefix(value, "data:") {
		return value, nil
	}
	meta, payload, ok := strings.Cut(value, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", errs.New("malformed data url")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errs.WrapMsg(err, "decode data url")
	}

	name := uuid.NewString() + extFromMime(meta)
	if err := s.writeFile(name, strings.NewReader(string(raw))); err != nil {
		return "", err
	}
	return s.PublicPath + "/" + name, nil
}

func (s *MediaStore) writeFile(name string, src io.Reader) error {
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return errs.WrapMsg(err, "create media file", "name", name)
	}
	defer func() { _ = dst.Close() }()
	if _, err := io.Copy(dst, src); err != nil {
		return errs.WrapMsg(err, "write media file", "name", name)
	}
	return nil
}

func safeExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return strings.ToLower(ext)
	default:
		return ""
	}
}

func extFromMime(meta string) string {
	// meta looks like "data:image/png;base64"
	switch {
	case strings.Contains(meta, "image/jpeg"):
		return ".jpg"
	case strings.Contains(meta, "image/png"):
		return ".png"
	case strings.Contains(meta, "image/webp"):
		return ".webp"
	case strings.Contains(meta, "image/gif"):
		return ".gif"
	default:
		return ""
	}
}
