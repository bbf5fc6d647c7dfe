package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MediaPrefix is the URL path uploaded files are served under.
const MediaPrefix = "/media/"

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true, ".pdf": true,
}

// StoredFile describes a file written by SaveUploadedFile.
type StoredFile struct {
	Filename         string
	OriginalFilename string
	Extension        string
	MIME             string
	Size             int64
}

var (
	ErrExtension = errors.New("extensión de archivo no permitida")
	ErrTooLarge  = errors.New("el archivo supera el tamaño máximo")
	ErrContent   = errors.New("el contenido no coincide con el tipo de archivo")
)

// SaveUploadedFile stores file under destDir with a uuid-prefixed name after
// checking its extension, size and sniffed content type. wantPDF selects
// between the PDF and the image rules.
func SaveUploadedFile(file *multipart.FileHeader, destDir string, maxBytes int64, wantPDF bool) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, ErrExtension
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	if wantPDF != mtype.Is("application/pdf") || (!wantPDF && !strings.HasPrefix(mtype.String(), "image/")) {
		return nil, ErrContent
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}
	stored := &StoredFile{
		Filename:         uuid.NewString() + "_" + filepath.Base(file.Filename),
		OriginalFilename: file.Filename,
		Extension:        strings.TrimPrefix(ext, "."),
		MIME:             mtype.String(),
	}

	dst, err := os.Create(filepath.Join(destDir, stored.Filename))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if stored.Size, err = io.Copy(dst, src); err != nil {
		return nil, err
	}
	return stored, nil
}

func GetFileURL(filename string) string {
	if filename == "" {
		return ""
	}
	return MediaPrefix + filename
}
