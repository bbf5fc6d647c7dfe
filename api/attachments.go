package api

import (
	"errors"
	"path/filepath"
	"strings"
)

// MaxAttachmentBytes is the size cap applied to every attachment slot.
const MaxAttachmentBytes int64 = 5 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// CheckAttachment applies the per-purpose whitelist: images must be
// .jpg/.jpeg/.png with an image/* MIME type; PDFs need an application/pdf
// MIME type or a .pdf extension.
func CheckAttachment(purpose Purpose, name, mime string) error {
	ext := strings.ToLower(filepath.Ext(name))
	mime = strings.ToLower(strings.TrimSpace(mime))

	switch purpose {
	case PurposeLessonPDF:
		if mime == "application/pdf" || ext == ".pdf" {
			return nil
		}
		return errors.New("solo se aceptan archivos PDF (.pdf)")
	case PurposeTrainingImage, PurposeLessonImage, PurposeQuestionImage, PurposeAnswerImage:
		if strings.HasPrefix(mime, "image/") && imageExtensions[ext] {
			return nil
		}
		return errors.New("solo se aceptan imágenes .jpg/.jpeg/.png")
	default:
		return errors.New("tipo de archivo no reconocido: " + string(purpose))
	}
}
