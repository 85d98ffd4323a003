package transport

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"greencare-be/internal/apperr"
	"greencare-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 10 << 20

var ErrNoImage = apperr.New(apperr.ErrInvalid, "No image provided")

// PathID parses the numeric URL parameter name. Unparsable ids are reported as not found.
func PathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := utils.ToUint(raw)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrNotFound, fmt.Sprintf("No resource matches id %q.", raw))
	}
	return id, nil
}

// FormImage returns the multipart file uploaded under field.
// The caller must close the returned file.
func FormImage(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, ErrNoImage
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, ErrNoImage
	}
	return file, header, nil
}
