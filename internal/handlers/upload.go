package handlers

import (
	"errors"
	"net/http"

	"studiosite/internal/models"
	"studiosite/internal/respond"
	"studiosite/internal/upload"
)

// Uploads serves the file upload endpoints.
type Uploads struct {
	svc *upload.Service
}

// NewUploads creates the upload handler group.
func NewUploads(svc *upload.Service) *Uploads {
	return &Uploads{svc: svc}
}

// parseForm limits the body to files files plus form overhead and parses it.
func (u *Uploads) parseForm(w http.ResponseWriter, r *http.Request, files int) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.svc.MaxSize()*int64(files)+maxJSONBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return upload.ErrTooLarge
		}
		return errBadForm
	}
	return nil
}

var errBadForm = errors.New("invalid multipart form")

// Single handles POST /api/upload/single with a "file" field.
func (u *Uploads) Single(w http.ResponseWriter, r *http.Request) {
	if err := u.parseForm(w, r, 1); err != nil {
		writeUploadErr(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		respond.Error(w, http.StatusBadRequest, "no file provided")
		return
	}
	m, err := u.svc.SaveFile(r.Context(), r.FormValue("category"), files[0])
	if err != nil {
		writeUploadErr(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"data": m})
}

// Multiple handles POST /api/upload/multiple with "files" fields.
func (u *Uploads) Multiple(w http.ResponseWriter, r *http.Request) {
	if err := u.parseForm(w, r, u.svc.MaxFiles()); err != nil {
		writeUploadErr(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ms, err := u.svc.SaveFiles(r.Context(), r.FormValue("category"), r.MultipartForm.File["files"])
	if err != nil {
		writeUploadErr(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"data": ms})
}

// Delete handles DELETE /api/upload/delete. The file is named by a
// "path" query parameter or a {"path": ...} body; a public URL works too.
func (u *Uploads) Delete(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("path")
	if ref == "" && r.ContentLength != 0 {
		var body struct {
			Path string `json:"path"`
			URL  string `json:"url"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			respond.Err(w, r, err)
			return
		}
		ref = body.Path
		if ref == "" {
			ref = body.URL
		}
	}

	m, err := u.svc.Delete(r.Context(), ref)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "file deleted", "path": m.Path})
}

// List handles GET /api/upload/list?category=&page=&limit=.
func (u *Uploads) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, page, err := u.svc.List(r.Context(), q.Get("category"), atoi(q.Get("page")), atoi(q.Get("limit")))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse[models.Media]{Data: items, Pagination: page})
}

// writeUploadErr answers upload rejections with their reason.
func writeUploadErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, errBadForm):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Err(w, r, err)
	}
}
