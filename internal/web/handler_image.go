package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dpetrov/imgvault/internal/domain"
	"github.com/dpetrov/imgvault/internal/service"
)

// multipartOverhead is slack on top of the image cap for multipart framing
// and form fields. The exact content cap is enforced by the service.
const multipartOverhead = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	images, err := s.images.ListOwned(r.Context(), accountID(r))
	if err != nil {
		http.Error(w, "failed to list images", http.StatusInternalServerError)
		s.logger.Error("list images failed", "account_id", accountID(r), "error", err)
		return
	}

	err = s.renderPage(w, http.StatusOK,
		map[string]any{"Images": images},
		"base.html", "pages/index.html",
	)
	if err != nil {
		s.logger.Error("render index failed", "error", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "account_id", accountID(r), "error", err)
		return
	}

	_, err = s.images.Store(r.Context(), accountID(r), header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFilename):
			http.Error(w, "no filename", http.StatusBadRequest)
		case errors.Is(err, service.ErrEmptyContentType):
			http.Error(w, "bad upload", http.StatusBadRequest)
		case errors.Is(err, service.ErrContentTooLarge):
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, "failed to store image", http.StatusInternalServerError)
			s.logger.Error("store image failed", "account_id", accountID(r), "error", err)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid image id", http.StatusBadRequest)
		return
	}

	img, rc, err := s.images.Fetch(r.Context(), id, accountID(r))
	if err != nil {
		s.writeAccessError(w, r, err, id)
		return
	}
	defer closeWithLog(rc, "image content", s.logger)

	w.Header().Set("Content-Type", img.MimeType)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error("write image failed", "image_id", id, "error", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid image id", http.StatusBadRequest)
		return
	}

	if err := s.images.Delete(r.Context(), id, accountID(r)); err != nil {
		s.writeAccessError(w, r, err, id)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeAccessError maps resource-layer failures onto responses. Forbidden
// stays distinct from NotFound, matching the rest of the app's messaging.
func (s *Server) writeAccessError(w http.ResponseWriter, r *http.Request, err error, imageID int64) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "not authorized", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		s.logger.Error("image access failed", "image_id", imageID, "account_id", accountID(r), "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
