package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/service"
)

// allowedImageTypes are the sniffed content types accepted for post images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// PostHandler handles post CRUD requests.
type PostHandler struct {
	posts          *service.PostService
	maxUploadBytes int64
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, maxUploadBytes int64) *PostHandler {
	return &PostHandler{posts: posts, maxUploadBytes: maxUploadBytes}
}

// HandleList returns every post, newest first.
// GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeServiceError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": toPostDTOs(posts)})
}

// HandleListByAuthor returns one author's posts, newest first.
// GET /api/users/{id}/posts
func (h *PostHandler) HandleListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := domain.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	posts, err := h.posts.ListByAuthor(r.Context(), authorID)
	if err != nil {
		writeServiceError(w, "list posts by author", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": toPostDTOs(posts)})
}

// HandleGet returns a single post.
// GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post)})
}

// HandleCreate creates a post authored by the caller. Accepts JSON
// {"title","content"} or multipart/form-data with an optional "image" file.
// POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	body, upload, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	req := createPostRequest{Title: body.Title.String(), Content: body.Content.String()}
	if err := req.Validate(); err != nil {
		discardUpload(upload)
		writeServiceError(w, "create post", err)
		return
	}

	post, err := h.posts.Create(r.Context(), callerID, service.NewPost{
		Title:   req.Title,
		Content: req.Content,
		Image:   upload,
	})
	if err != nil {
		writeServiceError(w, "create post", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post": toPostDTO(post)})
}

// HandleUpdate applies a partial update. Only fields present in the body are
// changed; "image": null (or removeImage=true in a form) clears the image.
// PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	id, err := domain.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	body, upload, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	if err := body.Validate(); err != nil {
		discardUpload(upload)
		writeServiceError(w, "update post", err)
		return
	}

	post, err := h.posts.Update(r.Context(), id, callerID, service.PostUpdate{
		Title:       body.Title.Value,
		Content:     body.Content.Value,
		Image:       upload,
		RemoveImage: body.Image.Set && body.Image.Value == nil,
	})
	if err != nil {
		writeServiceError(w, "update post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post)})
}

// HandleDelete removes a post owned by the caller.
// DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	id, err := domain.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	if err := h.posts.Delete(r.Context(), id, callerID); err != nil {
		writeServiceError(w, "delete post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// decodeBody reads a JSON or multipart post body. On failure it writes the
// response and returns ok=false. A non-nil upload is owned by the caller.
func (h *PostHandler) decodeBody(w http.ResponseWriter, r *http.Request) (updatePostRequest, *domain.Upload, bool) {
	var body updatePostRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if !readJSON(w, r, &body) {
			return body, nil, false
		}
		if body.Image.Set && body.Image.Value != nil {
			writeError(w, http.StatusBadRequest, "Images must be uploaded as multipart/form-data.")
			return body, nil, false
		}
		return body, nil, true
	}

	// Leave headroom for the text fields around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large.")
			return body, nil, false
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body.")
		return body, nil, false
	}
	defer r.MultipartForm.RemoveAll()

	for key, dst := range map[string]*optionalString{"title": &body.Title, "content": &body.Content} {
		if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
			v := values[0]
			*dst = optionalString{Set: true, Value: &v}
		}
	}
	if r.FormValue("removeImage") == "true" {
		body.Image = optionalString{Set: true}
	}

	upload, rerr := h.saveUpload(r)
	if rerr != nil {
		writeError(w, rerr.status, rerr.message)
		return body, nil, false
	}
	return body, upload, true
}

// uploadError is a client-facing upload failure.
type uploadError struct {
	status  int
	message string
}

var errUnexpectedUpload = &uploadError{http.StatusInternalServerError, "An unexpected error occurred. Please try again."}

// saveUpload copies the "image" file part into a temporary file.
func (h *PostHandler) saveUpload(r *http.Request) (*domain.Upload, *uploadError) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, &uploadError{http.StatusBadRequest, "Invalid image upload."}
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		return nil, &uploadError{http.StatusRequestEntityTooLarge, "Upload too large."}
	}

	// Sniff the content type from the bytes rather than trusting the header.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, &uploadError{http.StatusBadRequest, "Invalid image upload."}
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		return nil, &uploadError{http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are accepted."}
	}

	tmp, err := os.CreateTemp("", "blog-upload-*")
	if err != nil {
		slog.Error("create temp upload", "error", err)
		return nil, errUnexpectedUpload
	}
	upload := &domain.Upload{Path: tmp.Name(), Filename: header.Filename, ContentType: contentType}

	_, err = io.Copy(tmp, io.MultiReader(bytes.NewReader(head[:n]), file))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		discardUpload(upload)
		slog.Error("write temp upload", "error", err)
		return nil, errUnexpectedUpload
	}
	return upload, nil
}

func discardUpload(upload *domain.Upload) {
	if upload == nil {
		return
	}
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("remove temporary upload", "path", upload.Path, "error", err)
	}
}
