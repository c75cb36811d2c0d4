package http

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/aussiebroadwan/bitebank/internal/order/imagestore"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// ImagePathPrefix is prepended to object names in upload responses and
// served by GET /uploads/images/{name}.
const ImagePathPrefix = "uploads/images/"

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead = 64 << 10

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// ImagesHandler serves uploads and downloads of meal images.
type ImagesHandler struct {
	Images   imagestore.Store
	MaxBytes int64
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Stores an image under a generated name. Non-image content is rejected.
//	@Tags			Images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"image file"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"no file or not an image"
//	@Failure		413		{object}	authsdk.ErrorResponse	"file too large"
//	@Router			/upload [post].
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			authsdk.ErrPayloadTooLarge.WriteError(w)
		case errors.Is(err, http.ErrMissingFile):
			authsdk.ErrInvalidRequest.WithDescription("no file uploaded").WriteError(w)
		default:
			authsdk.ErrInvalidRequest.WithDescription("malformed multipart body").WriteError(w)
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	defer func() { _ = file.Close() }()

	if header.Size > h.MaxBytes {
		authsdk.ErrPayloadTooLarge.WriteError(w)
		return
	}

	name, err := imagestore.Save(ctx, h.Images, header.Filename, file, header.Size)
	if err != nil {
		if errors.Is(err, imagestore.ErrNotImage) {
			authsdk.ErrInvalidRequest.WithDescription("file is not a supported image").WriteError(w)
			return
		}
		log.Error("store image failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("image uploaded", "name", name, "size", header.Size)
	httpx.WriteJSON(w, http.StatusCreated, UploadResponse{URL: path.Join(ImagePathPrefix, name)})
}

// Download godoc
//
//	@Summary		Get image
//	@Tags			Images
//	@Produce		image/jpeg,image/png,image/gif,image/webp
//	@Security		BearerAuth
//	@Param			name	path	string	true	"object name"
//	@Success		200
//	@Failure		404	{object}	authsdk.ErrorResponse	"image does not exist"
//	@Router			/uploads/images/{name} [get].
func (h *ImagesHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	obj, err := h.Images.Get(ctx, r.PathValue("name"))
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			authsdk.ErrNotFound.WithDescription("image does not exist").WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("read image failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj)
}
