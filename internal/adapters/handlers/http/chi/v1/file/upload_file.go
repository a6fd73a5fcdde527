package file

import (
	"errors"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"object-gateway/internal/core/domain"
)

// V1UploadFileResponse is the response to an upload
type V1UploadFileResponse struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
}

// UploadFileV1 streams the "file" field of a multipart form to bucketName under prefix
func (h *HandlerV1) UploadFileV1(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.formMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	bucket := r.FormValue("bucketName")
	if bucket == "" {
		http.Error(w, "bucketName is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	loc, err := h.gateway.UploadObject(r.Context(), domain.TransferRequest{
		Location:    domain.NewObjectLocation(bucket, r.FormValue("prefix"), header.Filename),
		Payload:     file,
		ContentType: header.Header.Get("Content-Type"),
		SizeHint:    header.Size,
	})
	if err != nil {
		response.Error(w, h.logger, "error uploading file", err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, V1UploadFileResponse{
		BucketName: loc.Bucket,
		Key:        loc.Key,
	})
}
