package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/media"
	"gallery-admin/internal/metrics"
)

// uploadMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const uploadMemory = 8 << 20

// UploadResponse answers /copy-image. ThumbnailPath and Exif are null when
// the step produced nothing for the file.
type UploadResponse struct {
	Success       bool           `json:"success"`
	FilePath      string         `json:"filePath"`
	ThumbnailPath *string        `json:"thumbnailPath"`
	Exif          media.Metadata `json:"exif"`
	Message       string         `json:"message"`
}

// CopyImage stores the uploaded "image" field as data/{unixMillis}_{name},
// then extracts its metadata and generates its thumbnail. The catalog is not
// modified; the admin panel adds the record and posts it to /save-json.
func (h *Handlers) CopyImage(w http.ResponseWriter, r *http.Request) {
	tooLarge := func() {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusRequestEntityTooLarge, "图片文件过大",
			fmt.Sprintf("上传限制为 %d MB", h.maxUploadBytes>>20))
	}
	if r.ContentLength > h.maxUploadBytes {
		tooLarge()
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			tooLarge()
			return
		}
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "没有找到图片文件", err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "没有找到图片文件", "")
		return
	}
	defer file.Close()

	name := uploadName(header.Filename)
	if name == "" {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "没有找到图片文件", "")
		return
	}
	if !media.IsSupportedImage(name) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "不支持的图片格式", name)
		return
	}

	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to create upload directory %s: %v", h.dataDir, err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "图片保存失败")
		return
	}

	fileName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
	dest := filepath.Join(h.dataDir, fileName)

	var written int64
	err = filesystem.WriteAtomic(dest, 0o644, func(dst io.Writer) error {
		n, err := io.Copy(dst, file)
		written = n
		return err
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to save upload %s: %v", dest, err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "图片保存失败")
		return
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	metrics.UploadBytes.Add(float64(written))

	filePath := h.relPath(dest)
	logging.Info("Saved upload %s (%d bytes)", filePath, written)

	result := h.pipeline.ProcessFile(dest)

	response := UploadResponse{
		Success:  true,
		FilePath: filePath,
		Exif:     result.Exif,
		Message:  "图片已保存到：" + filePath,
	}
	if result.ThumbnailPath != "" {
		thumb := result.ThumbnailPath
		response.ThumbnailPath = &thumb
	}
	writeJSONStatus(w, http.StatusOK, response)
}

// uploadName reduces a client-supplied file name to its base name. Browsers
// on Windows may send full paths with backslashes.
func uploadName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}
