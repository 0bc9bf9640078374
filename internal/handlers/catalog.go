package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gallery-admin/internal/catalog"
	"gallery-admin/internal/logging"
)

// RunResponse answers the two catalog-wide operations. UpdatedCount is set
// by /extract-exif, GeneratedCount by /generate-thumbnails.
type RunResponse struct {
	Success        bool   `json:"success"`
	ProcessedCount int    `json:"processedCount"`
	UpdatedCount   *int   `json:"updatedCount,omitempty"`
	GeneratedCount *int   `json:"generatedCount,omitempty"`
	SkippedCount   int    `json:"skippedCount"`
	Message        string `json:"message"`
}

// ExtractExif refreshes the exif field of every catalog record.
func (h *Handlers) ExtractExif(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Run(r.Context(), catalog.ModeMetadata)
	if err != nil {
		writeRunError(w, err)
		return
	}

	updated := res.MetadataUpdated
	writeJSONStatus(w, http.StatusOK, RunResponse{
		Success:        true,
		ProcessedCount: res.Processed,
		UpdatedCount:   &updated,
		SkippedCount:   res.Skipped,
		Message:        fmt.Sprintf("成功更新 %d 张照片的EXIF数据", updated),
	})
}

// GenerateThumbnails produces thumbnails for every catalog record.
func (h *Handlers) GenerateThumbnails(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Run(r.Context(), catalog.ModeThumbnails)
	if err != nil {
		writeRunError(w, err)
		return
	}

	generated := res.ThumbnailsGenerated
	writeJSONStatus(w, http.StatusOK, RunResponse{
		Success:        true,
		ProcessedCount: res.Processed,
		GeneratedCount: &generated,
		SkippedCount:   res.Skipped,
		Message:        fmt.Sprintf("成功生成 %d 张缩略图", generated),
	})
}

func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrCatalogMissing):
		writeJSONError(w, http.StatusNotFound, err.Error(), "photos.json文件不存在")
	case errors.Is(err, catalog.ErrCatalogEmpty):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), "photos.json中没有照片数据")
	case errors.Is(err, catalog.ErrInvalidCatalog):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), "photos.json格式错误")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Warn("Catalog run aborted: %v", err)
		writeJSONError(w, http.StatusServiceUnavailable, err.Error(), "操作已取消")
	default:
		logging.Error("Catalog run failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "处理失败")
	}
}

// SaveJSON replaces the catalog with the posted document. The body must be
// a JSON object with a photos array.
func (h *Handlers) SaveJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, err.Error(), "JSON文件过大")
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error(), "读取请求失败")
		return
	}

	if err := h.pipeline.SaveDocument(body); err != nil {
		if errors.Is(err, catalog.ErrInvalidCatalog) {
			writeJSONError(w, http.StatusBadRequest, err.Error(), "JSON格式错误")
			return
		}
		logging.Error("Failed to save catalog: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "JSON文件保存失败")
		return
	}

	logging.Info("Catalog saved from admin panel (%d bytes)", len(body))
	writeJSONStatus(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "JSON文件已保存",
	})
}

// GetCatalog returns the catalog document as stored.
func (h *Handlers) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	data, err := h.pipeline.ReadCatalog()
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogMissing) {
			writeJSONError(w, http.StatusNotFound, err.Error(), "photos.json文件不存在")
			return
		}
		logging.Error("Failed to read catalog: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "读取photos.json失败")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write catalog response: %v", err)
	}
}
