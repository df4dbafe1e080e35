package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"bmapp/core/catalog"
	"bmapp/logger"
	"bmapp/model"

	"github.com/gorilla/mux"
)

const (
	msgFetched      = "Audio files fetched successfully"
	msgNoneFound    = "No audio files found"
	msgFetchFailed  = "Failed to fetch audio"
	msgUploadFailed = "Failed to upload audio"

	// multipartMemory is how much of a form is buffered in memory; the rest
	// spills to temp files.
	multipartMemory = 32 << 20
)

type listResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    []*model.AudioClip `json:"data"`
	Meta    Meta               `json:"meta"`
}

func newListResponse(page *catalog.Page, emptyMessage string) listResponse {
	msg := msgFetched
	if len(page.Items) == 0 {
		msg = emptyMessage
	}
	items := page.Items
	if items == nil {
		items = []*model.AudioClip{}
	}
	return listResponse{
		Success: true,
		Message: msg,
		Data:    items,
		Meta: Meta{
			Page:    page.Page,
			Limit:   page.Limit,
			Total:   page.Total,
			HasMore: page.HasMore,
		},
	}
}

// ListAudioHandler handles GET /api/audio?page&limit&q&type.
func (h *APIHandler) ListAudioHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := catalog.ParseSearchParams(q.Get("page"), q.Get("limit"), q.Get("q"), q.Get("type"))

	page, err := h.catalog.Search(r.Context(), params)
	if err != nil {
		logger.Error("[Audio] 查询音频列表失败",
			logger.String("q", params.Query),
			logger.String("type", params.Type),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(page, msgNoneFound))
}

// GetAudioHandler handles GET /api/audio/{id}.
func (h *APIHandler) GetAudioHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	clip, err := h.catalog.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Audio fetched successfully",
			"data":    clip,
		})
	case errors.Is(err, catalog.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid audio ID format")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Audio not found")
	default:
		logger.Error("[Audio] 获取音频失败", logger.String("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
	}
}

// CategoryAudioHandler handles GET /api/audio/category/{category}?page&limit.
func (h *APIHandler) CategoryAudioHandler(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	q := r.URL.Query()

	page, err := h.catalog.SearchByCategory(r.Context(), category,
		catalog.ParsePage(q.Get("page")), catalog.ParseLimit(q.Get("limit")))
	if err != nil {
		logger.Error("[Audio] 按分类查询失败", logger.String("category", category), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(page, "No audio files found for category: "+category))
}

// UploadAudioHandler handles the multipart POST /api/audio/upload.
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	maxBytes := h.cfg.UploadMaxBytes

	// 检查请求大小
	if maxBytes > 0 && r.ContentLength > maxBytes {
		logger.Warn("请求体过大，拒绝处理",
			logger.Int64("contentLength", r.ContentLength),
			logger.Int64("maxSize", maxBytes))
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request too large. Maximum size is %d MB", maxBytes>>20))
		return
	}

	// 获取信号量，控制并发
	select {
	case h.uploadSemaphore <- struct{}{}:
		defer func() { <-h.uploadSemaphore }()
	default:
		logger.Warn("服务器繁忙，拒绝新的上传请求")
		writeError(w, http.StatusServiceUnavailable, "Server is busy, please try again later")
		return
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB", maxBytes>>20))
			return
		}
		logger.Warn("解析表单失败", logger.ErrorField(err), logger.String("remoteAddr", r.RemoteAddr))
		writeError(w, http.StatusBadRequest, "Failed to parse upload form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := catalog.IngestRequest{
		Title:            r.FormValue("title"),
		Category:         r.FormValue("category"),
		Type:             r.FormValue("type"),
		OriginalAudioURL: r.FormValue("original_audio_url"),
		ArtistName:       r.FormValue("artist_name"),
		Duration:         r.FormValue("duration"),
		Priority:         r.FormValue("priority"),
		Rating:           r.FormValue("rating"),
		DownloadCount:    r.FormValue("download_count"),
		SoundFlag:        r.FormValue("soundflag"),
	}

	audioPart, closeAudio, err := formFilePart(r, "audio")
	if err != nil {
		logger.Warn("获取音频文件失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to process uploaded file")
		return
	}
	defer closeAudio()
	req.Audio = audioPart

	licensePart, closeLicense, err := formFilePart(r, "license_txt")
	if err != nil {
		logger.Warn("获取许可文件失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to process uploaded file")
		return
	}
	defer closeLicense()
	req.License = licensePart

	clip, err := h.ingestor.Ingest(r.Context(), req)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		logger.Error("[Upload] 音频入库失败", logger.ErrorField(err), logger.Duration("elapsed", time.Since(start)))
		writeError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	logger.Info("[Upload] 上传完成", logger.String("id", clip.ID), logger.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Audio uploaded successfully",
		"audio":   clip,
	})
}

// formFilePart returns nil without error when the field is absent.
func formFilePart(r *http.Request, field string) (*catalog.FilePart, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return filePart(file, header), func() { file.Close() }, nil
}

func filePart(file multipart.File, header *multipart.FileHeader) *catalog.FilePart {
	return &catalog.FilePart{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
