package handlers

import (
	"AssetKeeper/internal/config"
	"AssetKeeper/internal/envelope"
	"AssetKeeper/internal/middleware"
	"AssetKeeper/internal/model"
	"AssetKeeper/internal/repo"
	"AssetKeeper/internal/service"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AssetHandler — загрузка, выдача и расшифровка запечатанных блобов.
type AssetHandler struct {
	AssetService *service.AssetService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

// NewAssetHandler создаёт хендлер ассетов
func NewAssetHandler(assetService *service.AssetService, logger *zap.SugaredLogger, cfg *config.Config) *AssetHandler {
	return &AssetHandler{AssetService: assetService, Logger: logger, Config: cfg}
}

// AssetDTO — метаданные ассета без блоба.
type AssetDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Size      int64  `json:"size"`
	UpdatedAt string `json:"updated_at"`
}

func (h *AssetHandler) maxBytes() int64 {
	return int64(h.Config.AssetMaxSizeMB) * 1024 * 1024
}

// statusFor сопоставляет ошибку расшифровки/хранилища с HTTP-кодом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, envelope.ErrDecode),
		errors.Is(err, envelope.ErrMalformedBlob),
		errors.Is(err, envelope.ErrMalformedCredentialBlock),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, envelope.ErrCipher):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает клиенту без деталей шифра: различать причины
// отказа расшифровки снаружи незачем.
func (h *AssetHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Errorw(op+": failed", "error", err)
	}
	http.Error(w, strings.ToLower(http.StatusText(status)), status)
}

func (h *AssetHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// DecryptText принимает hex-блоб в теле и отвечает текстом.
func (h *AssetHandler) DecryptText(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	text, err := h.AssetService.DecryptText(r.Context(), strings.TrimSpace(string(body)))
	if err != nil {
		h.writeError(w, "DecryptText", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// DecryptBuffer принимает сырой блоб и отвечает байтами.
func (h *AssetHandler) DecryptBuffer(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	plain, err := h.AssetService.DecryptBuffer(r.Context(), body)
	if err != nil {
		h.writeError(w, "DecryptBuffer", err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(plain)
}

type decryptBatchRequest struct {
	Blobs []string `json:"blobs"`
}

type decryptBatchResponse struct {
	Results [][]byte `json:"results"`
}

// DecryptBatch принимает JSON {"blobs": [hex...]} и расшифровывает блобы параллельно.
// Ответ — {"results": [base64...]} в порядке входа; любая ошибка отменяет весь батч.
func (h *AssetHandler) DecryptBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	var req decryptBatchRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.Blobs) == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	blobs := make([][]byte, len(req.Blobs))
	for i, s := range req.Blobs {
		raw, err := hex.DecodeString(strings.TrimSpace(s))
		if err != nil {
			h.writeError(w, "DecryptBatch", fmt.Errorf("blob %d: %w: %v", i, envelope.ErrDecode, err))
			return
		}
		blobs[i] = raw
	}
	plains, err := h.AssetService.DecryptBatch(r.Context(), blobs)
	if err != nil {
		h.writeError(w, "DecryptBatch", err)
		return
	}
	writeJSON(w, http.StatusOK, decryptBatchResponse{Results: plains})
}

// Upload загрузка запечатанного блоба (multipart: name, kind, blob)
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Лимит общего тела запроса: блоб плюс поля формы
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes()+1*1024*1024)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	kind := r.FormValue("kind")
	if name == "" || kind == "" {
		http.Error(w, "missing name or kind", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("blob")
	if err != nil {
		h.Logger.Warnw("Upload: missing blob file", "error", err)
		http.Error(w, "missing blob file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	sealed, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read blob", http.StatusBadRequest)
		return
	}
	if int64(len(sealed)) > h.maxBytes() {
		h.Logger.Warnw("Upload: payload too large", "name", name, "size", len(sealed), "limit", h.maxBytes())
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if kind == model.KindCredential {
		sealed = []byte(strings.TrimSpace(string(sealed)))
	}

	a, created, err := h.AssetService.Upload(r.Context(), userID, name, kind, sealed)
	if err != nil {
		h.Logger.Warnw("Upload: rejected", "name", name, "kind", kind, "error", err)
		h.writeError(w, "Upload", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"id":      a.ID,
		"name":    a.Name,
		"created": created,
		"size":    a.Size,
	})
}

// List список ассетов
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.AssetService.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	out := make([]AssetDTO, 0, len(list))
	for _, a := range list {
		out = append(out, AssetDTO{
			ID:        a.ID,
			Name:      a.Name,
			Kind:      a.Kind,
			Size:      a.Size,
			UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Sealed отдаёт блоб в том виде, в каком он хранится.
func (h *AssetHandler) Sealed(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	a, err := h.AssetService.Sealed(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, "Sealed", err)
		return
	}
	if a.Kind == model.KindCredential {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("X-Asset-Kind", a.Kind)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Sealed)
}

// Open отдаёт расшифрованный ассет: текст для credential, байты для model.
func (h *AssetHandler) Open(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	a, plain, err := h.AssetService.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, "Open", err)
		return
	}
	if a.Kind == model.KindCredential {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(plain)
}
