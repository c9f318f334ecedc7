package handlers

import (
	"AssetKeeper/internal/config"
	"AssetKeeper/internal/middleware"
	"AssetKeeper/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход и проверка статуса.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type dataResponse struct {
	Result string `json:"result"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, false
	}
	return req, req.Login != "" && req.Password != ""
}

// Register регистрирует пользователя и сразу выставляет auth cookie.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrLoginTaken) {
		http.Error(w, "login already taken", http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: cookie error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Logger.Infow("user registered", "login", req.Login, "user_id", user.ID)
	writeJSON(w, http.StatusOK, dataResponse{Result: "ok"})
}

// Login проверяет пароль и выставляет auth cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: cookie error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Result: "ok"})
}

// Status сообщает, авторизован ли запрос.
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, dataResponse{Result: "anonymous"})
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Result: fmt.Sprintf("User ID = %d", uid)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
