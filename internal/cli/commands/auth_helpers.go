package commands

import (
	"fmt"
	"net/http"

	"AssetKeeper/internal/cli/api"
	"AssetKeeper/internal/cli/bootstrap"
	fsrepo "AssetKeeper/internal/cli/repo/fs"
	"AssetKeeper/internal/config"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// persistSession сохраняет токен и логин и готовит локальный кэш пользователя.
func persistSession(cfg *config.Config, resp *http.Response, login string) error {
	if err := api.PersistAuthFromResponse(resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := (fsrepo.AuthFSStore{}).SaveLogin(login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	c, err := bootstrap.OpenCacheForLogin(cfg, login)
	if err != nil {
		return err
	}
	return c.Close()
}
