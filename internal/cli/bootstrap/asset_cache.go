package bootstrap

import (
	"fmt"
	"os"

	"AssetKeeper/internal/cli/repo"
	fsrepo "AssetKeeper/internal/cli/repo/fs"
	reposqlite "AssetKeeper/internal/cli/repo/sqlite"
	"AssetKeeper/internal/config"
)

// cacheBase — каталог пользовательских БД: флаг/конфиг, затем CLIENT_DB_PATH.
func cacheBase(cfg *config.Config) string {
	if cfg != nil && cfg.ClientDBPath != "" {
		return cfg.ClientDBPath
	}
	return os.Getenv("CLIENT_DB_PATH")
}

// OpenCacheForLogin открывает кэш ассетов указанного пользователя и выполняет миграции.
func OpenCacheForLogin(cfg *config.Config, login string) (*reposqlite.AssetCacheSQLite, error) {
	r, _, err := reposqlite.OpenForUser(cacheBase(cfg), login)
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("migrate user db: %w", err)
	}
	return r, nil
}

// OpenAssetCache открывает кэш ассетов текущего пользователя
// и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenAssetCache(cfg *config.Config) (repo.AssetCache, func() error, error) {
	login, err := (fsrepo.AuthFSStore{}).LoadLogin()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	r, err := OpenCacheForLogin(cfg, login)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}
