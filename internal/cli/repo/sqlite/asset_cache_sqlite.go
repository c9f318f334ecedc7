package sqlite

import (
	"AssetKeeper/internal/cli/model"
	"AssetKeeper/internal/cli/repo"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// AssetCacheSQLite — локальный кэш запечатанных ассетов (SQLite, по файлу на логин).
type AssetCacheSQLite struct {
	db    *sql.DB
	login string
}

var _ repo.AssetCache = (*AssetCacheSQLite)(nil)

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного логина
// в каталоге base. Пустой base — каталог конфигурации пользователя.
// Вторым значением возвращается путь к БД.
func OpenForUser(base, login string) (*AssetCacheSQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if err := ValidateName(login); err != nil {
		return nil, "", err
	}
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "AssetKeeper", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &AssetCacheSQLite{db: db, login: login}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *AssetCacheSQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *AssetCacheSQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateName проверяет, что имя безопасно для CLI и файловой системы.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid name: %q (allowed: letters, digits, . _ -)", name)
	}
	return nil
}

// Put сохраняет блоб; при совпадении имени ID сохраняется, остальное заменяется.
func (r *AssetCacheSQLite) Put(name, kind string, sealed []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	now := time.Now().Unix()
	_, err := r.db.Exec(`INSERT INTO assets(id, name, kind, sealed, size, fetched_at)
        VALUES(?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            kind = excluded.kind,
            sealed = excluded.sealed,
            size = excluded.size,
            fetched_at = excluded.fetched_at`,
		uuid.NewString(), name, kind, sealed, len(sealed), now,
	)
	if err != nil {
		return "", err
	}
	var id string
	if err := r.db.QueryRow(`SELECT id FROM assets WHERE name = ?`, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Get возвращает ассет по точному имени.
func (r *AssetCacheSQLite) Get(name string) (*model.CachedAsset, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var a model.CachedAsset
	err := r.db.QueryRow(`SELECT id, name, kind, sealed, size, fetched_at FROM assets WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &a.Kind, &a.Sealed, &a.Size, &a.FetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", repo.ErrNotCached, name)
		}
		return nil, err
	}
	return &a, nil
}

// List возвращает метаданные ассетов, отсортированные по имени. Sealed не читается.
func (r *AssetCacheSQLite) List() ([]model.CachedAsset, error) {
	rows, err := r.db.Query(`SELECT id, name, kind, size, fetched_at FROM assets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.CachedAsset
	for rows.Next() {
		var a model.CachedAsset
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.Size, &a.FetchedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
