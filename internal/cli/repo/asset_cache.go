package repo

import (
	"AssetKeeper/internal/cli/model"
	"errors"
)

// ErrNotCached — ассета нет в локальном кэше.
var ErrNotCached = errors.New("asset not cached")

// AssetCache определяет порт доступа к локальному кэшу запечатанных ассетов.
type AssetCache interface {
	// Put сохраняет блоб по имени, заменяя предыдущую версию. Возвращает ID записи.
	Put(name, kind string, sealed []byte) (string, error)

	// Get находит ассет по точному имени.
	Get(name string) (*model.CachedAsset, error)

	// List возвращает все ассеты кэша.
	List() ([]model.CachedAsset, error)
}
