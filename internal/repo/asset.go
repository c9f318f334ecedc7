package repo

import (
	"AssetKeeper/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAssetNotFound — ассета с таким именем нет.
var ErrAssetNotFound = errors.New("asset not found")

// AssetRepository — хранилище запечатанных блобов.
type AssetRepository interface {
	// Save вставляет ассет или заменяет блоб существующего с тем же именем.
	// Возвращает created=true, если ассет создан в этой операции.
	Save(ctx context.Context, a *model.Asset) (created bool, err error)

	// GetByName возвращает ассет вместе с блобом.
	GetByName(ctx context.Context, name string) (*model.Asset, error)

	// List возвращает метаданные всех ассетов (без блобов), отсортированные по имени.
	List(ctx context.Context) ([]model.Asset, error)
}

type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepository создаёт реализацию репозитория ассетов.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Save(ctx context.Context, a *model.Asset) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Asset
		err := tx.Select("id").Where("name = ?", a.Name).First(&existing).Error
		switch {
		case err == nil:
			a.ID = existing.ID
			return tx.Model(&model.Asset{}).Where("id = ?", existing.ID).Updates(map[string]any{
				"kind":        a.Kind,
				"sealed":      a.Sealed,
				"size":        a.Size,
				"uploaded_by": a.UploadedBy,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			created = true
			return tx.Create(a).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *assetRepo) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	var a model.Asset
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) List(ctx context.Context) ([]model.Asset, error) {
	var list []model.Asset
	err := r.db.WithContext(ctx).
		Select("id", "name", "kind", "size", "uploaded_by", "created_at", "updated_at").
		Order("name").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
