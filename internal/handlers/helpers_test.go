package handlers_test

import (
	"AssetKeeper/internal/config"
	"AssetKeeper/internal/envelope"
	"AssetKeeper/internal/handlers"
	"AssetKeeper/internal/model"
	"AssetKeeper/internal/repo"
	"AssetKeeper/internal/service"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "00112233445566778899aabbccddeeff"

type mockAssetRepo struct{ mock.Mock }

func (m *mockAssetRepo) Save(ctx context.Context, a *model.Asset) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}
func (m *mockAssetRepo) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	args := m.Called(ctx, name)
	if v, ok := args.Get(0).(*model.Asset); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAssetRepo) List(ctx context.Context) ([]model.Asset, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).([]model.Asset); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.AssetRepository = (*mockAssetRepo)(nil)

// newRouter собирает роутер с настоящим Decryptor поверх мок-репозиториев.
func newRouter(t *testing.T, ur repo.UserRepository, ar repo.AssetRepository) http.Handler {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", AssetMaxSizeMB: 1, DecryptTimeout: time.Second}
	logger := zap.NewNop().Sugar()

	dec, err := envelope.NewDecryptor(testSecret)
	require.NoError(t, err)

	userSvc := service.NewUserService(ur)
	assetSvc := service.NewAssetService(ar, dec, logger, cfg.DecryptTimeout)

	h := handlers.NewHandler(userSvc, assetSvc, logger, cfg)
	return h.Router
}

func newSealer(t *testing.T) *envelope.Sealer {
	t.Helper()
	s, err := envelope.NewSealer(testSecret)
	require.NoError(t, err)
	return s
}

func envelopeSealerWith(secret string) (*envelope.Sealer, error) {
	return envelope.NewSealer(secret)
}
