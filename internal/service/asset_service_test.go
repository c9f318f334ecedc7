package service

import (
	"AssetKeeper/internal/envelope"
	"AssetKeeper/internal/metrics"
	"AssetKeeper/internal/model"
	"AssetKeeper/internal/repo"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "00112233445566778899aabbccddeeff"

// --- Моки ---
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

// slowOpener ждёт отмены контекста, имитируя долгую расшифровку.
type slowOpener struct{}

func (slowOpener) Decrypt(ctx context.Context, raw []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowOpener) DecryptTextContext(ctx context.Context, hexBlob string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newSealerAndService(t *testing.T, r repo.AssetRepository) (*envelope.Sealer, *AssetService) {
	t.Helper()
	d, err := envelope.NewDecryptor(testSecret)
	require.NoError(t, err)
	s, err := envelope.NewSealer(testSecret)
	require.NoError(t, err)
	return s, NewAssetService(r, d, zap.NewNop().Sugar(), time.Second)
}

func TestAssetService_Upload(t *testing.T) {
	ctx := context.Background()
	m := new(mockAssetRepo)
	sealer, svc := newSealerAndService(t, m)

	t.Run("credential stored as hex", func(t *testing.T) {
		m.ExpectedCalls = nil
		h, err := sealer.SealHex([]byte("user:pass"))
		require.NoError(t, err)
		m.On("Save", mock.Anything, mock.MatchedBy(func(a *model.Asset) bool {
			return a.Name == "api-cred" && a.Kind == model.KindCredential && string(a.Sealed) == h && a.UploadedBy == 7
		})).Return(true, nil).Once()

		a, created, err := svc.Upload(ctx, 7, "api-cred", model.KindCredential, []byte(h))
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(len(h)), a.Size)
		m.AssertExpectations(t)
	})

	t.Run("model stored raw", func(t *testing.T) {
		m.ExpectedCalls = nil
		blob, err := sealer.Seal(bytes.Repeat([]byte{1}, 100))
		require.NoError(t, err)
		m.On("Save", mock.Anything, mock.Anything).Return(false, nil).Once()

		before := testutil.ToFloat64(metrics.UploadTotal.WithLabelValues(model.KindModel, "ok"))
		_, created, err := svc.Upload(ctx, 1, "cloth.glb", model.KindModel, blob)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.UploadTotal.WithLabelValues(model.KindModel, "ok")))
		m.AssertExpectations(t)
	})

	t.Run("rejections do not touch repo", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.Calls = nil
		_, _, err := svc.Upload(ctx, 1, "bad/name", model.KindModel, make([]byte, 96))
		assert.ErrorIs(t, err, ErrInvalidName)
		_, _, err = svc.Upload(ctx, 1, "x", "video", make([]byte, 96))
		assert.ErrorIs(t, err, ErrInvalidKind)
		_, _, err = svc.Upload(ctx, 1, "x", model.KindCredential, []byte("not-hex"))
		assert.ErrorIs(t, err, envelope.ErrDecode)
		_, _, err = svc.Upload(ctx, 1, "x", model.KindModel, make([]byte, 40))
		assert.ErrorIs(t, err, envelope.ErrMalformedBlob)
		m.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAssetService_Open(t *testing.T) {
	ctx := context.Background()
	m := new(mockAssetRepo)
	sealer, svc := newSealerAndService(t, m)

	h, err := sealer.SealHex([]byte("secret text"))
	require.NoError(t, err)
	model3d := bytes.Repeat([]byte{0x7f}, 2048)
	blob, err := sealer.Seal(model3d)
	require.NoError(t, err)

	m.On("GetByName", mock.Anything, "cred").Return(&model.Asset{Name: "cred", Kind: model.KindCredential, Sealed: []byte(h)}, nil)
	m.On("GetByName", mock.Anything, "girl.glb").Return(&model.Asset{Name: "girl.glb", Kind: model.KindModel, Sealed: blob}, nil)
	m.On("GetByName", mock.Anything, "nope").Return(nil, repo.ErrAssetNotFound)

	m.On("GetByName", mock.Anything, "odd").Return(&model.Asset{Name: "odd", Kind: "video", Sealed: blob}, nil)

	a, text, err := svc.Open(ctx, "cred")
	require.NoError(t, err)
	assert.Equal(t, model.KindCredential, a.Kind)
	assert.Equal(t, "secret text", string(text))

	a, buf, err := svc.Open(ctx, "girl.glb")
	require.NoError(t, err)
	assert.Equal(t, model.KindModel, a.Kind)
	assert.Equal(t, model3d, buf)

	_, _, err = svc.Open(ctx, "odd")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, _, err = svc.Open(ctx, "nope")
	assert.ErrorIs(t, err, repo.ErrAssetNotFound)
}

func TestAssetService_DecryptMetrics(t *testing.T) {
	_, svc := newSealerAndService(t, new(mockAssetRepo))
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.DecryptTotal.WithLabelValues(metrics.EntryBuffer, "malformed"))
	_, err := svc.DecryptBuffer(ctx, []byte{1, 2, 3})
	assert.ErrorIs(t, err, envelope.ErrMalformedBlob)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DecryptTotal.WithLabelValues(metrics.EntryBuffer, "malformed")))

	before = testutil.ToFloat64(metrics.DecryptTotal.WithLabelValues(metrics.EntryText, "decode"))
	_, err = svc.DecryptText(ctx, "xyz")
	assert.ErrorIs(t, err, envelope.ErrDecode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DecryptTotal.WithLabelValues(metrics.EntryText, "decode")))
}

func TestAssetService_Timeout(t *testing.T) {
	svc := NewAssetService(new(mockAssetRepo), slowOpener{}, zap.NewNop().Sugar(), 20*time.Millisecond)

	_, err := svc.DecryptBuffer(context.Background(), make([]byte, 96))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout", ResultOf(err))
}

func TestAssetService_DecryptBatch(t *testing.T) {
	sealer, svc := newSealerAndService(t, new(mockAssetRepo))
	ctx := context.Background()

	var blobs [][]byte
	var want [][]byte
	for i := 0; i < 8; i++ {
		plain := bytes.Repeat([]byte{byte(i)}, 100+i)
		b, err := sealer.Seal(plain)
		require.NoError(t, err)
		blobs = append(blobs, b)
		want = append(want, plain)
	}

	got, err := svc.DecryptBatch(ctx, blobs)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// одна испорченная запись — ошибка всей пачки
	blobs[3] = blobs[3][:50]
	got, err = svc.DecryptBatch(ctx, blobs)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, envelope.ErrMalformedBlob)
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, "ok", ResultOf(nil))
	assert.Equal(t, "cipher", ResultOf(envelope.ErrCipher))
	assert.Equal(t, "malformed", ResultOf(envelope.ErrMalformedCredentialBlock))
	assert.Equal(t, "error", ResultOf(errors.New("db down")))
}
