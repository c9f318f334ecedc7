package service

import (
	"AssetKeeper/internal/envelope"
	"AssetKeeper/internal/metrics"
	"AssetKeeper/internal/model"
	"AssetKeeper/internal/repo"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidName = errors.New("invalid asset name")
	ErrInvalidKind = errors.New("invalid asset kind")
)

// Opener — часть envelope.Decryptor, нужная сервису.
type Opener interface {
	Decrypt(ctx context.Context, raw []byte) ([]byte, error)
	DecryptTextContext(ctx context.Context, hexBlob string) (string, error)
}

var _ Opener = (*envelope.Decryptor)(nil)

// AssetService хранит запечатанные ассеты и расшифровывает их по запросу.
type AssetService struct {
	repo    repo.AssetRepository
	opener  Opener
	logger  *zap.SugaredLogger
	timeout time.Duration
}

// NewAssetService создаёт сервис. timeout ограничивает весь двухступенчатый конвейер;
// 0 — без дедлайна.
func NewAssetService(r repo.AssetRepository, opener Opener, logger *zap.SugaredLogger, timeout time.Duration) *AssetService {
	return &AssetService{repo: r, opener: opener, logger: logger, timeout: timeout}
}

var assetNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Upload проверяет разметку блоба (без расшифровки) и сохраняет его.
// Для credential sealed — hex-строка, для model — сырые байты.
func (s *AssetService) Upload(ctx context.Context, userID int64, name, kind string, sealed []byte) (*model.Asset, bool, error) {
	if !assetNameRe.MatchString(name) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	raw := sealed
	switch kind {
	case model.KindCredential:
		decoded, err := hex.DecodeString(string(sealed))
		if err != nil {
			metrics.UploadTotal.WithLabelValues(kind, "decode").Inc()
			return nil, false, fmt.Errorf("%w: %v", envelope.ErrDecode, err)
		}
		raw = decoded
	case model.KindModel:
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := envelope.ValidateSealed(raw); err != nil {
		metrics.UploadTotal.WithLabelValues(kind, "malformed").Inc()
		return nil, false, err
	}

	a := &model.Asset{Name: name, Kind: kind, Sealed: sealed, Size: int64(len(sealed)), UploadedBy: userID}
	created, err := s.repo.Save(ctx, a)
	if err != nil {
		metrics.UploadTotal.WithLabelValues(kind, "error").Inc()
		return nil, false, fmt.Errorf("save asset: %w", err)
	}
	metrics.UploadTotal.WithLabelValues(kind, "ok").Inc()
	s.logger.Infow("asset stored", "name", name, "kind", kind, "size", len(sealed), "created", created, "user_id", userID)
	return a, created, nil
}

// List возвращает метаданные ассетов.
func (s *AssetService) List(ctx context.Context) ([]model.Asset, error) {
	return s.repo.List(ctx)
}

// Sealed возвращает ассет в том виде, в каком он был загружен.
func (s *AssetService) Sealed(ctx context.Context, name string) (*model.Asset, error) {
	return s.repo.GetByName(ctx, name)
}

// Open находит ассет и расшифровывает его точкой входа, соответствующей виду:
// credential — DecryptText, model — DecryptBuffer.
func (s *AssetService) Open(ctx context.Context, name string) (*model.Asset, []byte, error) {
	a, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	switch a.Kind {
	case model.KindCredential:
		text, err := s.DecryptText(ctx, string(a.Sealed))
		if err != nil {
			return nil, nil, err
		}
		return a, []byte(text), nil
	case model.KindModel:
		plain, err := s.DecryptBuffer(ctx, a.Sealed)
		if err != nil {
			return nil, nil, err
		}
		return a, plain, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q has kind %q", ErrInvalidKind, name, a.Kind)
	}
}

// DecryptText расшифровывает блоб в hex.
func (s *AssetService) DecryptText(ctx context.Context, hexBlob string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	text, err := s.opener.DecryptTextContext(ctx, hexBlob)
	s.observe(metrics.EntryText, err)
	if err != nil {
		return "", err
	}
	return text, nil
}

// DecryptBuffer расшифровывает сырой блоб.
func (s *AssetService) DecryptBuffer(ctx context.Context, raw []byte) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	plain, err := s.opener.Decrypt(ctx, raw)
	s.observe(metrics.EntryBuffer, err)
	if err != nil {
		return nil, err
	}
	return plain, nil
}

const batchWorkers = 8

// DecryptBatch расшифровывает независимые блобы параллельно.
// Порядок результатов совпадает с порядком входа; первая ошибка отменяет остальные.
func (s *AssetService) DecryptBatch(ctx context.Context, blobs [][]byte) ([][]byte, error) {
	out := make([][]byte, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for i := range blobs {
		i := i
		g.Go(func() error {
			plain, err := s.DecryptBuffer(gctx, blobs[i])
			if err != nil {
				return fmt.Errorf("blob %d: %w", i, err)
			}
			out[i] = plain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AssetService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// observe учитывает результат в метриках. Ключи и открытый текст не логируются.
func (s *AssetService) observe(entry string, err error) {
	result := ResultOf(err)
	metrics.DecryptTotal.WithLabelValues(entry, result).Inc()
	if err != nil {
		s.logger.Warnw("decrypt failed", "entry", entry, "result", result, "error", err)
	}
}

// ResultOf классифицирует ошибку расшифровки для метрик и HTTP-ответов.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, envelope.ErrDecode):
		return "decode"
	case errors.Is(err, envelope.ErrMalformedBlob), errors.Is(err, envelope.ErrMalformedCredentialBlock):
		return "malformed"
	case errors.Is(err, envelope.ErrCipher):
		return "cipher"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
