package service

import (
	"AssetKeeper/internal/cli/api"
	"AssetKeeper/internal/cli/model"
	"AssetKeeper/internal/cli/repo"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

const modelKind = "model"
const credentialKind = "credential"

// ErrUnauthorized — сервер отклонил токен или токена нет.
var ErrUnauthorized = errors.New("unauthorized: выполните login")

// Opener — часть envelope.Decryptor, нужная клиенту.
type Opener interface {
	Decrypt(ctx context.Context, raw []byte) ([]byte, error)
	DecryptTextContext(ctx context.Context, hexBlob string) (string, error)
}

// RemoteAsset — метаданные ассета на сервере.
type RemoteAsset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Size      int64  `json:"size"`
	UpdatedAt string `json:"updated_at"`
}

// AssetClient — юзкейсы CLI поверх серверного API, локального кэша и конверта.
type AssetClient struct {
	serverURL string
	tokens    repo.TokenStore
	cache     repo.AssetCache
	opener    Opener
}

// NewAssetClient конструктор клиента ассетов. opener может быть nil,
// если расшифровка не нужна (upload, assets).
func NewAssetClient(serverURL string, tokens repo.TokenStore, cache repo.AssetCache, opener Opener) *AssetClient {
	return &AssetClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		tokens:    tokens,
		cache:     cache,
		opener:    opener,
	}
}

func (c *AssetClient) token() (string, error) {
	tok, err := c.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("нет токена авторизации: %w", err)
	}
	return tok, nil
}

// Upload отправляет запечатанный блоб. Возвращает true, если ассет создан впервые.
func (c *AssetClient) Upload(ctx context.Context, name, kind string, sealed []byte) (bool, error) {
	tok, err := c.token()
	if err != nil {
		return false, err
	}
	fields := map[string]string{"name": name, "kind": kind}
	resp, body, err := api.PostMultipartBlob(ctx, c.serverURL+"/api/assets/upload", fields, name, sealed, tok)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusOK:
		return false, nil
	case http.StatusUnauthorized:
		return false, ErrUnauthorized
	default:
		return false, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchSealed скачивает блоб и кладёт его в локальный кэш.
func (c *AssetClient) FetchSealed(ctx context.Context, name string) (*model.CachedAsset, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	resp, body, err := api.Get(ctx, c.serverURL+"/api/assets/"+url.PathEscape(name)+"/sealed", tok)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, fmt.Errorf("asset %q not found on server", name)
	default:
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	kind := resp.Header.Get("X-Asset-Kind")
	if kind != modelKind && kind != credentialKind {
		return nil, fmt.Errorf("server returned unknown asset kind %q", kind)
	}
	id, err := c.cache.Put(name, kind, body)
	if err != nil {
		return nil, fmt.Errorf("cache asset: %w", err)
	}
	return &model.CachedAsset{ID: id, Name: name, Kind: kind, Sealed: body, Size: int64(len(body))}, nil
}

// Open расшифровывает ассет из кэша точкой входа, соответствующей его виду.
func (c *AssetClient) Open(ctx context.Context, a *model.CachedAsset) ([]byte, error) {
	if c.opener == nil {
		return nil, errors.New("decryptor is not configured")
	}
	switch a.Kind {
	case credentialKind:
		text, err := c.opener.DecryptTextContext(ctx, string(a.Sealed))
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	case modelKind:
		return c.opener.Decrypt(ctx, a.Sealed)
	default:
		return nil, fmt.Errorf("unknown asset kind %q", a.Kind)
	}
}

// Fetch скачивает, кэширует и расшифровывает ассет.
// Если сервер недоступен (ошибка транспорта), используется ранее закэшированная копия;
// ответы сервера с ошибкой (404, 5xx, 401) возвращаются как есть.
func (c *AssetClient) Fetch(ctx context.Context, name string) (*model.CachedAsset, []byte, bool, error) {
	fromCache := false
	a, err := c.FetchSealed(ctx, name)
	if err != nil {
		if !isTransportError(err) || ctx.Err() != nil {
			return nil, nil, false, err
		}
		cached, cerr := c.cache.Get(name)
		if cerr != nil {
			return nil, nil, false, err
		}
		a, fromCache = cached, true
	}
	plain, err := c.Open(ctx, a)
	if err != nil {
		return nil, nil, fromCache, err
	}
	return a, plain, fromCache, nil
}

func isTransportError(err error) bool {
	var ue *url.Error
	var ne net.Error
	return errors.As(err, &ue) || errors.As(err, &ne)
}

// Remote возвращает список ассетов на сервере.
func (c *AssetClient) Remote(ctx context.Context) ([]RemoteAsset, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	resp, body, err := api.Get(ctx, c.serverURL+"/api/assets", tok)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var list []RemoteAsset
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return list, nil
}

// Cached возвращает содержимое локального кэша.
func (c *AssetClient) Cached() ([]model.CachedAsset, error) {
	return c.cache.List()
}

// DecryptAll расшифровывает сырые блобы параллельно; порядок результатов совпадает со входом.
// Первая ошибка отменяет остальные.
func DecryptAll(ctx context.Context, opener Opener, blobs [][]byte) ([][]byte, error) {
	out := make([][]byte, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range blobs {
		i := i
		g.Go(func() error {
			plain, err := opener.Decrypt(gctx, blobs[i])
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
