package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"AssetKeeper/internal/cli/repo"
	fsrepo "AssetKeeper/internal/cli/repo/fs"
)

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, token)
}

// Get sends a GET request and returns the full body.
func Get(ctx context.Context, url string, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	return do(req, token)
}

// PostMultipartBlob отправляет блоб файлом "blob" вместе с полями формы.
// Края тела ответа обрезаются.
func PostMultipartBlob(ctx context.Context, url string, fields map[string]string, fileName string, blob []byte, token string) (*http.Response, []byte, error) {
	if fileName == "" {
		return nil, nil, errors.New("empty file name")
	}
	if len(blob) == 0 {
		return nil, nil, errors.New("empty blob")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, nil, err
		}
	}
	fw, err := mw.CreateFormFile("blob", fileName)
	if err != nil {
		return nil, nil, err
	}
	if _, err := fw.Write(blob); err != nil {
		return nil, nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body, err := do(req, token)
	if err != nil {
		return resp, body, err
	}
	return resp, bytes.TrimSpace(body), nil
}

func do(req *http.Request, token string) (*http.Response, []byte, error) {
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("read body: %w", err)
	}
	return resp, body, nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его через файловое хранилище.
func PersistAuthFromResponse(resp *http.Response) error {
	return PersistAuth(resp, fsrepo.AuthFSStore{})
}

// PersistAuth сохраняет auth cookie из ответа в переданное хранилище.
func PersistAuth(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}
