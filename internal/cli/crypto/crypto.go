// Package crypto связывает CLI с конвертом: один Decryptor на процесс
// и чтение блобов из файлов/stdin.
package crypto

import (
	"AssetKeeper/internal/envelope"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu        sync.Mutex
	cached    *envelope.Decryptor
	cachedFor string
)

// Decryptor возвращает Decryptor для секрета, создавая его один раз на процесс.
// Невалидный секрет — ошибка envelope.ErrConfig до любого чтения блоба.
func Decryptor(secret string) (*envelope.Decryptor, error) {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil && cachedFor == secret {
		return cached, nil
	}
	d, err := envelope.NewDecryptor(secret)
	if err != nil {
		return nil, fmt.Errorf("AES_SECRET_KEY: %w", err)
	}
	cached, cachedFor = d, secret
	return d, nil
}

// Sealer создаёт Sealer для секрета.
func Sealer(secret string) (*envelope.Sealer, error) {
	s, err := envelope.NewSealer(secret)
	if err != nil {
		return nil, fmt.Errorf("AES_SECRET_KEY: %w", err)
	}
	return s, nil
}

// ReadInput читает файл целиком; "-" — stdin.
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// ReadHexBlob читает hex-блоб и обрезает пробелы и переводы строк по краям.
func ReadHexBlob(path string, stdin io.Reader) (string, error) {
	b, err := ReadInput(path, stdin)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(b)), nil
}

// WriteOutput пишет результат в файл с правами только для владельца.
func WriteOutput(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}
