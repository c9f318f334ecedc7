package envelope

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// sealKeySize — размер ключа блоба, который генерирует Sealer (AES-256).
const sealKeySize = 32

// Sealer — производящая сторона протокола: шифрует payload ключом блоба
// и заворачивает ключ блоба секретом процесса.
type Sealer struct {
	secret []byte
	rand   io.Reader
}

// NewSealer создаёт Sealer с тем же преобразованием секрета, что и NewDecryptor.
func NewSealer(secret string) (*Sealer, error) {
	key, err := secretKeyBytes(secret)
	if err != nil {
		return nil, err
	}
	return &Sealer{secret: key, rand: rand.Reader}, nil
}

// Seal шифрует plain свежими inner key/IV и случайным outer IV.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	material := make([]byte, IVSize+IVSize+sealKeySize)
	defer wipe(material)
	if _, err := io.ReadFull(s.rand, material); err != nil {
		return nil, fmt.Errorf("generate key material: %w", err)
	}
	outerIV := material[:IVSize]
	innerIV := material[IVSize : 2*IVSize]
	innerKey := material[2*IVSize:]
	return s.SealWith(outerIV, innerIV, innerKey, plain)
}

// SealHex — Seal с результатом в hex, формат для DecryptToText.
func (s *Sealer) SealHex(plain []byte) (string, error) {
	blob, err := s.Seal(plain)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(blob), nil
}

// SealWith собирает блоб из заданных значений. Нужен для фиксированных векторов.
// innerKey должен быть 32 байта: только тогда блок ключа занимает ровно 64 байта.
func (s *Sealer) SealWith(outerIV, innerIV, innerKey, plain []byte) ([]byte, error) {
	if len(innerKey) != sealKeySize {
		return nil, fmt.Errorf("%w: inner key must be %d bytes, got %d", ErrCipher, sealKeySize, len(innerKey))
	}
	payload, err := cbcEncrypt(innerKey, innerIV, plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	credPlain := make([]byte, 0, IVSize+sealKeySize)
	credPlain = append(credPlain, innerIV...)
	credPlain = append(credPlain, innerKey...)
	defer wipe(credPlain)

	cred, err := cbcEncrypt(s.secret, outerIV, credPlain)
	if err != nil {
		return nil, fmt.Errorf("wrap credential block: %w", err)
	}

	blob := make([]byte, 0, IVSize+len(cred)+len(payload))
	blob = append(blob, outerIV...)
	blob = append(blob, cred...)
	blob = append(blob, payload...)
	return blob, nil
}
