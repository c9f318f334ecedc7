package envelope

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
)

// Decryptor выполняет двухступенчатую расшифровку конверта.
// Секрет неизменяем после создания, поэтому Decryptor безопасен
// для конкурентного использования.
type Decryptor struct {
	secret []byte
}

// NewDecryptor создаёт Decryptor из значения AES_SECRET_KEY.
//
// Эффективный ключ — hexDecode(hexEncode(UTF8(secret))), т.е. сами байты строки.
// Длина должна соответствовать AES-128/192/256, иначе ErrConfig.
func NewDecryptor(secret string) (*Decryptor, error) {
	key, err := secretKeyBytes(secret)
	if err != nil {
		return nil, err
	}
	return &Decryptor{secret: key}, nil
}

// secretKeyBytes повторяет преобразование ключа производящей стороны:
// строка кодируется в hex и обратно декодируется перед использованием.
func secretKeyBytes(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: AES_SECRET_KEY is empty", ErrConfig)
	}
	key, err := hex.DecodeString(hex.EncodeToString([]byte(secret)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !validKeySize(len(key)) {
		return nil, fmt.Errorf("%w: key is %d bytes, want 16, 24 or 32", ErrConfig, len(key))
	}
	return key, nil
}

// DecryptToText принимает блоб в hex и возвращает расшифрованный текст.
// Невалидные последовательности UTF-8 заменяются на U+FFFD.
func (d *Decryptor) DecryptToText(hexBlob string) (string, error) {
	return d.DecryptTextContext(context.Background(), hexBlob)
}

// DecryptToBuffer принимает сырой блоб и возвращает расшифрованные байты.
func (d *Decryptor) DecryptToBuffer(raw []byte) ([]byte, error) {
	return d.Decrypt(context.Background(), raw)
}

// DecryptTextContext — DecryptToText с учётом дедлайна контекста.
func (d *Decryptor) DecryptTextContext(ctx context.Context, hexBlob string) (string, error) {
	raw, err := hex.DecodeString(hexBlob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	plain, err := d.Decrypt(ctx, raw)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(plain), "\uFFFD"), nil
}

// Decrypt — общий конвейер обеих точек входа.
//
// Контекст проверяется до первой ступени и между ступенями;
// начатая ступень AES-CBC всегда выполняется до конца.
func (d *Decryptor) Decrypt(ctx context.Context, raw []byte) ([]byte, error) {
	outerIV, credCiphertext, payload, err := SplitOuter(raw)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Ступень 1: снимаем обёртку с ключа блоба. Padding проверяется
	// позже, на поле ключа, чтобы CredentialBlock оставался 64 байта.
	cred, err := cbcDecryptRaw(d.secret, outerIV, credCiphertext)
	if err != nil {
		return nil, fmt.Errorf("unwrap credential block: %w", err)
	}
	defer wipe(cred)

	innerIV, keyField, err := SplitCredential(cred)
	if err != nil {
		return nil, err
	}
	innerKey, err := pkcs7Unpad(keyField)
	if err != nil {
		return nil, fmt.Errorf("unwrap credential block: %w", err)
	}
	if !validKeySize(len(innerKey)) {
		return nil, fmt.Errorf("unwrap credential block: %w: inner key size %d", ErrCipher, len(innerKey))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Ступень 2: расшифровка payload ключом блоба.
	plain, err := cbcDecrypt(innerKey, innerIV, payload)
	if err != nil {
		return nil, fmt.Errorf("decrypt payload: %w", err)
	}
	return plain, nil
}
