package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// validKeySize сообщает, подходит ли длина ключа для AES-128/192/256.
func validKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// cbcDecryptRaw расшифровывает ciphertext в режиме AES-CBC без снятия padding.
func cbcDecryptRaw(key, iv, ciphertext []byte) ([]byte, error) {
	if !validKeySize(len(key)) {
		return nil, fmt.Errorf("%w: key size %d", ErrCipher, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv size %d", ErrCipher, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext of %d bytes is not block aligned", ErrCipher, len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// cbcDecrypt расшифровывает AES-CBC и снимает PKCS#7 padding.
func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	out, err := cbcDecryptRaw(key, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	plain, err := pkcs7Unpad(out)
	if err != nil {
		wipe(out)
		return nil, err
	}
	return plain, nil
}

// cbcEncrypt дополняет plain по PKCS#7 и шифрует AES-CBC.
func cbcEncrypt(key, iv, plain []byte) ([]byte, error) {
	if !validKeySize(len(key)) {
		return nil, fmt.Errorf("%w: key size %d", ErrCipher, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv size %d", ErrCipher, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	padded := pkcs7Pad(plain)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	wipe(padded)
	return out, nil
}

func pkcs7Pad(buf []byte) []byte {
	pad := blockSize - len(buf)%blockSize
	out := make([]byte, len(buf)+pad)
	copy(out, buf)
	for i := len(buf); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

// pkcs7Unpad проверяет и снимает padding. Все ошибки padding
// возвращаются одним и тем же сообщением.
func pkcs7Unpad(buf []byte) ([]byte, error) {
	if len(buf) == 0 || len(buf)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padding", ErrCipher)
	}
	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", ErrCipher)
	}
	for i := 0; i < pad; i++ {
		if buf[len(buf)-1-i] != byte(pad) {
			return nil, fmt.Errorf("%w: invalid padding", ErrCipher)
		}
	}
	return buf[:len(buf)-pad], nil
}

// wipe обнуляет буфер с ключевым материалом.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
