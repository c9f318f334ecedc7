package envelope

import "fmt"

// Размеры сегментов блоба.
const (
	IVSize            = 16
	CredBlockSize     = 64
	PayloadOffset     = IVSize + CredBlockSize // 80
	InnerKeyFieldSize = CredBlockSize - IVSize // 48
	MinBlobSize       = PayloadOffset
	blockSize         = 16
)

// SplitOuter делит блоб на outer IV, зашифрованный блок ключа и зашифрованный payload.
// Возвращаемые срезы ссылаются на исходный массив, копий не делается.
func SplitOuter(blob []byte) (outerIV, credCiphertext, payloadCiphertext []byte, err error) {
	if len(blob) < MinBlobSize {
		return nil, nil, nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrMalformedBlob, len(blob), MinBlobSize)
	}
	// cap ограничен, чтобы append по сегменту не затёр соседний.
	outerIV = blob[0:IVSize:IVSize]
	credCiphertext = blob[IVSize:PayloadOffset:PayloadOffset]
	payloadCiphertext = blob[PayloadOffset:]
	return outerIV, credCiphertext, payloadCiphertext, nil
}

// SplitCredential делит расшифрованный блок ключа на inner IV и поле ключа (48 байт).
func SplitCredential(credPlaintext []byte) (innerIV, innerKey []byte, err error) {
	if len(credPlaintext) != CredBlockSize {
		return nil, nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedCredentialBlock, len(credPlaintext), CredBlockSize)
	}
	innerIV = credPlaintext[0:IVSize:IVSize]
	innerKey = credPlaintext[IVSize:CredBlockSize]
	return innerIV, innerKey, nil
}

// ValidateSealed проверяет только разметку блоба, без расшифровки:
// минимальную длину и выравнивание payload по размеру блока AES.
func ValidateSealed(blob []byte) error {
	_, _, payload, err := SplitOuter(blob)
	if err != nil {
		return err
	}
	if len(payload) == 0 || len(payload)%blockSize != 0 {
		return fmt.Errorf("%w: payload segment of %d bytes is not block aligned", ErrMalformedBlob, len(payload))
	}
	return nil
}
