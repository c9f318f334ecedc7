package envelope

import "errors"

var (
	// ErrConfig — секретный ключ отсутствует или имеет недопустимую длину.
	// Возникает только при инициализации; процесс не должен продолжать работу.
	ErrConfig = errors.New("envelope: invalid secret key configuration")

	// ErrDecode — вход не является корректной hex-строкой.
	ErrDecode = errors.New("envelope: invalid hex input")

	// ErrMalformedBlob — блоб короче 80 байт (или сегмент payload не выровнен по блоку).
	ErrMalformedBlob = errors.New("envelope: malformed blob")

	// ErrMalformedCredentialBlock — расшифрованный блок ключа не равен 64 байтам.
	ErrMalformedCredentialBlock = errors.New("envelope: malformed credential block")

	// ErrCipher — ошибка AES-CBC: неверный padding, размер ключа/IV или шифртекста.
	// Основной признак неверного секрета или повреждённого блоба.
	ErrCipher = errors.New("envelope: cipher failure")
)
