package model

// CachedAsset — запечатанный ассет в локальном кэше клиента.
// Sealed хранится ровно в том виде, в каком его отдал сервер:
// hex-строка для credential, сырые байты для model.
type CachedAsset struct {
	ID        string
	Name      string
	Kind      string
	Sealed    []byte
	Size      int64
	FetchedAt int64
}
