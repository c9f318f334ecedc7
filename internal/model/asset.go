package model

import "time"

// Виды защищённых ассетов.
const (
	// KindCredential — текстовый секрет; хранится как hex-строка блоба.
	KindCredential = "credential"
	// KindModel — бинарный файл модели; хранится как сырой блоб.
	KindModel = "model"
)

// Asset — серверная модель запечатанного блоба. Сервер хранит только
// шифртекст; открытый текст нигде не сохраняется.
type Asset struct {
	ID   string `gorm:"primaryKey;type:uuid"`
	Name string `gorm:"not null;uniqueIndex"`
	Kind string `gorm:"not null"`

	Sealed []byte `gorm:"not null"`
	Size   int64  `gorm:"not null"`

	// Кто загрузил последнюю версию
	UploadedBy int64 `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
