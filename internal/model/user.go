package model

// User — оператор, которому разрешено загружать и читать ассеты.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"not null;uniqueIndex"`
	Password string `gorm:"not null"` // bcrypt-хеш
}
