// Package envelope реализует двухступенчатую расшифровку защищённых блобов.
//
// Блоб состоит из трёх сегментов:
//
//	[0, 16)   outer IV
//	[16, 80)  блок ключа, зашифрованный AES-CBC секретом процесса
//	[80, end) payload, зашифрованный AES-CBC ключом блоба
//
// Расшифрованный блок ключа содержит inner IV (16 байт) и поле ключа (48 байт):
// 32-байтовый ключ AES-256 и полный блок PKCS#7 padding.
//
// Протокол не аутентифицирует данные: единственный признак подмены —
// неверный padding после расшифровки.
package envelope
