package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки entry.
const (
	EntryText   = "text"
	EntryBuffer = "buffer"
)

// DecryptTotal — число расшифровок по точке входа и результату
// (ok, decode, malformed, cipher, timeout, error).
var DecryptTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assetkeeper_decrypt_total",
		Help: "Total count of envelope decryptions by entry point and result",
	},
	[]string{"entry", "result"},
)

// UploadTotal — число загрузок ассетов по виду и результату.
var UploadTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assetkeeper_upload_total",
		Help: "Total count of sealed asset uploads by kind and result",
	},
	[]string{"kind", "result"},
)

var registerOnce sync.Once

// RegisterMetrics регистрирует метрики в реестре по умолчанию. Повторный вызов ничего не делает.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(DecryptTotal)
		prometheus.MustRegister(UploadTotal)
	})
}
