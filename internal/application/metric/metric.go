package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Управляющий API
	controlRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "control_api_requests_total",
			Help: "Количество запросов к управляющему API",
		},
		[]string{"method", "endpoint", "status"},
	)

	controlRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "control_api_request_duration_seconds",
			Help:    "Время обработки запросов управляющего API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	controlErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "control_api_errors_total",
			Help: "Количество ответов управляющего API со статусом 4xx и 5xx",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Сигнальный сокет
	signalingConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_socket_connected",
			Help: "Открыт ли сокет до сигнального сервера (0 или 1)",
		},
	)

	signalingReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_reconnects_total",
			Help: "Количество попыток переподключения к сигнальному серверу",
		},
	)

	signalingFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_frames_received_total",
			Help: "Количество входящих событий по типу",
		},
		[]string{"event"},
	)

	signalingFramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_frames_sent_total",
			Help: "Количество отправленных событий по типу",
		},
		[]string{"event"},
	)

	// Отправка при закрытом сокете молча отбрасывается, здесь это видно
	signalingSendsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_sends_dropped_total",
			Help: "Количество отброшенных исходящих событий",
		},
		[]string{"event"},
	)

	callStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_status_transitions_total",
			Help: "Количество переходов состояния звонка",
		},
		[]string{"status"},
	)
)

// RecordHTTPMetrics записывает метрики запроса к управляющему API
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)

	controlRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	controlRequestDuration.WithLabelValues(method, endpoint, code).Observe(duration.Seconds())

	if status >= http.StatusBadRequest {
		controlErrorsTotal.WithLabelValues(method, endpoint, code).Inc()
	}
}

func SetWSConnected(connected bool) {
	if connected {
		signalingConnected.Set(1)
		return
	}

	signalingConnected.Set(0)
}

func IncrementReconnects() {
	signalingReconnectsTotal.Inc()
}

// UnknownEvent - метка для событий без подписчиков, чтобы имя от сервера не раздувало число серий
const UnknownEvent = "unknown"

// IncrementFramesReceived считает входящий кадр. Событие без обработчика идет под меткой UnknownEvent.
func IncrementFramesReceived(event string, handled bool) {
	if !handled {
		event = UnknownEvent
	}

	signalingFramesReceived.WithLabelValues(event).Inc()
}

func IncrementFramesSent(event string) {
	signalingFramesSent.WithLabelValues(event).Inc()
}

func IncrementSendsDropped(event string) {
	signalingSendsDropped.WithLabelValues(event).Inc()
}

func IncrementCallStatus(status string) {
	callStatusTransitions.WithLabelValues(status).Inc()
}
