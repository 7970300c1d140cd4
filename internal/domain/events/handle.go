package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/qrave1/confeet-agent/internal/application/constant"
)

// Handle превращает типизированный обработчик в обработчик сырого payload.
// Кадр, который не удалось разобрать, логируется и пропускается.
func Handle[T any](fn func(T)) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		var payload T

		if err := json.Unmarshal(raw, &payload); err != nil {
			slog.Error(
				"unmarshal event payload",
				slog.Any(constant.Error, err),
				slog.String("payload_type", fmt.Sprintf("%T", payload)),
			)
			return
		}

		fn(payload)
	}
}
