package usecase

import (
	"context"
	"encoding/json"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	pkgkafka "PaperPulse/pkg/kafka"
	"PaperPulse/pkg/util"
)

// KafkaTicksHandler ingests tick events from the bus into the tick store.
// Used in kafka backend mode, where the collector publishes instead of
// writing directly.
type KafkaTicksHandler struct {
	topic   string
	store   drepo.TickStore
	metrics drepo.Metrics
}

func NewKafkaTicksHandler(topic string, store drepo.TickStore, metrics drepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, class, t, c, b, a, v, src}
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		Class  string  `json:"class"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		B      float64 `json:"b"`
		A      float64 `json:"a"`
		V      float64 `json:"v"`
		Src    string  `json:"src"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	ts := util.UnixAuto(m.T)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.store.StoreBatch(ctx, []*models.Tick{{
		Symbol:    m.Symbol,
		Class:     models.AssetClass(m.Class),
		Price:     m.C,
		Bid:       m.B,
		Ask:       m.A,
		Volume:    m.V,
		Timestamp: ts,
		Source:    m.Src,
	}})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
