package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
	pkgkafka "PaperPulse/pkg/kafka"
)

// ClickHouseTickStore implements TickStore for ClickHouse.
type ClickHouseTickStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseTickStore creates ClickHouse tick storage.
func NewClickHouseTickStore(db *sql.DB, table string) repository.TickStore {
	return &ClickHouseTickStore{db: db, table: table}
}

func (s *ClickHouseTickStore) StoreBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				t.Timestamp,
				t.Symbol,
				string(t.Class),
				t.Price,
				t.Bid,
				t.Ask,
				t.Volume,
				t.Source,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, class, price, bid, ask, volume, source) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("tick batch insert: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseTickStore) LatestN(ctx context.Context, symbol string, n int) ([]*models.Tick, error) {
	q := fmt.Sprintf("SELECT ts, symbol, class, price, bid, ask, volume, source FROM %s WHERE symbol = ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("latest ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*models.Tick
	for rows.Next() {
		var t models.Tick
		var class string
		if err := rows.Scan(&t.Timestamp, &t.Symbol, &class, &t.Price, &t.Bid, &t.Ask, &t.Volume, &t.Source); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		t.Class = models.AssetClass(class)
		ticks = append(ticks, &t)
	}
	return ticks, rows.Err()
}

func (s *ClickHouseTickStore) LatestPrice(ctx context.Context, symbol string) (float64, time.Time, error) {
	q := fmt.Sprintf("SELECT price, ts FROM %s WHERE symbol = ? ORDER BY ts DESC LIMIT 1", s.table)
	var price float64
	var ts time.Time
	err := s.db.QueryRowContext(ctx, q, symbol).Scan(&price, &ts)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, fmt.Errorf("no ticks for %s", symbol)
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("latest price: %w", err)
	}
	return price, ts, nil
}

func (s *ClickHouseTickStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTickStore) Close() error {
	return nil // Managed by pkg
}

// KafkaTickPublisher implements TickPublisher for Kafka.
type KafkaTickPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaTickPublisher creates a Kafka tick publisher.
func NewKafkaTickPublisher(producer *pkgkafka.Producer, topic string) repository.TickPublisher {
	return &KafkaTickPublisher{producer: producer, topic: topic}
}

func (p *KafkaTickPublisher) PublishBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(t.Symbol),
			Value: tickEnvelope(t),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// PublishMessage sends an arbitrary payload to a topic. Lets the publisher
// double as the sink for aggregated error logs.
func (p *KafkaTickPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaTickPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func tickEnvelope(t *models.Tick) map[string]interface{} {
	return map[string]interface{}{
		"symbol": t.Symbol,
		"class":  string(t.Class),
		"t":      t.Timestamp.Unix(),
		"c":      t.Price,
		"b":      t.Bid,
		"a":      t.Ask,
		"v":      t.Volume,
		"src":    t.Source,
	}
}
