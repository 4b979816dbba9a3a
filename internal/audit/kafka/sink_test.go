package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"confpaper/internal/audit"
	id "confpaper/pkg/domain"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSinkPublish(t *testing.T) {
	t.Run("keys records by paper id", func(t *testing.T) {
		producer := &recordingProducer{}
		sink := NewSink(producer, "paper-audit")
		paperID := id.NewPaperID()

		err := sink.Publish(context.Background(), audit.Event{PaperID: paperID, Action: audit.ActionSubmitted})
		require.NoError(t, err)
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "paper-audit", rec.Topic)
		assert.Equal(t, paperID.String(), string(rec.Key))

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, audit.ActionSubmitted, decoded.Action)
		assert.Equal(t, paperID, decoded.PaperID)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		producer := &recordingProducer{err: errors.New("broker down")}
		sink := NewSink(producer, "paper-audit")
		err := sink.Publish(context.Background(), audit.Event{PaperID: id.NewPaperID()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}
