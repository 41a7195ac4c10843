package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/self-checkout/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should copy headers and partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "sale.completed",
			Headers:      map[string]string{"X-Correlation-ID": "abc"},
			Payload:      []byte(`{"total":7.5}`),
			PartitionKey: ptr.New("bread"),
		})

		assert.Equal(t, "sale.completed", rec.Topic)
		assert.Equal(t, []byte(`{"total":7.5}`), rec.Value)
		assert.Equal(t, []byte("bread"), rec.Key)
		assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: "X-Correlation-ID", Value: []byte("abc")})
		assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: "content-type", Value: []byte("application/json")})
	})

	t.Run("Should leave key empty without partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "stock.depleted"})

		assert.Nil(t, rec.Key)
		assert.Len(t, rec.Headers, 1)
	})
}
