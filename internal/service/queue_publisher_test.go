package queue_publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/batiflow/batiflow-api/internal/queue"
)

func TestPublishDisabledWithoutURL(t *testing.T) {
	evt := q.CommandeStatusEvent{IDCommande: 1, Statut: "en_attente", MontantTotal: "10.00"}

	start := time.Now()
	err := PublishCommandeStatus(context.Background(), "", evt)
	require.NoError(t, err, "no broker configured means no-op, not an error")
	assert.Less(t, time.Since(start), time.Second, "must return without attempting a connection")
}

func TestPublishMalformedURL(t *testing.T) {
	evt := q.CommandeStatusEvent{IDCommande: 1}
	assert.Error(t, PublishCommandeStatus(context.Background(), "not-an-amqp-url", evt))
}
