package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealer/pkg/requestcontext"
)

func TestNewRecordCapturesAttributionAndSnapshots(t *testing.T) {
	fixed := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithActor(context.Background(), "seller-1")
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithTime(ctx, fixed)

	after := map[string]any{"status": "ACTIVE"}
	rec, err := NewRecord(ctx, EntitySale, "sale-1", ActionCreate, nil, after)
	require.NoError(t, err)

	after["status"] = "mutated"

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "seller-1", rec.Actor)
	assert.Equal(t, "req-42", rec.RequestID)
	assert.Equal(t, fixed, rec.Timestamp)
	assert.JSONEq(t, "null", string(rec.Before))
	assert.JSONEq(t, `{"status":"ACTIVE"}`, string(rec.After))
}

func TestNewIDIsSortable(t *testing.T) {
	first := NewID()
	time.Sleep(2 * time.Millisecond)
	second := NewID()
	assert.Less(t, first, second)
}

func TestNewErrorEventDefaultsActor(t *testing.T) {
	ev := NewErrorEvent(context.Background(), "register_sale", "timeout", "", "deadline exceeded",
		map[string]any{"vehicle_id": "v-1"})
	assert.Equal(t, requestcontext.SystemActor, ev.Actor)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(ev.Context, &fields))
	assert.Equal(t, "v-1", fields["vehicle_id"])
}
