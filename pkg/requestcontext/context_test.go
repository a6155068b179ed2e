package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActorDefaultsToSystem(t *testing.T) {
	assert.Equal(t, SystemActor, Actor(context.Background()))
	assert.Equal(t, SystemActor, Actor(WithActor(context.Background(), "")))
	assert.Equal(t, "seller-7", Actor(WithActor(context.Background(), "seller-7")))
}

func TestRoles(t *testing.T) {
	ctx := WithRoles(context.Background(), []string{"seller", "admin"})
	assert.True(t, HasRole(ctx, "admin"))
	assert.False(t, HasRole(ctx, "auditor"))
	assert.False(t, HasRole(context.Background(), "admin"))
}

func TestNowUsesInjectedTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}

func TestClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "10.0.0.1", "Chrome on Linux")
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "Chrome on Linux", Device(ctx))
	assert.Empty(t, RequestID(ctx))
}
