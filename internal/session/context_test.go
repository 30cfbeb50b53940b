package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDRoundTrip(t *testing.T) {
	_, ok := UserIDFrom(context.Background())
	assert.False(t, ok)

	ctx := WithInfo(context.Background(), Info{UserID: 42})
	id, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	ctx = WithInfo(context.Background(), Info{UserID: 7, SessionID: "s", Token: "t"})
	info, ok := InfoFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "s", info.SessionID)
}

func TestZeroUserIsAnonymous(t *testing.T) {
	_, ok := UserIDFrom(WithInfo(context.Background(), Info{SessionID: "s"}))
	assert.False(t, ok)
}
