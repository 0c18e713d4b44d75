package services

import (
	"context"
	"testing"
	"time"

	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeStore(t *testing.T) {
	clock := testingutil.NewFakeClock()
	store := newChallengeStore(2*time.Minute, clock.Now)
	defer store.close()

	t.Run("TakeConsumes", func(t *testing.T) {
		store.put("a", 90)
		angle, ok := store.take("a")
		require.True(t, ok)
		assert.Equal(t, 90, angle)

		_, ok = store.take("a")
		assert.False(t, ok)
	})

	t.Run("Expired", func(t *testing.T) {
		store.put("b", 45)
		clock.Advance(2*time.Minute + time.Second)
		_, ok := store.take("b")
		assert.False(t, ok)
	})

	t.Run("Purge", func(t *testing.T) {
		store.put("c", 10)
		store.put("d", 20)
		clock.Advance(3 * time.Minute)
		store.put("e", 30)
		store.purge()
		assert.Equal(t, 1, store.len())
	})
}

func TestCaptchaServiceRotate(t *testing.T) {
	ctx := context.Background()
	clock := testingutil.NewFakeClock()
	svc, err := NewCaptchaServiceRotate(2*time.Minute, 10, 160, clock.Now)
	require.NoError(t, err)
	defer svc.Close()

	challenge, err := svc.GenerateRotate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, challenge.ID)
	assert.NotEmpty(t, challenge.MasterImageBase64)
	assert.NotEmpty(t, challenge.ThumbImageBase64)
	assert.Equal(t, clock.Now().Add(2*time.Minute), challenge.ExpiresAt)

	targetOf := func(id string) int {
		impl := svc.(*captchaServiceImpl)
		impl.store.mu.Lock()
		defer impl.store.mu.Unlock()
		return impl.store.m[id].targetAngle
	}

	// the thumb is rotated back by the complement of the target angle
	answer := float64(360 - targetOf(challenge.ID))
	assert.False(t, svc.VerifyRotate(ctx, "unknown", answer))
	assert.True(t, svc.VerifyRotate(ctx, challenge.ID, answer))
	assert.False(t, svc.VerifyRotate(ctx, challenge.ID, answer), "challenge is single use")

	t.Run("FarOffAngle", func(t *testing.T) {
		challenge, err := svc.GenerateRotate(ctx)
		require.NoError(t, err)

		wrong := float64((360 - targetOf(challenge.ID) + 180) % 360)
		assert.False(t, svc.VerifyRotate(ctx, challenge.ID, wrong))
	})

	t.Run("WithinPadding", func(t *testing.T) {
		challenge, err := svc.GenerateRotate(ctx)
		require.NoError(t, err)

		near := float64(360 - targetOf(challenge.ID) + 5)
		assert.True(t, svc.VerifyRotate(ctx, challenge.ID, near))
	})
}
