package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisAppointmentLocker(client, 5*time.Second), mr
}

func TestRedisLockerRunsCriticalSection(t *testing.T) {
	locker, _ := newTestLocker(t)

	ran := false
	err := locker.WithAppointmentLock(context.Background(), uuid.New(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRedisLockerRejectsHeldLock(t *testing.T) {
	locker, _ := newTestLocker(t)
	appointmentID := uuid.New()

	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		inner := locker.WithAppointmentLock(ctx, appointmentID, func(ctx context.Context) error {
			t.Fatal("critical section ran under a held lock")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)
}

func TestRedisLockerReleasesAfterSection(t *testing.T) {
	locker, mr := newTestLocker(t)
	appointmentID := uuid.New()
	key := "lock:appointment:" + appointmentID.String()

	require.NoError(t, locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		assert.True(t, mr.Exists(key))
		return nil
	}))
	assert.False(t, mr.Exists(key))

	// A new caller acquires immediately once released.
	require.NoError(t, locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		return nil
	}))
}

func TestRedisLockerReleasesOnSectionError(t *testing.T) {
	locker, mr := newTestLocker(t)
	appointmentID := uuid.New()
	sectionErr := errors.New("insert failed")

	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		return sectionErr
	})
	assert.ErrorIs(t, err, sectionErr)
	assert.False(t, mr.Exists("lock:appointment:"+appointmentID.String()))
}

func TestRedisLockerIndependentAppointments(t *testing.T) {
	locker, _ := newTestLocker(t)

	err := locker.WithAppointmentLock(context.Background(), uuid.New(), func(ctx context.Context) error {
		return locker.WithAppointmentLock(ctx, uuid.New(), func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()
	appointmentID := uuid.New()

	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		inner := locker.WithAppointmentLock(ctx, appointmentID, func(ctx context.Context) error {
			t.Fatal("critical section ran under a held lock")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		return nil
	}))
}
