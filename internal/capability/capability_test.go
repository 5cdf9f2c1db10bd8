package capability

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwait_ReturnsResult(t *testing.T) {
	v, err := Await(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAwait_PassesThroughError(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := Await(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCapabilityTimeout)
}

func TestAwait_TimesOutWhenCapabilityNeverAnswers(t *testing.T) {
	never := make(chan struct{})
	defer close(never)

	start := time.Now()
	_, err := Await(context.Background(), 30*time.Millisecond, func(context.Context) (int, error) {
		<-never
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrCapabilityTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAwait_ContextAwareCallbackTimesOut(t *testing.T) {
	_, err := Await(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrCapabilityTimeout)
}

func TestAwait_ParentCancellationIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Await(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrCapabilityTimeout)
}

func TestAwait_NonPositiveTimeout(t *testing.T) {
	_, err := Await(context.Background(), 0, func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrCapabilityTimeout)
}

func TestParseGeo(t *testing.T) {
	g, err := ParseGeo("52.52, 13.405, 12.5\nignored")
	require.NoError(t, err)
	assert.Equal(t, 52.52, g.Lat)
	assert.Equal(t, 13.405, g.Lng)
	require.NotNil(t, g.AccuracyM)
	assert.Equal(t, 12.5, *g.AccuracyM)

	g, err = ParseGeo("-33.9,151.2")
	require.NoError(t, err)
	assert.Nil(t, g.AccuracyM)

	for _, bad := range []string{"", "52.5", "a,b", "1,2,3,4", "91,0", "0,181", "1,2,-3"} {
		_, err := ParseGeo(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidGeo, bad)
	}
}

func TestStaticLocator(t *testing.T) {
	g, err := LocateWithin(context.Background(), StaticLocator{Geo: domain.Geo{Lat: 48.1, Lng: 11.6}}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 48.1, g.Lat)

	_, err = StaticLocator{Geo: domain.Geo{Lat: 100}}.Locate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidGeo)
}

func TestNoLocator(t *testing.T) {
	_, err := LocateWithin(context.Background(), NoLocator{}, time.Second)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandLocator(t *testing.T) {
	requireShell(t)
	l := CommandLocator{Name: "sh", Args: []string{"-c", "echo 52.52,13.405,8"}}

	g, err := LocateWithin(context.Background(), l, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 52.52, g.Lat)
	require.NotNil(t, g.AccuracyM)
	assert.Equal(t, 8.0, *g.AccuracyM)
}

func TestCommandLocator_HangingCommandTimesOut(t *testing.T) {
	requireShell(t)
	l := CommandLocator{Name: "sh", Args: []string{"-c", "sleep 5"}}

	_, err := LocateWithin(context.Background(), l, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrCapabilityTimeout)
}
