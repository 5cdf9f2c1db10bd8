package capability

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// Locator produces a position fix.
type Locator interface {
	Locate(ctx context.Context) (*domain.Geo, error)
}

// NoLocator is used when no position source is configured.
type NoLocator struct{}

func (NoLocator) Locate(context.Context) (*domain.Geo, error) {
	return nil, fmt.Errorf("geolocation: %w", ErrUnsupported)
}

// StaticLocator always returns the same position, e.g. from flags.
type StaticLocator struct {
	Geo domain.Geo
}

func (l StaticLocator) Locate(context.Context) (*domain.Geo, error) {
	g := l.Geo
	return &g, g.Validate()
}

// CommandLocator runs an external program that prints "lat,lng" or
// "lat,lng,accuracy_m" on its first output line.
type CommandLocator struct {
	Name string
	Args []string
}

func (l CommandLocator) Locate(ctx context.Context) (*domain.Geo, error) {
	cmd := exec.CommandContext(ctx, l.Name, l.Args...)
	cmd.WaitDelay = 100 * time.Millisecond
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", l.Name, err)
	}
	return ParseGeo(string(out))
}

// ParseGeo parses "lat,lng[,accuracy_m]" and validates the ranges.
func ParseGeo(s string) (*domain.Geo, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	parts := strings.Split(line, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidGeo, line)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidGeo, line)
		}
		vals[i] = v
	}
	g := &domain.Geo{Lat: vals[0], Lng: vals[1]}
	if len(vals) == 3 {
		g.AccuracyM = &vals[2]
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// LocateWithin asks l for a position, giving up after timeout.
func LocateWithin(ctx context.Context, l Locator, timeout time.Duration) (*domain.Geo, error) {
	return Await(ctx, timeout, l.Locate)
}
