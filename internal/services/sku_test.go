package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"gudang/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker reports the SKUs in taken as existing and records every lookup.
type stubChecker struct {
	taken   map[string]bool
	err     error
	checked []string
}

func (s *stubChecker) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	s.checked = append(s.checked, sku)
	if s.err != nil {
		return false, s.err
	}
	return s.taken[sku], nil
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

// sequence returns successive values from vals on each call.
func sequence(vals ...int) func(int) int {
	i := 0
	return func(int) int {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestSKUPrefix(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"Stationery", "STA"},
		{"electronics", "ELE"},
		{"Al", "AL"},
		{"x", "X"},
		{"  food & drink ", "FOO"},
		{"3D-Printing", "DPR"},
		{"123", "GEN"},
		{"", "GEN"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, services.SKUPrefix(tt.category))
		})
	}
}

func TestSKUGenerator_Candidate(t *testing.T) {
	gen := services.NewSKUGenerator(&stubChecker{},
		services.WithClock(fixedClock(1_700_000_012_345)),
		services.WithRandom(sequence(7)))

	assert.Equal(t, "STA-2345-007", gen.Candidate("Stationery"))
	assert.Equal(t, "AL-2345-007", gen.Candidate("Al"))
}

func TestSKUGenerator_CandidateFormat(t *testing.T) {
	gen := services.NewSKUGenerator(&stubChecker{})
	pattern := regexp.MustCompile(`^[A-Z]{1,3}-\d{4}-\d{3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, gen.Candidate("Electronics"))
	}
}

func TestSKUGenerator_GenerateRetriesOnCollision(t *testing.T) {
	checker := &stubChecker{taken: map[string]bool{
		"ELE-0042-001": true,
		"ELE-0042-002": true,
	}}
	gen := services.NewSKUGenerator(checker,
		services.WithClock(fixedClock(42)),
		services.WithRandom(sequence(1, 2, 3)))

	sku, err := gen.Generate(context.Background(), "Electronics")
	require.NoError(t, err)
	assert.Equal(t, "ELE-0042-003", sku)
	assert.Equal(t, []string{"ELE-0042-001", "ELE-0042-002", "ELE-0042-003"}, checker.checked)
}

func TestSKUGenerator_GenerateGivesUp(t *testing.T) {
	checker := &stubChecker{taken: map[string]bool{"ELE-0042-001": true}}
	gen := services.NewSKUGenerator(checker,
		services.WithClock(fixedClock(42)),
		services.WithRandom(sequence(1)),
		services.WithMaxAttempts(4))

	_, err := gen.Generate(context.Background(), "Electronics")
	require.Error(t, err)
	assert.Equal(t, services.KindConflict, services.KindOf(err))
	assert.Len(t, checker.checked, 4)
}

func TestSKUGenerator_GenerateCheckerFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	gen := services.NewSKUGenerator(&stubChecker{err: storeErr})

	_, err := gen.Generate(context.Background(), "Electronics")
	require.Error(t, err)
	assert.Equal(t, services.KindInternal, services.KindOf(err))
	assert.ErrorIs(t, err, storeErr)
}

func TestSKUGenerator_GenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checker := &stubChecker{}
	gen := services.NewSKUGenerator(checker)

	_, err := gen.Generate(ctx, "Electronics")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, checker.checked)
}

func TestWithMaxAttemptsIgnoresNonPositive(t *testing.T) {
	gen := services.NewSKUGenerator(&stubChecker{}, services.WithMaxAttempts(0))
	assert.Equal(t, services.DefaultSKUMaxAttempts, gen.MaxAttempts())
}
