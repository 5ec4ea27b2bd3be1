package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/export"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"business rule", types.ErrInsufficientFunds, 2},
		{"wrapped business rule", fmt.Errorf("create task: %w", types.ErrSelfReview), 2},
		{"missing user", ErrUserRequired, 2},
		{"missing name", ErrNameRequired, 2},
		{"malformed id", fmt.Errorf("%w %q: bad", ErrInvalidID, "x"), 2},
		{"missing file", ErrFileRequired, 2},
		{"missing code", ErrCodeRequired, 2},
		{"missing salt", ErrSaltRequired, 2},
		{"unknown format", fmt.Errorf("%w: xml", export.ErrUnsupportedFormat), 2},
		{"unknown hash", export.ErrInvalidHashType, 2},
		{"infrastructure", errors.New("connection refused"), 1},
		{"wrapped infrastructure", fmt.Errorf("failed to initialize application: %w", errors.New("dial tcp")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
