package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{fmt.Errorf("select: %w", ErrInvalidCell), CodeInvalidCell},
		{fmt.Errorf("game 1: %w", fmt.Errorf("select: %w", ErrCellOccupied)), CodeCellOccupied},
		{ErrGameAlreadyOver, CodeGameOver},
		{fmt.Errorf("get: %w", ErrGameNotFound), CodeGameNotFound},
		{errors.New("redis down"), CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Code(tt.err), tt.err.Error())
	}
}
