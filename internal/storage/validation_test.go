package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/etfsave/internal/model"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, validateContext(context.Background()))
	require.NoError(t, validateContext(canceled), "a canceled context is still a context")
	//nolint:staticcheck // nil is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateString(t *testing.T) {
	for _, s := range []string{"069500", "  069500  "} {
		assert.NoError(t, validateString(s, "tickerCode"), s)
	}
	for _, s := range []string{"", "\t \n"} {
		err := validateString(s, "tickerCode")
		require.ErrorIs(t, err, ErrEmptyString)
		assert.Contains(t, err.Error(), "tickerCode")
	}
}

func TestValidateRun(t *testing.T) {
	tests := []struct {
		run     *model.Run
		wantErr error
		name    string
	}{
		{name: "counts recorded", run: &model.Run{Matched: 12, Unmatched: 2, Changes: 1}},
		{name: "empty run", run: &model.Run{}},
		{name: "nil run", run: nil, wantErr: ErrNilParameter},
		{name: "negative matched", run: &model.Run{Matched: -1}, wantErr: ErrInvalidRun},
		{name: "negative unmatched", run: &model.Run{Unmatched: -1}, wantErr: ErrInvalidRun},
		{name: "negative changes", run: &model.Run{Changes: -3}, wantErr: ErrInvalidRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRun(tt.run)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
