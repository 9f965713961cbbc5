package aggregate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWidgetMissing = New(KindNotFound, "widget not found")

func TestFailMatchesSentinel(t *testing.T) {
	err := Fail(errWidgetMissing, "remove widget", "w-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errWidgetMissing))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "remove widget: widget not found: w-1", err.Error())
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("load: %w", Fail(errWidgetMissing, "get", ""))

	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindIllegalState))
	assert.True(t, errors.Is(err, errWidgetMissing))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindIllegalState}, "illegal_state"},
		{&Error{Kind: KindIllegalState, Op: "pick"}, "pick (illegal_state)"},
		{&Error{Kind: KindIllegalState, Message: "already picked"}, "already picked"},
		{&Error{Kind: KindIllegalState, Op: "pick", Message: "already picked"}, "pick: already picked"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
