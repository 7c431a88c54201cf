package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
)

func TestTransitionAllowsFlow(t *testing.T) {
	cases := []struct{ from, to State }{
		{StateBrowsing, StateReviewing},
		{StateReviewing, StateConfirmingPartial},
		{StateConfirmingPartial, StateSubmitting},
		{StateSubmitting, StateSubmitted},
		{StateSubmitting, StateFailed},
		{StateFailed, StateReviewing},
		{StateSubmitted, StateBrowsing},
	}

	for _, tc := range cases {
		got, err := Transition(tc.from, tc.to)
		require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.to, got)
	}
}

func TestTransitionRejectsSkips(t *testing.T) {
	cases := []struct{ from, to State }{
		{StateBrowsing, StateSubmitting},
		{StateSubmitted, StateSubmitting},
		{StateConfirmingPartial, StateSubmitted},
	}

	for _, tc := range cases {
		got, err := Transition(tc.from, tc.to)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, got, "state stays put on rejection")

		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	}
}
