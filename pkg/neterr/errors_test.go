package neterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("outer: %w", New(KindNetwork, StepResolveNonce, cause))

	require.ErrorIs(t, err, ErrNetwork)
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, &Error{Kind: KindNetwork, Step: StepResolveNonce})
	require.NotErrorIs(t, err, &Error{Kind: KindNetwork, Step: StepBroadcast})
	require.NotErrorIs(t, err, ErrAccessKeyNotFound)
	require.Equal(t, KindNetwork, KindOf(err))
	require.Equal(t, StepResolveNonce, StepOf(err))
}

func TestErrorString(t *testing.T) {
	err := Newf(KindAccessKeyNotFound, StepResolveNonce, "key %s", "ed25519:abc")
	require.Equal(t, "resolve nonce: access key not found: key ed25519:abc", err.Error())
	require.Equal(t, "configuration error", ErrConfig.Error())
	require.Equal(t, "kind(200)", Kind(200).String())
}

func TestWithStep(t *testing.T) {
	require.NoError(t, WithStep(nil, StepQuery))

	plain := errors.New("boom")
	err := WithStep(plain, StepQuery)
	require.Equal(t, KindUnknown, KindOf(err))
	require.Equal(t, StepQuery, StepOf(err))
	require.ErrorIs(t, err, plain)

	stepless := New(KindEncoding, StepNone, plain)
	err = WithStep(stepless, StepBuildAndSign)
	require.Equal(t, StepBuildAndSign, StepOf(err))
	require.Equal(t, StepNone, stepless.Step)

	tagged := New(KindNetwork, StepBroadcast, plain)
	require.Equal(t, StepBroadcast, StepOf(WithStep(tagged, StepQuery)))
}
