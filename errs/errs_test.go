package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/errs"
)

func TestOutOfSpecMessage(t *testing.T) {
	e := errs.NewOutOfSpec("bad tag %d", 7)
	require.EqualError(t, e, "out of spec: bad tag 7")

	var target *errs.OutOfSpec
	require.True(t, errors.As(error(e), &target))
}

func TestNotYetImplementedMessage(t *testing.T) {
	e := errs.NewNotYetImplemented("delta over %s", "Int128")
	require.EqualError(t, e, "not yet implemented: delta over Int128")

	var target *errs.NotYetImplemented
	require.True(t, errors.As(error(e), &target))
}

func TestCodecFailureMessage(t *testing.T) {
	cause := fmt.Errorf("buffer too small")
	e := errs.NewCodecFailure("zstd", cause)
	require.EqualError(t, e, "codec failure (zstd): buffer too small")
	require.Equal(t, "zstd", e.Codec)

	var target *errs.CodecFailure
	require.True(t, errors.As(error(e), &target))
}

func TestSentinelsAreOutOfSpec(t *testing.T) {
	sentinels := []error{
		errs.ErrUnknownCodecTag,
		errs.ErrTruncatedPage,
		errs.ErrValueCountMismatch,
		errs.ErrInvalidOffsets,
		errs.ErrBitWidthOutOfRange,
	}

	for _, s := range sentinels {
		var target *errs.OutOfSpec
		require.True(t, errors.As(s, &target), "expected %v to be an OutOfSpec", s)
	}
}

func TestErrorKindsAreDistinguishable(t *testing.T) {
	var oos *errs.OutOfSpec
	var nyi *errs.NotYetImplemented

	err := error(errs.NewNotYetImplemented("x"))
	require.False(t, errors.As(err, &oos))
	require.True(t, errors.As(err, &nyi))
}
