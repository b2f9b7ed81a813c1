package page_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/page"
)

func TestValidityRoundTripAllValid(t *testing.T) {
	var buf []byte
	buf = page.WriteValidity(buf, []bool{true, true, true})

	validity, consumed, err := page.ReadValidity(buf, 3)
	require.NoError(t, err)
	require.Nil(t, validity)
	require.Equal(t, 4, consumed)
}

func TestValidityRoundTripMixed(t *testing.T) {
	in := []bool{true, false, true, true, false}

	var buf []byte
	buf = page.WriteValidity(buf, in)

	validity, consumed, err := page.ReadValidity(buf, len(in))
	require.NoError(t, err)
	require.Equal(t, in, validity)
	require.Equal(t, len(buf), consumed)
}

func TestValidityNilMeansAllValid(t *testing.T) {
	var buf []byte
	buf = page.WriteValidity(buf, nil)

	validity, _, err := page.ReadValidity(buf, 5)
	require.NoError(t, err)
	require.Nil(t, validity)
}

func TestLevelsRoundTrip(t *testing.T) {
	lv := page.Levels{ValueCount: 3, Rep: []byte{1, 0, 1}, Def: []byte{2, 2, 1}}

	var buf []byte
	buf = page.WriteLevels(buf, lv)

	got, consumed, err := page.ReadLevels(buf)
	require.NoError(t, err)
	require.Equal(t, lv, got)
	require.Equal(t, len(buf), consumed)
}

func TestPageCount(t *testing.T) {
	require.Equal(t, 0, page.PageCount(0, 100))
	require.Equal(t, 1, page.PageCount(1, 100))
	require.Equal(t, 1, page.PageCount(100, 100))
	require.Equal(t, 2, page.PageCount(101, 100))
}
