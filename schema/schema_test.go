package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/schema"
)

func TestEncodeDecodeLeafFields(t *testing.T) {
	s := schema.Schema{
		{Name: "id", Kind: schema.KindLeaf, Type: format.Int64, Nullable: false},
		{Name: "name", Kind: schema.KindLeaf, Type: format.Bytes32, Logical: format.LogicalUTF8, Nullable: true},
	}

	buf := schema.Encode(s)

	got, consumed, err := schema.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	require.Equal(t, s, got)
}

func TestEncodeDecodeNestedStruct(t *testing.T) {
	s := schema.Schema{
		{
			Name: "person",
			Kind: schema.KindStruct,
			Names: []string{"name", "age"},
			Children: []schema.Field{
				{Name: "name", Kind: schema.KindLeaf, Type: format.Bytes32, Logical: format.LogicalUTF8, Nullable: true},
				{Name: "age", Kind: schema.KindLeaf, Type: format.Int32, Nullable: true},
			},
		},
	}

	buf := schema.Encode(s)

	got, consumed, err := schema.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	require.Equal(t, s, got)
}

func TestEncodeDecodeListAndMap(t *testing.T) {
	s := schema.Schema{
		{
			Name:     "tags",
			Kind:     schema.KindList,
			Nullable: true,
			Children: []schema.Field{
				{Name: "item", Kind: schema.KindLeaf, Type: format.Int32, Nullable: false},
			},
		},
		{
			Name:     "attrs",
			Kind:     schema.KindMap,
			Nullable: true,
			Children: []schema.Field{
				{Name: "key", Kind: schema.KindLeaf, Type: format.Bytes32, Logical: format.LogicalUTF8, Nullable: false},
				{Name: "value", Kind: schema.KindLeaf, Type: format.Bytes32, Logical: format.LogicalUTF8, Nullable: true},
			},
		},
		{
			Name:       "coords",
			Kind:       schema.KindFixedSizeList,
			FixedWidth: 3,
			Nullable:   false,
			Children: []schema.Field{
				{Name: "item", Kind: schema.KindLeaf, Type: format.Float64, Nullable: false},
			},
		},
	}

	buf := schema.Encode(s)

	got, consumed, err := schema.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	require.Equal(t, s, got)
}

func TestDecodeTruncated(t *testing.T) {
	s := schema.Schema{{Name: "x", Kind: schema.KindLeaf, Type: format.Int32}}
	buf := schema.Encode(s)

	_, _, err := schema.Decode(buf[:len(buf)-2])
	require.Error(t, err)
}
