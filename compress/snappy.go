package compress

import "github.com/klauspost/compress/snappy"

// SnappyCodec implements format.Snappy. Snappy trades compression ratio
// for speed relative to Zstd; klauspost/compress ships a drop-in Snappy
// implementation alongside its Zstd codec, so both raw-mode heavyweight
// codecs come from the same module already in the dependency tree.
type SnappyCodec struct{}

var _ Codec = SnappyCodec{}

func NewSnappyCodec() SnappyCodec { return SnappyCodec{} }

func (c SnappyCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return snappy.Encode(nil, data), nil
}

func (c SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return snappy.Decode(nil, data)
}
