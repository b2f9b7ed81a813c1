package compress

// NoOpCodec implements format.None: it returns its input unchanged. It
// exists so GeneralCodec's candidate set always has a zero-cost fallback
// when compressing a buffer would only add overhead.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func NewNoOpCodec() NoOpCodec { return NoOpCodec{} }

func (c NoOpCodec) Compress(data []byte) ([]byte, error) { return append([]byte(nil), data...), nil }

func (c NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
