package codec

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// CBORMarshaler is an alternative Marshaler for deployments that run the
// message channel in binary mode.
type CBORMarshaler struct{}

func (CBORMarshaler) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBORMarshaler) NewEncoder(w io.Writer) Encoder {
	return cbor.NewEncoder(w)
}

type CBORUnmarshaler struct{}

func (CBORUnmarshaler) Unmarshal(data []byte, dst any) error {
	return cbor.Unmarshal(data, dst)
}

func (CBORUnmarshaler) NewDecoder(r io.Reader) Decoder {
	return cbor.NewDecoder(r)
}
