package codec

import (
	"io"

	"github.com/goccy/go-json"
)

// JSONMarshaler is the default Marshaler for outbound messages. The
// backend speaks JSON on both the HTTP and the message channel.
type JSONMarshaler struct{}

func (JSONMarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONMarshaler) NewEncoder(w io.Writer) Encoder {
	return json.NewEncoder(w)
}

type JSONUnmarshaler struct{}

func (JSONUnmarshaler) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func (JSONUnmarshaler) NewDecoder(r io.Reader) Decoder {
	return json.NewDecoder(r)
}
