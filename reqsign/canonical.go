package reqsign

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// canonicalMessage builds the exact byte sequence a signature covers:
// timestamp, nonce and payload joined by ".". Both sides must produce
// identical bytes; the verifier therefore feeds in the raw body exactly
// as received, never a re-serialized form.
func canonicalMessage(timestamp int64, nonce string, payload []byte) []byte {
	ts := strconv.FormatInt(timestamp, 10)

	msg := make([]byte, 0, len(ts)+1+len(nonce)+1+len(payload))
	msg = append(msg, ts...)
	msg = append(msg, '.')
	msg = append(msg, nonce...)
	msg = append(msg, '.')
	msg = append(msg, payload...)

	return msg
}

// EncodePayload serializes a structured payload into its canonical byte
// form using JSON. encoding/json emits struct fields in declaration order
// and map keys sorted, so the same logical payload always yields the same
// bytes. The returned bytes are what must be sent as the request body.
func EncodePayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return data, nil
}
