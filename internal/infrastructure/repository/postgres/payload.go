package postgres

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// encodePayload stream-encodes a JSONB column value into a pooled buffer so
// report and slot payloads do not grow a fresh intermediate buffer on every
// write. Only the final column value is allocated.
func encodePayload(value any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(value); err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	raw := buf.Bytes()
	// The stream encoder terminates the value with a newline.
	for len(raw) > 0 && raw[len(raw)-1] == '\n' {
		raw = raw[:len(raw)-1]
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func decodePayload(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := sonic.ConfigDefault.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}
