package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/aretw0/hbnb/pkg/core"
)

// encodeTable renders the key -> record mapping as a JSON object. Floats are
// written so that integral values keep their fractional part and read back as
// floats.
func encodeTable(records map[string]map[string]any) ([]byte, error) {
	out := make(map[string]map[string]any, len(records))
	for key, rec := range records {
		m := make(map[string]any, len(rec))
		for name, v := range rec {
			m[name] = encodable(v)
		}
		out[key] = m
	}
	return json.Marshal(out)
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported float value %v", v)
	}
	return []byte(core.FormatFloat(v)), nil
}

func encodable(v any) any {
	switch x := v.(type) {
	case float64:
		return jsonFloat(x)
	case float32:
		return jsonFloat(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = encodable(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = encodable(item)
		}
		return out
	default:
		return v
	}
}

// decodeTable splits the file into raw records. Only the top-level shape is
// checked here; each record is decoded on its own so one bad entry can be
// skipped.
func decodeTable(data []byte) (map[string]json.RawMessage, error) {
	var table map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&table); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level object")
	}
	return table, nil
}

// decodeRecord decodes one record into native values: integral numbers become
// int and the rest float64.
func decodeRecord(raw json.RawMessage) (map[string]any, error) {
	var rec map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("record is null")
	}
	return core.Normalize(rec).(map[string]any), nil
}
