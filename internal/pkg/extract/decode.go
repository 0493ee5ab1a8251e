package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/titanous/json5"
)

// Decode parses a single strict JSON document, keeping object keys in order.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: trailing data after value")
	}
	return v, nil
}

// DecodeLenient accepts the JavaScript-flavoured blobs found in page scripts
// (unquoted keys, single quotes, trailing commas). Strict JSON is tried first,
// then a repaired copy, then JSON5, then Hjson. Only the strict and repaired
// paths keep key order.
func DecodeLenient(data []byte) (Value, error) {
	v, strictErr := Decode(data)
	if strictErr == nil {
		return v, nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(data)); err == nil && repaired != "" {
		if v, err := Decode([]byte(repaired)); err == nil && isContainer(v) {
			return v, nil
		}
	}

	var out any
	if err := json5.Unmarshal(data, &out); err == nil {
		if v := FromAny(out); isContainer(v) {
			return v, nil
		}
	}

	out = nil
	if err := hjson.Unmarshal(data, &out); err == nil {
		if v := FromAny(out); isContainer(v) {
			return v, nil
		}
	}

	return nil, strictErr
}

func isContainer(v Value) bool {
	switch v.(type) {
	case Mapping, Sequence:
		return true
	}
	return false
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("number %q: %w", t.String(), err)
		}
		// out of range decodes to ±Inf, which AsNumber rejects
		return Number(f), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (Value, error) {
	m := Mapping{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if i, dup := index[key]; dup {
			m[i].Value = v
			continue
		}
		index[key] = len(m)
		m = append(m, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	s := Sequence{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		s = append(s, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return s, nil
}
