package types

import (
	"encoding/json"
	"fmt"
)

func jsonValue(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %T: %w", v, err)
	}
	return string(raw), nil
}

func jsonScan(dst any, value interface{}) error {
	if value == nil {
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("unsupported scan type %T for %T", value, dst)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %T: %w", dst, err)
	}
	return nil
}

func toBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
