package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Dump is a browser local-storage export: every value is the raw JSON text
// stored under its key (the selected session id is a bare string).
type Dump map[string]string

// Export reads every core key present in gw.
func Export(ctx context.Context, gw Gateway) (Dump, error) {
	out := make(Dump, len(CoreKeys))
	for _, key := range CoreKeys {
		data, err := gw.Load(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", key, err)
		}
		if key == KeySelectedSessionID {
			var id string
			if json.Unmarshal(data, &id) == nil {
				out[key] = id
				continue
			}
		}
		out[key] = string(data)
	}
	return out, nil
}

// Import writes every core key found in d into gw and returns the keys it
// wrote. Unknown keys (theme, onboarding, consent) are ignored. Collection
// values must be valid JSON.
func Import(ctx context.Context, gw Gateway, d Dump) ([]string, error) {
	var written []string
	for _, key := range CoreKeys {
		raw, ok := d[key]
		if !ok {
			continue
		}
		data := []byte(raw)
		if key == KeySelectedSessionID {
			// local storage keeps the bare id, the gateways keep JSON.
			var err error
			if data, err = json.Marshal(raw); err != nil {
				return written, fmt.Errorf("encoding %s: %w", key, err)
			}
		} else if !json.Valid(data) {
			return written, fmt.Errorf("importing %s: value is not valid JSON", key)
		}
		if err := gw.Save(ctx, key, data); err != nil {
			return written, &WriteError{Key: key, Err: err}
		}
		written = append(written, key)
	}
	return written, nil
}
