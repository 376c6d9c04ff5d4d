package common

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/citizenwallet/govdash/pkg/governance"
)

// IsJSON reports whether the request body is json
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// ReadValues reads a form or a flat json object into url.Values. Json arrays become
// repeated values.
func ReadValues(r *http.Request) (url.Values, error) {
	if !IsJSON(r) {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %w", governance.ErrInvalidInput, err)
		}
		return r.PostForm, nil
	}

	var body map[string]json.RawMessage
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %w", governance.ErrInvalidInput, err)
		}
	}

	v := url.Values{}
	for k, raw := range body {
		vals, err := jsonValues(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", governance.ErrInvalidInput, k, err)
		}
		v[k] = vals
	}

	return v, nil
}

func jsonValues(raw json.RawMessage) ([]string, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		vals := make([]string, 0, len(arr))
		for _, a := range arr {
			s, err := jsonScalar(a)
			if err != nil {
				return nil, err
			}
			vals = append(vals, s)
		}
		return vals, nil
	}

	s, err := jsonScalar(raw)
	if err != nil {
		return nil, err
	}

	return []string{s}, nil
}

func jsonScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprint(b), nil
	}

	return "", fmt.Errorf("unsupported value %s", string(raw))
}
