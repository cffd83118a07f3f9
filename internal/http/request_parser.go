package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

const maxBodyBytes = 1 << 20

// ParseCriteria reads the list filters from the query string. Missing values
// and "all" leave a filter unset.
func ParseCriteria(q url.Values) (filter.Criteria, error) {
	c := filter.Criteria{
		Type:       core.TxType(strings.ToLower(queryValue(q, "type"))),
		CategoryID: queryValue(q, "category"),
		Month:      queryValue(q, "month"),
	}
	if c.Type != "" && c.Type != filter.All && !c.Type.Valid() {
		return filter.Criteria{}, fmt.Errorf("%w: type must be income, expense or all", errBadRequest)
	}
	r, err := filter.ParseRange(queryValue(q, "range"))
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	c.Range = r
	return c, nil
}

// ParsePositiveInt reads an optional positive integer, falling back to def.
func ParsePositiveInt(q url.Values, key string, def int) (int, error) {
	v := queryValue(q, key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, key)
	}
	return n, nil
}

// ParseTxType reads a transaction type, defaulting to def.
func ParseTxType(q url.Values, key string, def core.TxType) (core.TxType, error) {
	v := strings.ToLower(queryValue(q, key))
	if v == "" {
		return def, nil
	}
	t := core.TxType(v)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %s must be income or expense", errBadRequest, key)
	}
	return t, nil
}

func queryValue(q url.Values, key string) string {
	return sanitizeInput(q.Get(key))
}

// DecodeJSON reads a single JSON object into dst. Unknown fields, trailing
// data and bodies over 1 MiB are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: content type must be application/json", errBadRequest)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body too large", errBadRequest)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: body is empty", errBadRequest)
		default:
			return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequest)
	}
	return nil
}

// PathID returns the {id} path segment.
func PathID(r *http.Request) (string, error) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		return "", fmt.Errorf("%w: missing id", errBadRequest)
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
