package favorites

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind tags the shape a Ref was built from.
type Kind uint8

const (
	// KindBareID is a scalar identifier: 7 or "7".
	KindBareID Kind = iota + 1
	// KindRecord is an object carrying movie_id and/or id.
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindBareID:
		return "bare_id"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Ref is one favorites entry as received from the remote API.
// The zero value is invalid and fails normalization.
type Ref struct {
	kind    Kind
	bare    string
	movieID string
	id      string
}

// Bare builds a Ref from a scalar identifier.
func Bare(id string) Ref {
	return Ref{kind: KindBareID, bare: strings.TrimSpace(id)}
}

// Record builds a Ref from a record's movie_id and id fields.
// Either may be empty.
func Record(movieID, id string) Ref {
	return Ref{kind: KindRecord, movieID: strings.TrimSpace(movieID), id: strings.TrimSpace(id)}
}

// Kind reports the shape of the entry.
func (r Ref) Kind() Kind { return r.kind }

// UnmarshalJSON accepts numbers, strings and objects with movie_id or id.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidRef
	}

	if data[0] == '{' {
		var rec struct {
			MovieID json.RawMessage `json:"movie_id"`
			ID      json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return errors.Join(ErrInvalidRef, err)
		}
		movieID, err := scalar(rec.MovieID)
		if err != nil {
			return err
		}
		id, err := scalar(rec.ID)
		if err != nil {
			return err
		}
		*r = Record(movieID, id)
		return nil
	}

	s, err := scalar(data)
	if err != nil {
		return err
	}
	*r = Bare(s)
	return nil
}

// scalar renders a JSON string or number in canonical form.
// Absent and null values yield an empty string.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.Join(ErrInvalidRef, err)
		}
		return strings.TrimSpace(s), nil
	case '{', '[', 't', 'f':
		return "", ErrInvalidRef
	}

	return canonicalNumber(string(raw))
}

func canonicalNumber(s string) (string, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	// Integers beyond int64 keep their digits.
	if isInteger(s) {
		return s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", errors.Join(ErrInvalidRef, err)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
