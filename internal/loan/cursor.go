package loan

import (
	"encoding/base64"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var ErrBadCursor = errors.New("invalid cursor")

// Cursor marks the last record of a page. Pages run newest first.
type Cursor struct {
	AfterSeq int64 `json:"after_seq"`
}

// EncodeCursor returns "" when there is nothing older than seq.
func EncodeCursor(seq int64) string {
	if seq <= 1 {
		return ""
	}
	b, err := jsoniter.ConfigFastest.Marshal(Cursor{AfterSeq: seq})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	var c Cursor
	if err := jsoniter.ConfigFastest.Unmarshal(b, &c); err != nil || c.AfterSeq <= 1 {
		return Cursor{}, ErrBadCursor
	}
	return c, nil
}

// Apply narrows f to the records after the cursor.
func (c Cursor) Apply(f Filter) Filter {
	if c.AfterSeq > 1 {
		f.MaxSeq = c.AfterSeq - 1
	}
	return f
}
