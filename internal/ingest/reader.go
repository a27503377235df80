package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/obsidianstack/sensorfusion/internal/store"
	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// ErrMalformed is wrapped by every row-level parse error.
var ErrMalformed = errors.New("ingest: malformed row")

// Reader yields records from a CSV stream one row at a time.
type Reader struct {
	csv     *csv.Reader
	started bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (types.Record, error) {
	for {
		fields, err := r.csv.Read()
		if err == io.EOF {
			return types.Record{}, io.EOF
		}
		if err != nil {
			return types.Record{}, fmt.Errorf("ingest: %w", err)
		}
		line, _ := r.csv.FieldPos(0)

		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		first := !r.started
		r.started = true

		if first && isHeader(fields) {
			slog.Debug("ingest: skipping header row", "line", line)
			continue
		}

		rec, err := parseRow(fields)
		if err != nil {
			return types.Record{}, fmt.Errorf("line %d: %w", line, err)
		}
		if name := store.TruncateName(rec.Name); name != rec.Name {
			slog.Warn("ingest: sensor name truncated",
				"line", line, "len", len(rec.Name), "max", types.MaxNameLen)
			rec.Name = name
		}
		return rec, nil
	}
}

// ReadAll drains r and returns every record in order.
func ReadAll(r io.Reader) ([]types.Record, error) {
	rd := NewReader(r)
	var out []types.Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ParseTime converts "H.MM" into minutes since midnight. A value with no
// fractional part is taken as whole hours.
func ParseTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, hasMinutes := strings.Cut(s, ".")

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: bad hour in time %q", ErrMalformed, s)
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(mm)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("%w: bad minutes in time %q", ErrMalformed, s)
		}
	}
	return hours*60 + minutes, nil
}

func parseRow(fields []string) (types.Record, error) {
	if len(fields) < 3 {
		return types.Record{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformed, len(fields))
	}
	t, err := ParseTime(fields[0])
	if err != nil {
		return types.Record{}, err
	}
	name := strings.TrimSpace(fields[1])
	if name == "" {
		return types.Record{}, fmt.Errorf("%w: empty sensor name", ErrMalformed)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return types.Record{}, fmt.Errorf("%w: bad value %q", ErrMalformed, fields[2])
	}
	return types.Record{Time: t, Name: name, Value: v}, nil
}

// isHeader reports whether a row is a column header: neither its time nor
// its value field parses.
func isHeader(fields []string) bool {
	if _, err := ParseTime(fields[0]); err == nil {
		return false
	}
	if len(fields) < 3 {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	return err != nil
}
