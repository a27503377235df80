package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/obsidianstack/sensorfusion/pkg/types"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8.00", 480, false},
		{"8.05", 485, false},
		{"23.59", 1439, false},
		{"0.30", 30, false},
		{"12", 720, false},
		{" 9.15 ", 555, false},
		{"9.60", 0, true},
		{"-1.00", 0, true},
		{"time", 0, true},
		{"8.xx", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTime(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("got err %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadAll_Rows(t *testing.T) {
	input := "8.00,sens1,10.5\n8.00,sens2,11\n\n8.01,sens1,10.75\n"
	recs, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := []types.Record{
		{Time: 480, Name: "sens1", Value: 10.5},
		{Time: 480, Name: "sens2", Value: 11},
		{Time: 481, Name: "sens1", Value: 10.75},
	}
	if len(recs) != len(want) {
		t.Fatalf("records: got %d, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestReadAll_SkipsHeader(t *testing.T) {
	input := "time,sensor,value\n9.30,temp,21.5\n"
	recs, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "temp" || recs[0].Time != 570 {
		t.Errorf("got %+v", recs)
	}
}

func TestReadAll_HeaderOnlyOnFirstRow(t *testing.T) {
	input := "9.30,temp,21.5\ntime,sensor,value\n"
	_, err := ReadAll(strings.NewReader(input))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}

func TestReadAll_Malformed(t *testing.T) {
	cases := map[string]string{
		"short row":  "8.00,sens1\n",
		"empty name": "8.00, ,1.0\n",
		"bad value":  "8.00,sens1,abc\n",
		"nan value":  "8.00,sens1,NaN\n",
		"inf value":  "8.00,sens1,+Inf\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadAll(strings.NewReader(input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("got %v, want ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error %q should name line 1", err)
			}
		})
	}
}

func TestReader_NextEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestReadAll_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", types.MaxNameLen+20)
	recs, err := ReadAll(strings.NewReader("8.00," + long + ",1\n"))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got := len(recs[0].Name); got != types.MaxNameLen {
		t.Errorf("name length: got %d, want %d", got, types.MaxNameLen)
	}
}

func TestReadAll_MalformedFirstRowIsNotHeader(t *testing.T) {
	_, err := ReadAll(strings.NewReader("9:00,a,1\n9.01,a,2\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error %q should name line 1", err)
	}
}

func TestReadAll_QuoteInName(t *testing.T) {
	recs, err := ReadAll(strings.NewReader("9.00,temp \"north\",1.5\n"))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != `temp "north"` {
		t.Errorf("got %+v", recs)
	}
}
