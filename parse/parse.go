// Package parse reads board files. A board file is a header line
// "<rows>x<cols>" followed by exactly rows*cols lines, each holding one card
// value. The parser only produces the (rows, cols, values) triple; building
// the live board from it is the board package's job.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// File parses the board file at path.
func File(path string) (rows, cols int, values []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()
	rows, cols, values, err = Reader(f)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, cols, values, nil
}

// Reader parses a board file from r.
func Reader(r io.Reader) (rows, cols int, values []string, err error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, 0, nil, err
		}
		return 0, 0, nil, fmt.Errorf("missing dimension header")
	}
	rows, cols, err = parseHeader(sc.Text())
	if err != nil {
		return 0, 0, nil, err
	}

	want := rows * cols
	values = make([]string, 0, want)
	line := 1
	for sc.Scan() {
		line++
		v := sc.Text()
		if v == "" || strings.ContainsFunc(v, unicode.IsSpace) {
			return 0, 0, nil, fmt.Errorf("line %d: invalid card value %q", line, v)
		}
		if len(values) == want {
			return 0, 0, nil, fmt.Errorf("line %d: more than %d cards", line, want)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return 0, 0, nil, err
	}
	if len(values) != want {
		return 0, 0, nil, fmt.Errorf("expected %d cards for %dx%d board, got %d", want, rows, cols, len(values))
	}
	return rows, cols, values, nil
}

// parseHeader parses "<rows>x<cols>".
func parseHeader(s string) (rows, cols int, err error) {
	r, c, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("malformed dimension header %q", s)
	}
	rows, err = strconv.Atoi(r)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed dimension header %q", s)
	}
	cols, err = strconv.Atoi(c)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed dimension header %q", s)
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("board dimensions must be positive, got %dx%d", rows, cols)
	}
	return rows, cols, nil
}
