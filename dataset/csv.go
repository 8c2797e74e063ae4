package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/fileutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadResult is a loaded table plus the rows that could not be read.
type LoadResult struct {
	Table *Table
	// Skipped lists malformed data rows (wrong field count or bad quoting).
	Skipped []error
}

// SkippedCount returns len(Skipped).
func (r *LoadResult) SkippedCount() int {
	return len(r.Skipped)
}

// Load reads a CSV file with a header row. It returns a *errors.NotFoundError
// if path does not exist. Every cell is loaded as a present Value; run
// Normalize to turn sentinels into Missing.
func Load(path string) (*LoadResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file", path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	res, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return res, nil
}

const reasonEmptyFile = "file is empty"

// IsEmptyFile reports whether err came from reading input with no header
// line at all.
func IsEmptyFile(err error) bool {
	var verr *errors.ValidationError
	return errors.As(err, &verr) && verr.Param == "header" && verr.Reason == reasonEmptyFile
}

// Read parses CSV from r. Rows whose field count differs from the header are
// skipped and recorded in LoadResult.Skipped.
func Read(r io.Reader) (*LoadResult, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("header", reasonEmptyFile, "")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	t, err := NewTable(header)
	if err != nil {
		return nil, err
	}

	res := &LoadResult{Table: t}
	rowNum := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, errors.NewRowError(rowNum, "", perr.Err.Error()))
				continue
			}
			return nil, errors.Wrapf(err, "read row %d", rowNum)
		}
		if len(record) != len(header) {
			res.Skipped = append(res.Skipped, errors.NewRowError(rowNum, "",
				"expected "+itoa(len(header))+" fields, got "+itoa(len(record))))
			continue
		}

		row := make([]Value, len(record))
		for j, cell := range record {
			row[j] = Of(cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return res, nil
}

// Save writes t to path atomically, creating parent directories. Readers of
// path never observe a partially written file.
func Save(t *Table, path string) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return Write(t, w)
	})
}

// Write encodes t as CSV with a header row. Missing is written as "".
func Write(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return errors.Wrap(err, "write header")
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			record[j] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write row %d", i+1)
		}
	}
	cw.Flush()
	return cw.Error()
}
