package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// ErrUndecodable is returned when the input decodes under none of the
// supported encodings.
var ErrUndecodable = errors.New("dataset: input is not valid UTF-8, Big5, or GBK")

// ErrEmpty is returned when the input holds no header row.
var ErrEmpty = errors.New("dataset: input has no header row")

// candidate is one entry in the ordered encoding list.
type candidate struct {
	name string
	enc  encoding.Encoding // nil = plain UTF-8
}

// candidates is the ordered list of encodings tried by Decode. UTF-8 goes
// first: most Big5/GBK byte streams fail UTF-8 validation, while almost any
// byte stream "decodes" under GBK, so the legacy encodings must come last.
var candidates = []candidate{
	{name: "utf-8"},
	{name: "big5", enc: traditionalchinese.Big5},
	{name: "gbk", enc: simplifiedchinese.GBK},
}

// Decode reads all of r, detects its character encoding, and parses the
// decoded text as CSV into a pipeline Table. It returns the table and the
// name of the encoding that succeeded.
func Decode(r io.Reader) (*pipeline.Table, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("dataset: read input: %w", err)
	}

	text, name, err := decodeText(data)
	if err != nil {
		return nil, "", err
	}

	table, err := parseCSV(text)
	if err != nil {
		return nil, "", err
	}
	return table, name, nil
}

// decodeText tries the candidate encodings in order and returns the first
// clean decode.
func decodeText(data []byte) (string, string, error) {
	for _, c := range candidates {
		if c.enc == nil {
			if utf8.Valid(data) {
				return string(data), c.name, nil
			}
			continue
		}
		out, err := c.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// The x/text decoders substitute U+FFFD for invalid sequences
		// instead of erroring, so a replacement rune in the output means
		// this was the wrong encoding.
		if bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return string(out), c.name, nil
	}
	return "", "", ErrUndecodable
}

// parseCSV splits decoded text into a header row plus data rows. Short rows
// are tolerated (the pipeline treats absent cells as empty); a UTF-8 BOM on
// the first header cell is stripped.
func parseCSV(text string) (*pipeline.Table, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &pipeline.Table{
		Columns: header,
		Rows:    records[1:],
	}, nil
}
