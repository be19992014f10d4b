// Package report renders result sets for the HTTP front end and the CLI
// and reads line-delimited address uploads.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/optimode/mailverify"
	"github.com/optimode/mailverify/internal/parse"
)

// CSVHeader is the first row of every CSV rendering.
var CSVHeader = []string{"Email", "Valid", "Exists", "Message"}

// Response is the JSON body returned by the validation endpoints.
type Response struct {
	Results  *mailverify.ResultSet `json:"results"`
	Total    int                   `json:"total"`
	Filtered int                   `json:"filtered"`
	CSVData  string                `json:"csv_data"`
}

// NewResponse builds the response for a run over total input addresses.
func NewResponse(set *mailverify.ResultSet, total int) (Response, error) {
	csvData, err := CSV(set)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Results:  set,
		Total:    total,
		Filtered: set.Len(),
		CSVData:  csvData,
	}, nil
}

// WriteCSV writes set as a CSV table with LF line endings. Booleans are
// rendered as "true"/"false".
func WriteCSV(w io.Writer, set *mailverify.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	var err error
	set.Each(func(address string, r mailverify.Result) {
		if err != nil {
			return
		}
		err = cw.Write([]string{
			address,
			strconv.FormatBool(r.Valid),
			strconv.FormatBool(r.Exists),
			r.Message,
		})
	})
	if err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// CSV renders set to a string.
func CSV(set *mailverify.ResultSet) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, set); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadAddresses reads one address per line, trimming whitespace and
// skipping blank lines. A leading UTF-8 or UTF-16 byte order mark is
// honoured and removed.
func ReadAddresses(r io.Reader) ([]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, fmt.Errorf("read addresses: %w", err)
	}
	return parse.Lines(string(data)), nil
}
