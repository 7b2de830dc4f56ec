// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// recordElement is the element that wraps one directory entry
const recordElement = "errorCode"

// Record is one directory entry:
//
//	<errorCode>
//	  <ErrorCode>SU05822</ErrorCode>
//	  <Description>Initialization Error</Description>
//	</errorCode>
type Record struct {
	Code        string `xml:"ErrorCode"`
	Description string `xml:"Description"`
}

// scan streams records from r in document order and returns the first one
// accepted by match. Scanning stops at the first match, so trailing garbage
// after it is never seen. A body without a root element, or with text
// outside it, is corrupt rather than empty.
func scan(r io.Reader, match func(code string) bool) (Record, bool, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	depth := 0
	rooted := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if !rooted {
				return Record{}, false, fmt.Errorf("%w: no root element", ErrDirectoryCorrupt)
			}
			return Record{}, false, nil
		}
		if err != nil {
			return Record{}, false, fmt.Errorf("%w: %v", ErrDirectoryCorrupt, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			rooted = true
			if t.Name.Local != recordElement {
				depth++
				continue
			}

			var rec Record
			if err := d.DecodeElement(&rec, &t); err != nil {
				return Record{}, false, fmt.Errorf("%w: %v", ErrDirectoryCorrupt, err)
			}
			rec.Code = strings.TrimSpace(rec.Code)
			rec.Description = strings.TrimSpace(rec.Description)

			if match(rec.Code) {
				return rec, true, nil
			}

		case xml.EndElement:
			depth--

		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return Record{}, false, fmt.Errorf("%w: text outside the root element", ErrDirectoryCorrupt)
			}
		}
	}
}

// charsetReader accepts the single-byte encodings PHP services commonly
// declare in the XML prolog
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset: %s", label)
	}
}
