package anthropic

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
)

// decoder turns a response body into decoded payloads. Records are
// newline-delimited; the bufio.Reader keeps a partial record buffered
// until its newline arrives, so chunk boundaries never matter.
type decoder struct {
	r      *bufio.Reader
	logger zerolog.Logger
}

func newDecoder(r io.Reader, logger zerolog.Logger) *decoder {
	return &decoder{r: bufio.NewReader(r), logger: logger}
}

// next returns the next well-formed payload. It returns io.EOF when the
// body ends; a trailing record with no newline is discarded. Any other
// error comes from the underlying reader.
func (d *decoder) next() (ssePayload, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line != "" {
					d.logger.Debug().Str("record", line).Msg("dropping incomplete trailing record")
				}
				return ssePayload{}, io.EOF
			}
			return ssePayload{}, err
		}
		data, ok := recordPayload(line)
		if !ok {
			continue
		}
		var p ssePayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			derr := &trickle.DecodeError{Record: data, Err: err}
			d.logger.Debug().Err(derr).Msg("skipping malformed record")
			continue
		}
		return p, nil
	}
}

// recordPayload extracts the payload of a data record. It reports false for
// records outside the data envelope and for the end-of-stream sentinel.
func recordPayload(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	data := strings.TrimSpace(line[len(dataPrefix):])
	if data == "" || data == doneSentinel {
		return "", false
	}
	return data, true
}
