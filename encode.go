package web

import (
	"encoding/json"
	"io"
	"mime"
	"strconv"
	"strings"
)

// Encoder encodes response values to a wire format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// jsonCodec is the default encoder. It leaves <, > and & alone so HTML
// fragments in record fields survive the round trip.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// negotiate picks an encoder based on the Accept header value. JSON is
// chosen for empty or */* accept values and when nothing matches.
func negotiate(encoders []Encoder, accept string) Encoder {
	if accept == "" || len(encoders) == 0 {
		return jsonCodec{}
	}

	var (
		best    Encoder
		quality = -1.0
	)
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= quality {
			continue
		}

		if mediaType == "*/*" {
			best, quality = encoders[0], q
			continue
		}
		for _, enc := range encoders {
			if enc.ContentType() == mediaType {
				best, quality = enc, q
				break
			}
		}
	}

	if best == nil {
		return encoders[0]
	}
	return best
}
