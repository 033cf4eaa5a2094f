package json

import (
	"fmt"
	"strings"

	"github.com/fwojciec/trickle"
)

// part is the stored form of a message content block. encoding/json
// base64-encodes Data.
type part struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func marshalContentBlocks(blocks []trickle.ContentBlock) ([]part, error) {
	parts := make([]part, 0, len(blocks))
	for i, b := range blocks {
		switch v := b.(type) {
		case trickle.TextBlock:
			parts = append(parts, part{Type: "text", Text: v.Text})
		case trickle.ImageBlock:
			parts = append(parts, part{Type: "image", MimeType: v.MimeType, Data: v.Data})
		default:
			return nil, fmt.Errorf("content block %d: unknown type %T", i, b)
		}
	}
	return parts, nil
}

func unmarshalContentBlocks(parts []part) ([]trickle.ContentBlock, error) {
	blocks := make([]trickle.ContentBlock, 0, len(parts))
	for i, p := range parts {
		switch p.Type {
		case "text":
			blocks = append(blocks, trickle.TextBlock{Text: p.Text})
		case "image":
			if !strings.HasPrefix(p.MimeType, "image/") {
				return nil, fmt.Errorf("content block %d: attachment type %q is not an image", i, p.MimeType)
			}
			blocks = append(blocks, trickle.ImageBlock{Data: p.Data, MimeType: p.MimeType})
		default:
			return nil, fmt.Errorf("content block %d: unknown type %q", i, p.Type)
		}
	}
	return blocks, nil
}
