package events

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// Screenshot references a picture of the screen at the time of an event. It
// holds either an in-memory image or the path of a previously saved file,
// never both.
type Screenshot struct {
	img  image.Image
	path string
}

// NewScreenshot wraps an in-memory image.
func NewScreenshot(img image.Image) *Screenshot {
	return &Screenshot{img: img}
}

// SavedScreenshot references an image stored on disk.
func SavedScreenshot(path string) *Screenshot {
	return &Screenshot{path: path}
}

// Image returns the in-memory image, or nil when the screenshot lives on disk.
func (s *Screenshot) Image() image.Image { return s.img }

// Path returns the file path, or "" when the screenshot is held in memory.
func (s *Screenshot) Path() string { return s.path }

// Stored reports whether the screenshot references a file rather than pixels.
func (s *Screenshot) Stored() bool { return s.img == nil }

type screenshotWire struct {
	Type string `json:"type"`
	PNG  string `json:"png,omitempty"`
	Path string `json:"path,omitempty"`
}

// MarshalJSON encodes file references by path and in-memory images as
// base64 PNG payloads.
func (s *Screenshot) MarshalJSON() ([]byte, error) {
	if s.img == nil {
		return json.Marshal(screenshotWire{Type: "path", Path: s.path})
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, s.img); err != nil {
		return nil, fmt.Errorf("encode screenshot png: %w", err)
	}
	return json.Marshal(screenshotWire{
		Type: "image",
		PNG:  base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (s *Screenshot) UnmarshalJSON(data []byte) error {
	var wire screenshotWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Type {
	case "path":
		if wire.Path == "" {
			return errors.New("screenshot path must not be empty")
		}
		*s = Screenshot{path: wire.Path}
		return nil
	case "image":
		raw, err := base64.StdEncoding.DecodeString(wire.PNG)
		if err != nil {
			return fmt.Errorf("decode screenshot payload: %w", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("decode screenshot png: %w", err)
		}
		*s = Screenshot{img: img}
		return nil
	default:
		return fmt.Errorf("unrecognized screenshot type %q", wire.Type)
	}
}
