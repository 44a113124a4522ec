package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/pixel-pictures-mcp/internal/pixel"
)

// ErrNetwork wraps transport failures: the request never got a response.
var ErrNetwork = errors.New("network error")

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// Key identifies a saved picture.
//
// The service sends it as a JSON number (the record's primary key) while
// pages embed it as a string; both decode to the same Key.
type Key string

// UnmarshalJSON accepts a JSON string, number or null.
func (k *Key) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid picture key %s: %w", data, err)
	}
	*k = Key(n.String())
	return nil
}

// SaveRequest is the body of POST and PUT /save.
type SaveRequest struct {
	Image   *pixel.Grid   `json:"image"`
	Key     Key           `json:"key,omitempty"` // set only for PUT
	Public  bool          `json:"public"`
	Tags    []string      `json:"tags"`
	Palette []pixel.Color `json:"palette"`
}

// SaveResponse is the body returned by /save. Key is empty for updates and
// for creates the service refused (for example when not logged in).
type SaveResponse struct {
	Key     Key    `json:"key"`
	Message string `json:"message"`
}

// SampleRequest holds the upload for POST /sample.
type SampleRequest struct {
	Source *pixel.Source
	Height int
	Width  int
}

type sampleResponse struct {
	SampleImage *pixel.Grid `json:"sample_image"`
}

type convertRequest struct {
	Image   *pixel.Grid   `json:"image"`
	Palette []pixel.Color `json:"palette"`
}

type convertResponse struct {
	PixelsImage *pixel.Grid `json:"pixels_image"`
}

type deleteRequest struct {
	Key Key `json:"key"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Counting directions for DownloadRequest.
const (
	RowsTopToBottom = "tb"
	RowsBottomToTop = "bt"
	ColsLeftToRight = "lr"
	ColsRightToLeft = "rl"
)

// DownloadRequest asks the service to render a saved picture with a
// numbered grid for export.
type DownloadRequest struct {
	Key       Key         `json:"key"`
	StartRow  int         `json:"start_row"`  // number shown on the first row
	StartCol  int         `json:"start_col"`  // number shown on the first column
	DirRows   string      `json:"dir_rows"`   // RowsTopToBottom or RowsBottomToTop
	DirCols   string      `json:"dir_cols"`   // ColsLeftToRight or ColsRightToLeft
	GridColor pixel.Color `json:"grid_color"` // line and number color
	SizeCell  int         `json:"size_cell"`  // cell side in pixels
	Step      int         `json:"step"`       // label every Step-th row/column
}

type downloadResponse struct {
	Source string `json:"source"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
