package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixel-pictures-mcp/internal/editor"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew(t *testing.T) {
	s := New(nil, quietLogger())
	require.NotNil(t, s)
	require.NotNil(t, s.Session(), "New() did not start a session")
	assert.Equal(t, editor.PhaseSizing, s.Session().Phase())
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
		})
	}
}

func TestMCPResponse_WithError(t *testing.T) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      7,
		Error: &MCPError{
			Code:    -32000,
			Message: "Tool execution failed",
			Data:    "editor: wrong phase",
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"result"`, "error response should omit result")

	var decoded MCPResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, -32000, decoded.Error.Code)
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := New(nil, quietLogger())
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
	}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "Result should be a map")
	assert.Equal(t, "2024-11-05", result["protocolVersion"])

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	require.True(t, ok, "serverInfo should be a map")
	assert.Equal(t, "pixel-pictures-mcp", serverInfo["name"])
	assert.Equal(t, Version, serverInfo["version"])
}

func TestHandleRequest_Ping(t *testing.T) {
	s := New(nil, quietLogger())
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      "ping-1",
		Method:  "ping",
	}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "ping-1", resp.ID)
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := New(nil, quietLogger())
	req := &MCPRequest{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}

	assert.Nil(t, s.handleRequest(context.Background(), req), "notifications/initialized should return nil response")
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := New(nil, quietLogger())
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "nonexistent/method",
	}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error, "Expected error for unknown method")
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestServe(t *testing.T) {
	s := New(nil, quietLogger())

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"editor_state"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in), &out))

	dec := json.NewDecoder(&out)
	var ids []float64
	for dec.More() {
		var resp MCPResponse
		require.NoError(t, dec.Decode(&resp))
		assert.Nil(t, resp.Error, "id %v", resp.ID)
		ids = append(ids, resp.ID.(float64))
	}

	assert.Equal(t, []float64{1, 2, 3}, ids, "local requests are answered in order")
}

func TestWaitsOnService(t *testing.T) {
	call := func(name string) *MCPRequest {
		return &MCPRequest{
			Method: "tools/call",
			Params: json.RawMessage(fmt.Sprintf(`{"name":%q}`, name)),
		}
	}

	for name := range serviceTools {
		assert.True(t, waitsOnService(call(name)), name)
	}
	for _, name := range []string{"pointer_down", "pointer_over", "editor_state", "palette_add"} {
		assert.False(t, waitsOnService(call(name)), name)
	}
	assert.False(t, waitsOnService(&MCPRequest{Method: "ping"}))
	assert.False(t, waitsOnService(&MCPRequest{Method: "tools/call", Params: json.RawMessage(`{invalid`)}))
}

// A dimension change made while a resample is outstanding supersedes it:
// the later request is answered first and the earlier one reports its
// result as discarded.
func TestServe_SupersededSampleIsDiscarded(t *testing.T) {
	s, svc := newTestServer(t)
	mustCallTool(t, s, "set_height", map[string]int{"value": 2})
	mustCallTool(t, s, "set_width", map[string]int{"value": 2})
	mustCallTool(t, s, "select_source", map[string]string{"path": createSourceFile(t)})

	arrived, release := svc.holdSample()
	defer release()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	served := make(chan error, 1)
	go func() {
		served <- s.Serve(context.Background(), inR, outW)
		outW.Close()
	}()

	responses := make(chan MCPResponse)
	go func() {
		defer close(responses)
		dec := json.NewDecoder(outR)
		for {
			var resp MCPResponse
			if err := dec.Decode(&resp); err != nil {
				return
			}
			responses <- resp
		}
	}()

	next := func() MCPResponse {
		t.Helper()
		select {
		case resp, ok := <-responses:
			require.True(t, ok, "output closed early")
			return resp
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a response")
			return MCPResponse{}
		}
	}
	send := func(id int, tool string, value int) {
		t.Helper()
		line := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":%q,"arguments":{"value":%d}}}`+"\n", id, tool, value)
		_, err := io.WriteString(inW, line)
		require.NoError(t, err)
	}

	send(1, "set_height", 3)
	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("sample request never reached the service")
	}

	send(2, "set_width", 4)
	second := next()
	require.Equal(t, float64(2), second.ID, "set_width must not wait behind the held sample")
	require.Nil(t, second.Error)
	assert.NotContains(t, toolText(t, second), "discarded")

	release()
	first := next()
	require.Equal(t, float64(1), first.ID)
	require.Nil(t, first.Error)

	var result struct {
		State struct {
			Height int `json:"height"`
			Width  int `json:"width"`
		} `json:"state"`
		Discarded bool `json:"discarded"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, first)), &result))
	assert.True(t, result.Discarded)
	assert.Equal(t, 3, result.State.Height)
	assert.Equal(t, 4, result.State.Width)

	require.NoError(t, inW.Close())
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after input closed")
	}

	sample := s.Session().Sample()
	require.NotNil(t, sample)
	assert.Equal(t, 3, sample.Height())
	assert.Equal(t, 4, sample.Width(), "the newer sample is kept")
}

// toolText extracts the text content of a decoded tools/call response.
func toolText(t *testing.T, resp MCPResponse) string {
	t.Helper()
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "result should be an object")
	content, ok := result["content"].([]interface{})
	require.True(t, ok && len(content) == 1, "unexpected content: %v", result["content"])
	text, ok := content[0].(map[string]interface{})["text"].(string)
	require.True(t, ok, "content has no text")
	return text
}
