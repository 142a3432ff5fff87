package iterm2mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/iterm2"
	"github.com/semistrict/iterm2focus/pkg/iterm2/iterm2test"
	"github.com/semistrict/iterm2focus/pkg/mcpcommon"
)

const testSessionID = "w0t0p0:12345678-1234-1234-1234-123456789012"

type testServer struct {
	t      *testing.T
	s      *server.MCPServer
	mu     sync.Mutex
	nextID int
}

func newTestServer(t *testing.T, fake *iterm2test.Fake) *testServer {
	svc := focus.NewService(fake, focus.WithProgress(mcpcommon.NotifyProgress))
	ts := &testServer{t: t, s: NewServer(svc)}
	resp := ts.send("initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "iterm2mcp-test", "version": "1.0.0"},
	})
	require.Nil(t, resp["error"], "initialize failed: %v", resp["error"])
	return ts
}

// send issues a JSON-RPC request and returns the decoded response.
func (ts *testServer) send(method string, params any) map[string]any {
	ts.t.Helper()
	ts.mu.Lock()
	ts.nextID++
	id := ts.nextID
	ts.mu.Unlock()

	req := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	require.NoError(ts.t, err)

	resp := ts.s.HandleMessage(ts.t.Context(), raw)
	data, err := json.Marshal(resp)
	require.NoError(ts.t, err)

	var m map[string]any
	require.NoError(ts.t, json.Unmarshal(data, &m))
	return m
}

// callTool returns the tools/call result object.
func (ts *testServer) callTool(name string, args map[string]any) map[string]any {
	ts.t.Helper()
	resp := ts.send("tools/call", map[string]any{"name": name, "arguments": args})
	require.Nil(ts.t, resp["error"], "tools/call %s failed: %v", name, resp["error"])
	result, ok := resp["result"].(map[string]any)
	require.True(ts.t, ok, "unexpected result: %v", resp["result"])
	return result
}

func isError(result map[string]any) bool {
	v, _ := result["isError"].(bool)
	return v
}

func structured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	sc, ok := result["structuredContent"].(map[string]any)
	require.True(t, ok, "missing structuredContent in %v", result)
	return sc
}

func TestListTools(t *testing.T) {
	ts := newTestServer(t, iterm2test.NewFake())

	resp := ts.send("tools/list", nil)
	result := resp["result"].(map[string]any)
	tools := result["tools"].([]any)
	require.Len(t, tools, 3)

	byName := map[string]map[string]any{}
	var names []string
	for _, raw := range tools {
		tool := raw.(map[string]any)
		name := tool["name"].(string)
		byName[name] = tool
		names = append(names, name)
		assert.NotEmpty(t, tool["description"])
	}
	sort.Strings(names)
	assert.Equal(t, []string{"focus_session", "get_current_session", "list_sessions"}, names)

	assert.Contains(t, byName["list_sessions"]["description"], "List all available iTerm2 sessions")
	assert.Contains(t, byName["focus_session"]["description"], "Focus a specific iTerm2 session by ID")
	assert.Contains(t, byName["get_current_session"]["description"], "Get information about the currently focused")

	focusSchema := byName["focus_session"]["inputSchema"].(map[string]any)
	assert.Contains(t, focusSchema["properties"], "session_id")
	assert.Equal(t, []any{"session_id"}, focusSchema["required"])

	for _, name := range []string{"list_sessions", "get_current_session"} {
		schema := byName[name]["inputSchema"].(map[string]any)
		assert.Empty(t, schema["required"], name)
	}
}

func TestListSessionsTool(t *testing.T) {
	ts := newTestServer(t, iterm2test.SingleSession(testSessionID, "Session Name"))

	result := ts.callTool("list_sessions", map[string]any{})
	assert.False(t, isError(result))

	sessions := structured(t, result)["result"].([]any)
	require.Len(t, sessions, 1)
	session := sessions[0].(map[string]any)
	assert.Equal(t, testSessionID, session["session_id"])
	assert.Equal(t, "w0", session["window_id"])
	assert.Equal(t, "t0", session["tab_id"])
	assert.Equal(t, true, session["is_active"])
	assert.Nil(t, session["title"])
	assert.Equal(t, "Session Name", session["name"])
}

func TestListSessionsToolMultiple(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "Session Name")
	fake.Snap.Windows[0].Tabs[0].AddSession("w0t0p1:another-session", "Session 2")
	ts := newTestServer(t, fake)

	sessions := structured(t, ts.callTool("list_sessions", nil))["result"].([]any)
	require.Len(t, sessions, 2)
	second := sessions[1].(map[string]any)
	assert.Equal(t, "w0t0p1:another-session", second["session_id"])
	assert.Equal(t, false, second["is_active"])
}

func TestListSessionsToolConnectionFailure(t *testing.T) {
	fake := iterm2test.NewFake()
	fake.ConnectErr = errors.New("Connection failed")
	ts := newTestServer(t, fake)

	result := ts.callTool("list_sessions", map[string]any{})
	assert.False(t, isError(result))
	assert.Equal(t, map[string]any{"result": []any{}}, structured(t, result))
}

func TestFocusSessionTool(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "Session Name")
	ts := newTestServer(t, fake)

	result := ts.callTool("focus_session", map[string]any{"session_id": testSessionID})
	assert.False(t, isError(result))

	sc := structured(t, result)
	assert.Equal(t, true, sc["success"])
	assert.Equal(t, testSessionID, sc["session_id"])
	assert.Contains(t, sc["message"], "Successfully focused")
	assert.Equal(t, []string{"session:" + testSessionID, "tab:t0", "window:w0"}, fake.Calls())
}

func TestFocusSessionToolWithProgressToken(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "")
	ts := newTestServer(t, fake)

	resp := ts.send("tools/call", map[string]any{
		"name":      "focus_session",
		"arguments": map[string]any{"session_id": testSessionID},
		"_meta":     map[string]any{"progressToken": "focus-1"},
	})
	require.Nil(t, resp["error"])
	sc := structured(t, resp["result"].(map[string]any))
	assert.Equal(t, true, sc["success"])
}

func TestFocusSessionToolNotFound(t *testing.T) {
	ts := newTestServer(t, iterm2test.SingleSession(testSessionID, "Session Name"))

	result := ts.callTool("focus_session", map[string]any{"session_id": "non-existent-session"})
	assert.False(t, isError(result))

	sc := structured(t, result)
	assert.Equal(t, false, sc["success"])
	assert.Equal(t, "non-existent-session", sc["session_id"])
	assert.Contains(t, sc["message"], "not found")
}

func TestFocusSessionToolConnectionError(t *testing.T) {
	fake := iterm2test.NewFake()
	fake.ConnectErr = &iterm2.ConnectionError{Err: errors.New("iTerm2 not running")}
	ts := newTestServer(t, fake)

	result := ts.callTool("focus_session", map[string]any{"session_id": testSessionID})
	assert.False(t, isError(result))

	sc := structured(t, result)
	assert.Equal(t, false, sc["success"])
	assert.Contains(t, sc["message"], "Failed to connect")
	assert.Contains(t, sc["message"], "iTerm2 not running")
}

func TestFocusSessionToolMissingParameter(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "")
	ts := newTestServer(t, fake)

	result := ts.callTool("focus_session", map[string]any{})
	assert.True(t, isError(result))
	assert.Nil(t, result["structuredContent"])
	content := result["content"].([]any)
	require.NotEmpty(t, content)
	assert.Contains(t, content[0].(map[string]any)["text"], "session_id")
	assert.Zero(t, fake.Connects())
}

func TestGetCurrentSessionTool(t *testing.T) {
	ts := newTestServer(t, iterm2test.SingleSession(testSessionID, "Session Name"))

	result := ts.callTool("get_current_session", map[string]any{})
	assert.False(t, isError(result))

	info, ok := structured(t, result)["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testSessionID, info["session_id"])
	assert.Equal(t, "w0", info["window_id"])
	assert.Equal(t, "t0", info["tab_id"])
	assert.Equal(t, true, info["is_active"])
	assert.Equal(t, "Session Name", info["name"])
}

func TestGetCurrentSessionToolNone(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "Session Name")
	fake.Snap.CurrentWindow = nil
	ts := newTestServer(t, fake)

	result := ts.callTool("get_current_session", map[string]any{})
	assert.False(t, isError(result))
	sc := structured(t, result)
	assert.Contains(t, sc, "result")
	assert.Nil(t, sc["result"])
}

func TestEmptyTerminalState(t *testing.T) {
	ts := newTestServer(t, iterm2test.NewFake())

	assert.Equal(t, []any{}, structured(t, ts.callTool("list_sessions", nil))["result"])
	assert.Nil(t, structured(t, ts.callTool("get_current_session", nil))["result"])

	sc := structured(t, ts.callTool("focus_session", map[string]any{"session_id": "x"}))
	assert.Equal(t, false, sc["success"])
	assert.Equal(t, "x", sc["session_id"])
	assert.Contains(t, sc["message"], "not found")
}

func TestUnknownTool(t *testing.T) {
	ts := newTestServer(t, iterm2test.NewFake())

	resp := ts.send("tools/call", map[string]any{"name": "non_existent_tool", "arguments": map[string]any{}})
	assert.NotNil(t, resp["error"])
}

func TestConcurrentToolCalls(t *testing.T) {
	fake := iterm2test.SingleSession(testSessionID, "Session Name")
	ts := newTestServer(t, fake)

	var wg sync.WaitGroup
	results := make([]map[string]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := ts.send("tools/call", map[string]any{"name": "list_sessions", "arguments": map[string]any{}})
			results[i], _ = resp["result"].(map[string]any)
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		require.NotNil(t, result)
		assert.Len(t, structured(t, result)["result"], 1)
	}
	assert.Equal(t, 5, fake.Connects())
}

func TestPrintToolsWithoutService(t *testing.T) {
	var buf bytes.Buffer
	mcpcommon.PrintTools(&buf, Tools(nil))

	out := buf.String()
	assert.Contains(t, out, "Tool: focus_session\n")
	assert.Contains(t, out, "    session_id [string] (required) - Session ID exactly as returned by list_sessions")
	assert.Contains(t, out, "Tool: list_sessions (read-only)")
	assert.Contains(t, out, "Tool: get_current_session (read-only)")
}
