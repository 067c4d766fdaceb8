package radarcli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/techradar/lib/xhttp"
	"oss.terrastruct.com/techradar/lib/xmain"
)

func TestWatcherHandlers(t *testing.T) {
	t.Parallel()

	env := xos.NewEnv(nil)
	ms := &xmain.State{
		Name: "techradar",
		Env:  env,
		Log:  cmdlog.Log(env, &bytes.Buffer{}),
	}
	w := &watcher{
		ms:          ms,
		watcherOpts: watcherOpts{outputPath: "radar.svg"},
		viewers:     make(map[*viewer]struct{}),
	}
	svgHandler := xhttp.HandlerFuncAdapter{Log: ms.Log, Func: w.handleSVG}

	get := func(h http.Handler, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get(svgHandler, "/radar.svg")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error": "still compiling"}`, rec.Body.String())

	rec = get(http.HandlerFunc(w.handleRoot), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="techradar-err" style="display: none"></div>`)
	assert.Contains(t, rec.Body.String(), `<title>radar.svg</title>`)

	w.publish(&compileResult{SVG: `<svg id="r"></svg>`})
	rec = get(svgHandler, "/radar.svg")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<svg id="r"></svg>`, rec.Body.String())

	rec = get(http.HandlerFunc(w.handleRoot), "/")
	assert.Contains(t, rec.Body.String(), `<div id="techradar-svg"><svg id="r"></svg></div>`)

	w.publish(&compileResult{Err: "failed to recompile: <bad>"})
	rec = get(svgHandler, "/radar.svg")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error": "failed to recompile: <bad>"}`, rec.Body.String())

	rec = get(http.HandlerFunc(w.handleRoot), "/")
	assert.Contains(t, rec.Body.String(), `<div id="techradar-err">failed to recompile: &lt;bad&gt;</div>`)

	rec = get(http.HandlerFunc(w.handleRoot), "/favicon.ico")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatcherHandleWatchClosing(t *testing.T) {
	t.Parallel()

	env := xos.NewEnv(nil)
	ms := &xmain.State{Env: env, Log: cmdlog.Log(env, &bytes.Buffer{})}
	w := &watcher{ms: ms, closing: true, viewers: make(map[*viewer]struct{})}

	rec := httptest.NewRecorder()
	xhttp.HandlerFuncAdapter{Log: ms.Log, Func: w.handleWatch}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watch", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWatcherPushesResults(t *testing.T) {
	t.Parallel()

	env := xos.NewEnv(nil)
	ms := &xmain.State{Env: env, Log: cmdlog.Log(env, &bytes.Buffer{})}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	w := &watcher{ctx: ctx, cancel: cancel, ms: ms, viewers: make(map[*viewer]struct{})}
	w.publish(&compileResult{SVG: "<svg>1</svg>"})

	s := httptest.NewServer(xhttp.HandlerFuncAdapter{Log: ms.Log, Func: w.handleWatch})
	defer s.Close()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(s.URL, "http"), nil)
	require.Nil(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	// The page gets the current result on connect.
	var res compileResult
	require.Nil(t, wsjson.Read(ctx, c, &res))
	assert.Equal(t, compileResult{SVG: "<svg>1</svg>"}, res)

	w.publish(&compileResult{Err: "failed to recompile: boom"})
	require.Nil(t, wsjson.Read(ctx, c, &res))
	assert.Equal(t, compileResult{Err: "failed to recompile: boom"}, res)

	w.publish(&compileResult{SVG: "<svg>2</svg>"})
	require.Nil(t, wsjson.Read(ctx, c, &res))
	assert.Equal(t, compileResult{SVG: "<svg>2</svg>"}, res)

	w.viewersMu.Lock()
	assert.Len(t, w.viewers, 1)
	w.viewersMu.Unlock()
}
