package radarcli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"oss.terrastruct.com/techradar/lib/xbrowser"
	"oss.terrastruct.com/techradar/lib/xhttp"
	"oss.terrastruct.com/techradar/lib/xmain"
)

//go:embed static
var staticFS embed.FS

var rootTemplate = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
	<script src="./static/watch.js"></script>
	<link rel="stylesheet" href="./static/watch.css">
</head>
<body>
	<div id="techradar-err"{{if not .Err}} style="display: none"{{end}}>{{.Err}}</div>
	<div id="techradar-svg">{{.SVG}}</div>
</body>
</html>`))

const (
	burstDelay   = time.Millisecond * 32
	pollInterval = time.Second * 10
	maxRetry     = time.Second * 16

	shutdownTimeout = time.Second * 30
	pingInterval    = time.Second * 30
	sendTimeout     = time.Second * 30
	// Pages are asked to reconnect after this long.
	viewerLifetime = time.Hour
)

type watcherOpts struct {
	host       string
	port       string
	inputPath  string
	outputPath string
	compile    compileOpts
}

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms *xmain.State
	watcherOpts

	compileCh chan struct{}

	fw               *fsnotify.Watcher
	l                net.Listener
	staticFileServer http.Handler

	viewersMu sync.Mutex
	closing   bool
	viewersWG sync.WaitGroup
	viewers   map[*viewer]struct{}

	errMu sync.Mutex
	err   error

	resMu sync.Mutex
	res   *compileResult
	// resN counts published results.
	resN uint64
}

// compileResult is what each websocket client receives after a compile.
// Exactly one of the fields is set.
type compileResult struct {
	Err string `json:"err"`
	SVG string `json:"svg"`
}

func newWatcher(ctx context.Context, ms *xmain.State, opts watcherOpts) (*watcher, error) {
	ctx, cancel := context.WithCancel(ctx)

	w := &watcher{
		ctx:         ctx,
		cancel:      cancel,
		ms:          ms,
		watcherOpts: opts,

		compileCh: make(chan struct{}, 1),
		viewers:   make(map[*viewer]struct{}),
	}
	err := w.init()
	if err != nil {
		cancel()
		return nil, err
	}
	return w, nil
}

func (w *watcher) init() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fw = fw

	sfs, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	w.staticFileServer = http.FileServer(http.FS(sfs))
	return w.listen()
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.compileLoop)
	w.goServe()

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.viewersMu.Lock()
	if w.closing {
		w.viewersMu.Unlock()
		return
	}
	w.closing = true
	w.viewersMu.Unlock()

	w.cancel()
	if w.fw != nil {
		w.setErr(w.fw.Close())
	}
	if w.l != nil {
		err := w.l.Close()
		if !errors.Is(err, net.ErrClosed) {
			w.setErr(err)
		}
	}

	w.viewersWG.Wait()
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		w.setErr(fn(w.ctx))
	}()
}

// watchLoop requests a compile once events on the input settle.
//
// Editors often save with a burst of events such as chmod, write, chmod. They
// are collected until none has arrived for burstDelay so that one save is one
// compile and a file is never read while half written. Events can also be
// missed entirely, for example when the file is replaced by a rename, so the
// watch is re-added and the modification time compared every pollInterval.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx)
	if err != nil {
		return err
	}
	w.ms.Log.Info.Printf("compiling %v...", w.ms.HumanPath(w.inputPath))
	w.requestCompile()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-pollTicker.C:
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestCompile()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified) {
					// Benign, see https://github.com/fsnotify/fsnotify/issues/15
					continue
				}
			}
			lastModified = mt
			eatBurstTimer.Reset(burstDelay)
		case <-eatBurstTimer.C:
			w.ms.Log.Info.Printf("detected change in %v: recompiling...", w.ms.HumanPath(w.inputPath))
			w.requestCompile()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestCompile() {
	select {
	case w.compileCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch retries addWatch with exponential backoff until it succeeds
// or ctx is done.
func (w *watcher) ensureAddWatch(ctx context.Context) (time.Time, error) {
	interval := time.Second
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch()
		if err == nil {
			return mt, nil
		}
		w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.inputPath, err, interval)

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < maxRetry {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch() (time.Time, error) {
	err := w.fw.Add(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

func (w *watcher) compileLoop(ctx context.Context) error {
	firstCompile := true
	for {
		select {
		case <-w.compileCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		recompiledPrefix := ""
		if !firstCompile {
			recompiledPrefix = "re"
		}

		svg, err := compile(ctx, w.ms, w.compile, w.inputPath, w.outputPath)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			err = fmt.Errorf("failed to %scompile: %w", recompiledPrefix, err)
			w.ms.Log.Error.Print(err)
			w.publish(&compileResult{
				Err: err.Error(),
			})
		} else {
			w.publish(&compileResult{
				SVG: string(svg),
			})
		}

		if firstCompile {
			firstCompile = false
			w.openBrowser(ctx)
		}
	}
}

func (w *watcher) openBrowser(ctx context.Context) {
	if w.ms.Env.Getenv("BROWSER") == "0" {
		return
	}
	url := fmt.Sprintf("http://%s", w.l.Addr())
	err := xbrowser.OpenURL(ctx, w.ms.Env, url)
	if err != nil {
		w.ms.Log.Warn.Printf("failed to open browser to %v: %v", url, err)
	}
}

func (w *watcher) listen() error {
	l, err := net.Listen("tcp", net.JoinHostPort(w.host, w.port))
	if err != nil {
		return err
	}
	w.l = l
	w.ms.Log.Success.Printf("listening on http://%v", w.l.Addr())
	return nil
}

func (w *watcher) goServe() {
	m := http.NewServeMux()
	m.HandleFunc("/", w.handleRoot)
	m.Handle("/static/", http.StripPrefix("/static", w.staticFileServer))
	m.Handle("/radar.svg", xhttp.HandlerFuncAdapter{Log: w.ms.Log, Func: w.handleSVG})
	m.Handle("/watch", xhttp.HandlerFuncAdapter{Log: w.ms.Log, Func: w.handleWatch})

	s := xhttp.NewServer(w.ms.Log.Warn, xhttp.Log(w.ms.Log, m))
	w.goFunc(func(ctx context.Context) error {
		return xhttp.Serve(ctx, shutdownTimeout, s, w.l)
	})
}

// latest returns the last published result and how many results came before
// and including it.
func (w *watcher) latest() (*compileResult, uint64) {
	w.resMu.Lock()
	defer w.resMu.Unlock()
	return w.res, w.resN
}

// handleRoot serves a page showing the latest render. The page script swaps
// in every later render pushed over /watch.
func (w *watcher) handleRoot(hw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(hw, r)
		return
	}
	data := struct {
		Title string
		Err   string
		SVG   template.HTML
	}{
		Title: w.ms.HumanPath(w.outputPath),
	}
	if res, _ := w.latest(); res != nil {
		data.Err = res.Err
		data.SVG = template.HTML(res.SVG)
	}
	hw.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := rootTemplate.Execute(hw, data)
	if err != nil {
		w.ms.Log.Warn.Printf("failed to write root page: %v", err)
	}
}

func (w *watcher) handleSVG(hw http.ResponseWriter, r *http.Request) error {
	res, _ := w.latest()
	if res == nil {
		return xhttp.Errorf(http.StatusServiceUnavailable, "still compiling", "no render yet")
	}
	if res.Err != "" {
		return xhttp.Errorf(http.StatusUnprocessableEntity, res.Err, "last compile failed")
	}
	hw.Header().Set("Content-Type", "image/svg+xml")
	_, err := hw.Write([]byte(res.SVG))
	return err
}

func (w *watcher) handleWatch(hw http.ResponseWriter, r *http.Request) error {
	v, err := w.addViewer()
	if err != nil {
		return err
	}
	conn, err := websocket.Accept(hw, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		w.removeViewer(v)
		return err
	}
	v.conn = conn
	go w.serveViewer(v)
	return nil
}

// viewer is one open watch page.
type viewer struct {
	conn   *websocket.Conn
	notify chan struct{}
	// sent is the number of the last result written to conn.
	sent uint64
}

// addViewer registers a page before its connection is upgraded so that close
// also waits for the hijacked connection.
func (w *watcher) addViewer() (*viewer, error) {
	w.viewersMu.Lock()
	defer w.viewersMu.Unlock()
	if w.closing {
		return nil, xhttp.Errorf(http.StatusServiceUnavailable, "server shutting down...", "server shutting down...")
	}
	v := &viewer{notify: make(chan struct{}, 1)}
	w.viewers[v] = struct{}{}
	w.viewersWG.Add(1)
	return v, nil
}

func (w *watcher) removeViewer(v *viewer) {
	w.viewersMu.Lock()
	delete(w.viewers, v)
	w.viewersMu.Unlock()
	w.viewersWG.Done()
}

func (w *watcher) serveViewer(v *viewer) {
	defer w.removeViewer(v)
	defer v.conn.Close(websocket.StatusInternalError, "radar watch stopped")

	ctx, cancel := context.WithTimeout(w.ctx, viewerLifetime)
	defer cancel()
	ctx = v.conn.CloseRead(ctx)
	go keepAlive(ctx, v.conn)

	err := v.follow(ctx, w)
	w.ms.Log.Debug.Printf("watch page disconnected: %v", err)
}

// follow writes every newer result to the page until ctx is done or a write
// fails. Results published while a write is in flight collapse into one.
func (v *viewer) follow(ctx context.Context, w *watcher) error {
	for {
		if res, n := w.latest(); res != nil && n != v.sent {
			err := v.send(ctx, res)
			if err != nil {
				return err
			}
			v.sent = n
		}

		select {
		case <-v.notify:
		case <-ctx.Done():
			v.conn.Close(websocket.StatusGoingAway, "radar watch shutting down")
			return ctx.Err()
		}
	}
}

func (v *viewer) send(ctx context.Context, res *compileResult) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return wsjson.Write(ctx, v.conn, res)
}

// publish makes res the latest result and wakes every page.
func (w *watcher) publish(res *compileResult) {
	w.resMu.Lock()
	w.res = res
	w.resN++
	w.resMu.Unlock()

	w.viewersMu.Lock()
	defer w.viewersMu.Unlock()
	what := "radar"
	if res.Err != "" {
		what = "error"
	}
	w.ms.Log.Info.Printf("sending %s to %d watch page(s)", what, len(w.viewers))
	for v := range w.viewers {
		select {
		case v.notify <- struct{}{}:
		default:
		}
	}
}

// keepAlive pings conn every pingInterval and closes it once a ping goes
// unanswered.
func keepAlive(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		err := conn.Ping(ctx)
		if err != nil {
			if ctx.Err() == nil {
				conn.Close(websocket.StatusGoingAway, "watch page stopped answering pings")
			}
			return
		}

		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
