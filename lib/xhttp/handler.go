package xhttp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/text/message"

	"oss.terrastruct.com/cmdlog"
)

// Error carries the status code and JSON body a failed request answers with.
type Error struct {
	Code int
	Resp interface{}
	Err  error
}

func Errorf(code int, resp interface{}, msg string, v ...interface{}) error {
	return ErrorWrap(code, resp, fmt.Errorf(msg, v...))
}

func ErrorWrap(code int, resp interface{}, err error) error {
	if resp == nil {
		resp = http.StatusText(code)
	}
	return Error{Code: code, Resp: resp, Err: err}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Error() string {
	return fmt.Sprintf("http error with code %v and resp %#v: %v", e.Code, e.Resp, e.Err)
}

// HandlerFunc is an http.HandlerFunc that may fail.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// HandlerFuncAdapter serves a HandlerFunc. An Error is answered with its code,
// anything else with a 500.
type HandlerFuncAdapter struct {
	Log  *cmdlog.Logger
	Func HandlerFunc
}

func (a HandlerFuncAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := a.Func(w, r)
	if err == nil {
		return
	}

	var herr Error
	if !errors.As(err, &herr) || herr.Code < 400 || herr.Code >= 600 {
		herr = ErrorWrap(http.StatusInternalServerError, nil, err).(Error)
	}
	logger := a.Log.Error
	if herr.Code < 500 {
		logger = a.Log.Warn
	}
	logger.Printf("error handling http request: %v", err)

	if ww, ok := w.(interface{ Written() bool }); ok && ww.Written() {
		return
	}
	JSON(a.Log, w, herr.Code, map[string]interface{}{
		"error": herr.Resp,
	})
}

func JSON(clog *cmdlog.Logger, w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		clog.Error.Printf("json marshal error: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

type responseWriter struct {
	http.ResponseWriter

	written bool
	status  int
	length  int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.written = true
		rw.status = statusCode
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	if !rw.written && len(p) > 0 {
		rw.written = true
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
	}
	rw.length += len(p)
	return rw.ResponseWriter.Write(p)
}

// Hijack lets websocket upgrades through the logger.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying response writer does not implement http.Hijacker: %T", rw.ResponseWriter)
	}
	rw.written = true
	return hj.Hijack()
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Written() bool {
	return rw.written
}

// Log logs every request with its status, size and duration, and turns
// panics into 500s.
func Log(clog *cmdlog.Logger, next http.Handler) http.Handler {
	printer := message.NewPrinter(message.MatchLanguage("en"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				clog.Error.Printf("caught panic: %#v\n%s", rec, debug.Stack())
				if !rw.written {
					JSON(clog, rw, http.StatusInternalServerError, map[string]interface{}{
						"error": http.StatusText(http.StatusInternalServerError),
					})
				}
			}
		}()

		start := time.Now()
		next.ServeHTTP(rw, r)
		dur := time.Since(start)

		if rw.status == 0 {
			if rw.written {
				clog.Success.Printf("%s %s %v: hijacked", r.Method, r.URL, dur)
			} else {
				clog.Warn.Printf("%s %s %v: no response written", r.Method, r.URL, dur)
			}
			return
		}

		var statusLogger *log.Logger
		switch {
		case rw.status < 300:
			statusLogger = clog.Success
		case rw.status < 400:
			statusLogger = clog.Info
		case rw.status < 500:
			statusLogger = clog.Warn
		default:
			statusLogger = clog.Error
		}
		statusLogger.Printf("%s %s %d %sB %v", r.Method, r.URL, rw.status, printer.Sprint(rw.length), dur)
	})
}
