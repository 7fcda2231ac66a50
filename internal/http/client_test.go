// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/testhelper"
)

type testType struct {
	String string  `json:"string"`
	Int    int     `json:"int"`
	Float  float64 `json:"float"`
	Bool   bool    `json:"bool"`
}

const testFile = "../../testdata/testtype.json"

// testClient returns a client whose requests are answered by fn.
func testClient(fn func(*stdhttp.Request) (*stdhttp.Response, error)) *Client {
	client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
	client.Transport = testhelper.MockRoundTripper{Fn: fn}
	return client
}

func stringResponse(status int, body string) *stdhttp.Response {
	return &stdhttp.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: make(stdhttp.Header)}
}

func TestNew(t *testing.T) {
	client := New(logger.New(slog.LevelInfo))
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %s, got %s", DefaultTimeout, client.Timeout)
	}
	transport, ok := client.Transport.(*stdhttp.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 as minimum version, got %x", transport.TLSClientConfig.MinVersion)
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("query, headers and user agent are sent and JSON is decoded", func(t *testing.T) {
		respond := testhelper.FileResponder(t, testFile, stdhttp.StatusOK)
		client := testClient(func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.Method != stdhttp.MethodGet {
				t.Errorf("expected GET request, got %s", req.Method)
			}
			if got := req.URL.Query().Get("format"); got != "jsonv2" {
				t.Errorf("expected query parameter format=jsonv2, got %q", got)
			}
			if got := req.Header.Get("Accept-Language"); got != "de" {
				t.Errorf("expected custom header, got %q", got)
			}
			if got := req.Header.Get("User-Agent"); got != UserAgent {
				t.Errorf("expected user agent %q, got %q", UserAgent, got)
			}
			return respond(req)
		})

		query := url.Values{}
		query.Set("format", "jsonv2")
		target := new(testType)
		code, err := client.Get(t.Context(), "https://example.com/reverse", target, query,
			map[string]string{"Accept-Language": "de"})
		if err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		if code != stdhttp.StatusOK {
			t.Errorf("expected status code 200, got %d", code)
		}
		want := testType{String: "test", Int: 123, Float: 123.456, Bool: true}
		if *target != want {
			t.Errorf("expected target %+v, got %+v", want, *target)
		}
	})
	t.Run("non-pointer and nil targets are rejected", func(t *testing.T) {
		client := testClient(func(*stdhttp.Request) (*stdhttp.Response, error) {
			t.Error("expected no request to be sent")
			return nil, errors.New("unexpected request")
		})
		var nilTarget *testType
		for _, target := range []any{testType{}, nilTarget, nil} {
			if _, err := client.Get(t.Context(), "https://example.com", target, nil, nil); !errors.Is(err, ErrNonPointerTarget) {
				t.Errorf("expected error to be %s for %T, got %v", ErrNonPointerTarget, target, err)
			}
		}
	})
	t.Run("parsing an invalid url should fail", func(t *testing.T) {
		client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
		_, err := client.Get(t.Context(), "http://example.com/xyz%", new(testType), nil, nil)
		if err == nil || !strings.Contains(err.Error(), "failed to parse URL") {
			t.Errorf("expected URL parse error, got %v", err)
		}
	})
	t.Run("transport errors are wrapped", func(t *testing.T) {
		transportErr := errors.New("intentionally failing")
		client := testClient(func(*stdhttp.Request) (*stdhttp.Response, error) {
			return nil, transportErr
		})
		_, err := client.Get(t.Context(), "https://example.com", new(testType), nil, nil)
		if !errors.Is(err, transportErr) {
			t.Errorf("expected error to wrap %s, got %v", transportErr, err)
		}
	})
	t.Run("undecodable body returns the status code", func(t *testing.T) {
		client := testClient(func(*stdhttp.Request) (*stdhttp.Response, error) {
			return stringResponse(stdhttp.StatusTooManyRequests, "<html>rate limited</html>"), nil
		})
		code, err := client.Get(t.Context(), "https://example.com", new(testType), nil, nil)
		if err == nil || !strings.Contains(err.Error(), "failed to decode JSON") {
			t.Errorf("expected decode error, got %v", err)
		}
		if code != stdhttp.StatusTooManyRequests {
			t.Errorf("expected status code %d, got %d", stdhttp.StatusTooManyRequests, code)
		}
	})
	t.Run("failing to close the body is logged", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		client := New(logger.NewLogger(slog.LevelInfo, buf))
		client.Transport = testhelper.MockRoundTripper{Fn: func(*stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{StatusCode: stdhttp.StatusOK, Body: failCloser{strings.NewReader(`{}`)}}, nil
		}}
		if _, err := client.Get(t.Context(), "https://example.com", new(testType), nil, nil); err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		if !strings.Contains(buf.String(), "failed to close HTTP request body") {
			t.Errorf("expected close error to be logged, got %q", buf.String())
		}
	})
}

func TestClient_GetWithTimeout(t *testing.T) {
	t.Run("request is canceled after the timeout", func(t *testing.T) {
		client := testClient(func(req *stdhttp.Request) (*stdhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})
		_, err := client.GetWithTimeout(t.Context(), "https://example.com", new(testType), nil, nil, time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %v", context.DeadlineExceeded, err)
		}
	})
	t.Run("online request is bounded by the parent context", func(t *testing.T) {
		testhelper.PerformIntegrationTests(t)
		client := New(logger.New(slog.LevelInfo))
		ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond)
		defer cancel()

		_, err := client.GetWithTimeout(ctx, testhelper.TestOnlineAPIURL, new(testType), nil, nil, time.Second*5)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %v", context.DeadlineExceeded, err)
		}
	})
}

func TestClient_Post(t *testing.T) {
	t.Run("body is sent and JSON is decoded", func(t *testing.T) {
		respond := testhelper.FileResponder(t, testFile, stdhttp.StatusCreated)
		client := testClient(func(req *stdhttp.Request) (*stdhttp.Response, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("failed to read request body: %s", err)
			}
			if string(body) != `{"q":"Kaiserstraße"}` {
				t.Errorf("unexpected request body: %s", body)
			}
			return respond(req)
		})

		target := new(testType)
		code, err := client.Post(t.Context(), "https://example.com", target, strings.NewReader(`{"q":"Kaiserstraße"}`),
			map[string]string{"Content-Type": "application/json"})
		if err != nil {
			t.Fatalf("post request failed: %s", err)
		}
		if code != stdhttp.StatusCreated || target.Int != 123 {
			t.Errorf("unexpected result: %d, %+v", code, target)
		}
	})
	t.Run("post request times out", func(t *testing.T) {
		client := testClient(func(req *stdhttp.Request) (*stdhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})
		_, err := client.PostWithTimeout(t.Context(), "https://example.com", new(testType), nil, nil, time.Nanosecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %v", context.DeadlineExceeded, err)
		}
	})
}

func TestClient_PostFormWithTimeout(t *testing.T) {
	t.Run("form values are sent url-encoded", func(t *testing.T) {
		respond := testhelper.FileResponder(t, testFile, stdhttp.StatusOK)
		client := testClient(func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.Method != stdhttp.MethodPost {
				t.Errorf("expected POST request, got %s", req.Method)
			}
			if ct := req.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("expected form content type, got %q", ct)
			}
			if ua := req.Header.Get("User-Agent"); !strings.Contains(ua, "addrcrawl") {
				t.Errorf("expected user agent to name the project, got %q", ua)
			}
			if err := req.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %s", err)
			}
			if got := req.PostForm.Get("data"); got != "[out:json];node(1);out;" {
				t.Errorf("unexpected form value: %q", got)
			}
			return respond(req)
		})

		form := url.Values{}
		form.Set("data", "[out:json];node(1);out;")
		target := new(testType)
		code, err := client.PostFormWithTimeout(t.Context(), "https://example.com/api/interpreter", target, form, time.Second)
		if err != nil {
			t.Fatalf("form post failed: %s", err)
		}
		if code != stdhttp.StatusOK {
			t.Errorf("expected status code 200, got %d", code)
		}
		if target.String != "test" {
			t.Errorf("expected target string to be 'test', got %s", target.String)
		}
	})
	t.Run("posting into non-pointer should fail", func(t *testing.T) {
		client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
		var target testType
		_, err := client.PostFormWithTimeout(t.Context(), "https://example.com", target, nil, time.Second)
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %v", ErrNonPointerTarget, err)
		}
	})
}

type failCloser struct {
	io.Reader
}

func (failCloser) Close() error { return errors.New("failed to close") }
