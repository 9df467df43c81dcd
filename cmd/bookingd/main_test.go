package main

import (
	"encoding/hex"
	"log/slog"
	"net/http"
	"testing"
)

func TestIsPublicRoute(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		want   bool
	}{
		{name: "login", method: http.MethodPost, path: "/sessions", want: true},
		{name: "refresh", method: http.MethodPost, path: "/sessions/refresh", want: true},
		{name: "logout needs a session", method: http.MethodDelete, path: "/sessions/current", want: false},
		{name: "admin revocation needs a session", method: http.MethodDelete, path: "/sessions/abc", want: false},
		{name: "bookings are protected", method: http.MethodGet, path: "/bookings", want: false},
		{name: "wrong method on login path", method: http.MethodGet, path: "/sessions", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isPublicRoute(tc.method, tc.path); got != tc.want {
				t.Fatalf("isPublicRoute(%s, %s) = %v, want %v", tc.method, tc.path, got, tc.want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := logLevel(input); got != want {
			t.Fatalf("logLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRandomHex(t *testing.T) {
	token := randomHex(32)
	if len(token) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Fatalf("expected hex output, got %q: %v", token, err)
	}
	if randomHex(32) == token {
		t.Fatal("expected distinct tokens on successive calls")
	}
	if fallback := randomHex(0); len(fallback) != 32 {
		t.Fatalf("expected default 16 bytes, got %d characters", len(fallback))
	}
}
