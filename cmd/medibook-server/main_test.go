package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPublicRouteSkipper(t *testing.T) {
	skip := publicRouteSkipper()
	e := echo.New()

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/health", true},
		{http.MethodPost, "/api/v1/auth/signup", true},
		{http.MethodPost, "/api/v1/auth/signin", true},
		{http.MethodPost, "/api/v1/auth/signout", false},
		{http.MethodGet, "/api/v1/auth/me", false},
		{http.MethodGet, "/api/v1/specialties", true},
		{http.MethodGet, "/api/v1/slots", true},
		{http.MethodGet, "/api/v1/doctors", true},
		{http.MethodGet, "/api/v1/doctors/abc", true},
		{http.MethodPost, "/api/v1/doctors", false},
		{http.MethodPut, "/api/v1/doctors/abc", false},
		{http.MethodDelete, "/api/v1/doctors/abc", false},
		{http.MethodPost, "/api/v1/appointments", false},
		{http.MethodGet, "/api/v1/appointments/mine", false},
		{http.MethodGet, "/ws/appointments", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if got := skip(c); got != tc.want {
			t.Errorf("skip(%s %s) = %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}
