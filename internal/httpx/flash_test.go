package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, "error", "Selection window is closed")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}

	w2 := httptest.NewRecorder()
	f := TakeFlash(w2, req)
	if f == nil {
		t.Fatalf("expected a flash")
	}
	if f.Kind != "error" || f.Message != "Selection window is closed" {
		t.Fatalf("unexpected flash %+v", f)
	}

	// TakeFlash must expire the cookie so the message shows once.
	var cleared bool
	for _, c := range w2.Result().Cookies() {
		if c.Name == flashCookie && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("flash cookie not cleared")
	}
}

func TestTakeFlashAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if f := TakeFlash(httptest.NewRecorder(), req); f != nil {
		t.Fatalf("expected nil, got %+v", f)
	}
}

func TestTakeFlashGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%not-base64"})
	if f := TakeFlash(httptest.NewRecorder(), req); f != nil {
		t.Fatalf("expected nil for garbage cookie, got %+v", f)
	}
}
