package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlas/internal/pkg/httpclient"

	"go.opentelemetry.io/otel"
)

func newUserAdapter(serverURL string) *UserHTTPAdapter {
	client := httpclient.NewClient(otel.Tracer("test"), httpclient.StaticResolver{
		UserServiceName: serverURL,
	})
	return NewUserHTTPAdapter(client, nil)
}

func TestExists_KnownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/7" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	a := newUserAdapter(server.URL)
	exists, err := a.Exists(context.Background(), 7, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected user 7 to exist")
	}

	exists, err = a.Exists(context.Background(), 8, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected user 8 to be absent")
	}
}

func TestExists_ServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	if _, err := newUserAdapter(server.URL).Exists(context.Background(), 7, "tok"); err == nil {
		t.Fatal("expected transport error")
	}
}
