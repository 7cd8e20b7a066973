package preview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/config"
	"learnmap/internal/domain"
	"learnmap/internal/domain/resource"
)

const page = `<!doctype html>
<html><head>
<title> Effective Go </title>
<meta name="description" content="Tips for writing clear Go code.">
<meta property="og:site_name" content="go.dev">
</head><body><h1>Effective Go</h1></body></html>`

const ogPage = `<html><head>
<title>plain</title>
<meta name="description" content="plain description">
<meta property="og:title" content="Open Graph Title">
<meta property="og:description" content="Open Graph description">
<meta property="og:type" content="video.other">
</head></html>`

// newLocal returns a fetcher that may reach httptest servers on loopback.
func newLocal(cfg config.PreviewConfig) *Fetcher {
	f := New(cfg)
	f.allowPrivate = true
	return f
}

func TestFetchReadsTitleAndDescription(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p, err := newLocal(config.PreviewConfig{UserAgent: "test-agent"}).Fetch(context.Background(), srv.URL+"/doc")
	require.NoError(t, err)

	assert.Equal(t, "Effective Go", p.Title)
	assert.Equal(t, "Tips for writing clear Go code.", p.Description)
	assert.Equal(t, "go.dev", p.SiteName)
	assert.Equal(t, resource.TypeArticle, p.Type)
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetchPrefersOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	p, err := newLocal(config.PreviewConfig{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Open Graph Title", p.Title)
	assert.Equal(t, "Open Graph description", p.Description)
	assert.Equal(t, resource.TypeVideo, p.Type)
}

func TestFetchRejectsBadURL(t *testing.T) {
	f := New(config.PreviewConfig{})
	_, err := f.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newLocal(config.PreviewConfig{}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newLocal(config.PreviewConfig{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestFetchRejectsInternalHosts(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`<title>internal admin</title>`))
	}))
	defer srv.Close()

	f := New(config.PreviewConfig{})
	for _, target := range []string{
		srv.URL + "/admin",
		"http://localhost/",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.8/",
		"http://192.168.1.1/",
		"http://0.0.0.0/",
		"http://[::1]/",
		"http://100.64.1.1/",
	} {
		_, err := f.Fetch(context.Background(), target)
		require.ErrorIs(t, err, domain.ErrValidation, target)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), target)
		assert.Equal(t, "url", ve.Field)
	}
	assert.Zero(t, hits)
}

func TestTransportRefusesInternalDials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// Redirect hops and re-resolved names go through the same dialer.
	tr := New(config.PreviewConfig{}).transport(time.Second)
	_, err := tr.DialContext(context.Background(), "tcp", srv.Listener.Addr().String())
	assert.ErrorIs(t, err, errBlockedAddress)

	conn, err := newLocal(config.PreviewConfig{}).transport(time.Second).DialContext(context.Background(), "tcp", srv.Listener.Addr().String())
	require.NoError(t, err)
	_ = conn.Close()
}

func TestBlockedIP(t *testing.T) {
	for ip, want := range map[string]bool{
		"127.0.0.1":        true,
		"10.1.2.3":         true,
		"172.16.0.1":       true,
		"192.168.0.10":     true,
		"169.254.169.254":  true,
		"100.100.0.1":      true,
		"::1":              true,
		"fe80::1":          true,
		"fd00::1":          true,
		"::ffff:127.0.0.1": true,
		"8.8.8.8":          false,
		"2606:4700::1111":  false,
	} {
		assert.Equal(t, want, blockedIP(net.ParseIP(ip)), ip)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]resource.Type{
		"https://www.youtube.com/watch?v=x": resource.TypeVideo,
		"https://youtu.be/x":                resource.TypeVideo,
		"https://www.coursera.org/learn/go": resource.TypeCourse,
		"https://github.com/golang/go":      resource.TypeProject,
		"https://go.dev/doc/effective_go":   resource.TypeArticle,
		"https://m.youtube.com/watch?v=abc": resource.TypeVideo,
	}
	for u, want := range cases {
		assert.Equal(t, want, Classify(u, ""), u)
	}
	assert.Equal(t, resource.TypeVideo, Classify("https://example.com", "video.movie"))
}
