// Package preview fetches a page's metadata to prefill the add-resource form.
package preview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/gocolly/colly/v2"
	pkgerrors "github.com/pkg/errors"

	"learnmap/internal/config"
	"learnmap/internal/domain"
	"learnmap/internal/domain/resource"
	"learnmap/internal/pkg/logger"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "learnmap-preview/1.0"
	maxBodySize      = 2 << 20
)

type Preview struct {
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	SiteName    string        `json:"site_name,omitempty"`
	Type        resource.Type `json:"type"`
}

var errBlockedAddress = errors.New("address is not publicly routable")

type Fetcher struct {
	timeout   time.Duration
	userAgent string
	// allowPrivate lets tests reach httptest servers on loopback.
	allowPrivate bool
}

func New(cfg config.PreviewConfig) *Fetcher {
	f := &Fetcher{timeout: cfg.Timeout, userAgent: cfg.UserAgent}
	if f.timeout <= 0 {
		f.timeout = defaultTimeout
	}
	if strings.TrimSpace(f.userAgent) == "" {
		f.userAgent = defaultUserAgent
	}
	return f
}

// Fetch reads title, description and og tags from rawURL. The page is not
// followed beyond the first response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !resource.IsValidURL(rawURL) {
		return Preview{}, domain.NewValidationError("url", "must be an absolute URL")
	}
	u, _ := url.Parse(rawURL)
	if u.Scheme != "http" && u.Scheme != "https" {
		return Preview{}, domain.NewValidationError("url", "must use http or https")
	}
	if err := ctx.Err(); err != nil {
		return Preview{}, pkgerrors.Wrap(domain.ErrTimeout, err.Error())
	}
	if err := f.checkHost(ctx, u.Hostname()); err != nil {
		return Preview{}, err
	}

	timeout := f.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.MaxBodySize(maxBodySize),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(timeout)
	c.WithTransport(f.transport(timeout))

	out := Preview{URL: rawURL}
	var ogTitle, ogDesc, ogType string
	var reqErr error

	c.OnHTML("head title", func(e *colly.HTMLElement) {
		if out.Title == "" {
			out.Title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML("meta[name], meta[property]", func(e *colly.HTMLElement) {
		key := strings.ToLower(e.Attr("property"))
		if key == "" {
			key = strings.ToLower(e.Attr("name"))
		}
		val := strings.TrimSpace(e.Attr("content"))
		switch key {
		case "description":
			if out.Description == "" {
				out.Description = val
			}
		case "og:title":
			ogTitle = val
		case "og:description":
			ogDesc = val
		case "og:site_name":
			out.SiteName = val
		case "og:type":
			ogType = strings.ToLower(val)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		out.URL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(rawURL); err != nil && reqErr == nil {
		reqErr = err
	}
	c.Wait()

	if reqErr != nil {
		logger.Component(ctx, "preview").WithError(reqErr).WithField("url", rawURL).Debug("preview fetch failed")
		if errors.Is(reqErr, errBlockedAddress) {
			return Preview{}, blockedError()
		}
		if isTimeout(reqErr) {
			return Preview{}, pkgerrors.Wrapf(domain.ErrTimeout, "preview %s", rawURL)
		}
		return Preview{}, pkgerrors.Wrapf(domain.ErrProvider, "preview %s: %v", rawURL, reqErr)
	}

	if ogTitle != "" {
		out.Title = ogTitle
	}
	if ogDesc != "" {
		out.Description = ogDesc
	}
	out.Type = Classify(out.URL, ogType)
	return out, nil
}

// checkHost rejects hosts that resolve to loopback, private or link-local
// addresses. Resolution failures are left to the fetch itself.
func (f *Fetcher) checkHost(ctx context.Context, host string) error {
	if f.allowPrivate {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if blockedIP(ip) {
			return blockedError()
		}
		return nil
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return blockedError()
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if blockedIP(a.IP) {
			return blockedError()
		}
	}
	return nil
}

// transport checks every address actually dialed, so redirects and
// re-resolved names cannot reach an internal host either.
func (f *Fetcher) transport(timeout time.Duration) *http.Transport {
	d := &net.Dialer{Timeout: timeout}
	if !f.allowPrivate {
		d.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || blockedIP(ip) {
				return errBlockedAddress
			}
			return nil
		}
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = d.DialContext
	return t
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip)
}

func blockedError() error {
	return domain.NewValidationError("url", "must point at a public host")
}

var hostTypes = map[string]resource.Type{
	"youtube.com":           resource.TypeVideo,
	"youtu.be":              resource.TypeVideo,
	"vimeo.com":             resource.TypeVideo,
	"coursera.org":          resource.TypeCourse,
	"udemy.com":             resource.TypeCourse,
	"edx.org":               resource.TypeCourse,
	"pluralsight.com":       resource.TypeCourse,
	"freecodecamp.org":      resource.TypeCourse,
	"github.com":            resource.TypeProject,
	"gitlab.com":            resource.TypeProject,
	"codesandbox.io":        resource.TypeProject,
	"stackblitz.com":        resource.TypeProject,
	"developer.mozilla.org": resource.TypeArticle,
}

// Classify guesses a resource type from the host, then og:type.
func Classify(rawURL, ogType string) resource.Type {
	if u, err := url.Parse(rawURL); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		for h, t := range hostTypes {
			if host == h || strings.HasSuffix(host, "."+h) {
				return t
			}
		}
	}
	if strings.HasPrefix(ogType, "video") {
		return resource.TypeVideo
	}
	return resource.TypeArticle
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
