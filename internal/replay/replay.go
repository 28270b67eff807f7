package replay

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// maxRedirects bounds redirect chains followed inside a recording.
const maxRedirects = 10

// Replayer answers page requests from a recording.
type Replayer struct {
	// exact indexes entries by full URL, byPath by URL without the query.
	exact  map[string]*Entry
	byPath map[string]*Entry

	passthrough bool
	log         *zap.Logger
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithPassthrough lets unmatched requests reach the network. By default they
// get a 404.
func WithPassthrough(enabled bool) Option {
	return func(r *Replayer) {
		r.passthrough = enabled
	}
}

// WithLogger logs every match and miss at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(r *Replayer) {
		r.log = log
	}
}

// New indexes log for lookup. When several entries share a URL path, the
// first one wins the path fallback.
func New(log *Log, opts ...Option) *Replayer {
	r := &Replayer{
		exact:  make(map[string]*Entry),
		byPath: make(map[string]*Entry),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	for i := range log.Entries {
		entry := &log.Entries[i]
		r.exact[entry.Request.URL] = entry
		if key, ok := pathKey(entry.Request.URL); ok {
			if _, exists := r.byPath[key]; !exists {
				r.byPath[key] = entry
			}
		}
	}

	return r
}

func pathKey(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return u.Scheme + "://" + u.Host + u.Path, true
}

// lookup finds the entry for raw, by exact URL first and path second.
func (r *Replayer) lookup(raw string) (*Entry, bool) {
	if entry, ok := r.exact[raw]; ok {
		return entry, true
	}
	if key, ok := pathKey(raw); ok {
		entry, found := r.byPath[key]
		return entry, found
	}
	return nil, false
}

// Attach routes every request of page through the replayer. The returned
// function stops the routing.
func (r *Replayer) Attach(page *rod.Page) (stop func() error, err error) {
	router := page.HijackRequests()
	if err := router.Add("*", "", r.Handle); err != nil {
		return nil, err
	}
	go router.Run()
	return router.Stop, nil
}

// Handle answers one hijacked request.
func (r *Replayer) Handle(ctx *rod.Hijack) {
	reqURL := ctx.Request.URL().String()

	entry, found := r.lookup(reqURL)
	if !found {
		r.log.Debug("replay miss", zap.String("url", reqURL))
		if r.passthrough {
			_ = ctx.LoadResponse(http.DefaultClient, true)
			return
		}
		r.notFound(ctx)
		return
	}

	entry = r.followRedirects(entry)
	r.log.Debug("replay hit", zap.String("url", reqURL), zap.Int("status", entry.Response.Status))
	r.serve(ctx, entry)
}

func (r *Replayer) serve(ctx *rod.Hijack, entry *Entry) {
	resp := entry.Response

	body := []byte(resp.Content.Text)
	if resp.Content.Encoding == "base64" {
		if decoded, err := base64.StdEncoding.DecodeString(resp.Content.Text); err == nil {
			body = decoded
		}
	}

	var headers []*proto.FetchHeaderEntry
	hasContentType := false
	for _, h := range resp.Headers {
		switch strings.ToLower(h.Name) {
		case "content-encoding", "content-length", "location":
			// The body is served decoded and redirects are resolved here.
			continue
		case "content-type":
			hasContentType = true
		}
		headers = append(headers, &proto.FetchHeaderEntry{Name: h.Name, Value: h.Value})
	}
	if !hasContentType && resp.Content.MimeType != "" {
		headers = append(headers, &proto.FetchHeaderEntry{Name: "Content-Type", Value: resp.Content.MimeType})
	}

	payload := ctx.Response.Payload()
	payload.ResponseCode = resp.Status
	payload.ResponseHeaders = headers
	payload.Body = body
}

// followRedirects resolves 3xx entries whose target is also recorded.
func (r *Replayer) followRedirects(entry *Entry) *Entry {
	current := entry

	for i := 0; i < maxRedirects; i++ {
		if current.Response.Status < 300 || current.Response.Status >= 400 {
			return current
		}

		location := ""
		for _, h := range current.Response.Headers {
			if strings.EqualFold(h.Name, "location") {
				location = h.Value
				break
			}
		}

		target, found := r.lookup(location)
		if location == "" || !found {
			return current
		}
		current = target
	}

	return current
}

func (r *Replayer) notFound(ctx *rod.Hijack) {
	payload := ctx.Response.Payload()
	payload.ResponseCode = http.StatusNotFound
	payload.ResponseHeaders = []*proto.FetchHeaderEntry{
		{Name: "Content-Type", Value: "text/plain"},
	}
	payload.Body = []byte("no recording for this URL")
}

// Len returns the number of recorded entries indexed by full URL.
func (r *Replayer) Len() int {
	return len(r.exact)
}
