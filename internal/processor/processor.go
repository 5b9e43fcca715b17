package processor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pagemine/pagemine/internal/fetcher"
	"github.com/pagemine/pagemine/internal/frontier"
	"github.com/pagemine/pagemine/internal/model"
	"github.com/pagemine/pagemine/internal/selector"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

// Processor extracts configured fields from fetched pages and discovers
// links for the frontier. One processor serves all workers of a crawl; it
// is immutable after construction and safe for concurrent use.
type Processor struct {
	// fields are the compiled selectors, in request order.
	fields []selector.Field

	// followLinks enables anchor discovery.
	followLinks bool

	// sameDomainOnly restricts discovery to the seed's registrable domain.
	sameDomainOnly bool

	// seedHost is the seed URL's lowercased hostname.
	seedHost string

	// seedDomain is the seed's registrable domain (eTLD+1), or empty when
	// the host has none (localhost, IP literals). In that case scope
	// filtering falls back to exact host comparison.
	seedDomain string
}

// New creates a processor for one crawl. The fields must already be
// compiled; selector syntax problems are caught before this point.
func New(fields []selector.Field, req model.CrawlRequest) (*Processor, error) {
	seed, err := url.Parse(req.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	host := strings.ToLower(seed.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Hosts without a public suffix (localhost, IPs) fall back to
		// exact host matching.
		domain = ""
	}

	return &Processor{
		fields:         fields,
		followLinks:    req.FollowLinks,
		sameDomainOnly: req.SameDomainOnly,
		seedHost:       host,
		seedDomain:     domain,
	}, nil
}

// Process consumes one fetch result. Exactly one of record and crawlErr is
// non-nil. Discovered candidates are returned regardless of extraction
// outcome only when the page parsed; a failed page discovers nothing.
func (p *Processor) Process(res *fetcher.Result, depth int) (record *model.ExtractionRecord, candidates []frontier.Candidate, crawlErr *model.CrawlError) {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, nil, &model.CrawlError{
			URL:    res.URL,
			Depth:  depth,
			Kind:   model.KindHTTPStatus,
			Detail: fmt.Sprintf("HTTP %d", res.StatusCode),
		}
	}

	if !isParseableContentType(res.ContentType) {
		return nil, nil, &model.CrawlError{
			URL:    res.URL,
			Depth:  depth,
			Kind:   model.KindParse,
			Detail: fmt.Sprintf("unsupported content type %q", res.ContentType),
		}
	}

	// charset.NewReader decodes the body using the declared or sniffed
	// encoding, so non-UTF-8 pages extract correctly.
	reader, err := charset.NewReader(bytes.NewReader(res.Body), res.ContentType)
	if err != nil {
		return nil, nil, &model.CrawlError{
			URL:    res.URL,
			Depth:  depth,
			Kind:   model.KindParse,
			Detail: fmt.Sprintf("charset detection failed: %v", err),
		}
	}

	doc, err := html.Parse(reader)
	if err != nil {
		return nil, nil, &model.CrawlError{
			URL:    res.URL,
			Depth:  depth,
			Kind:   model.KindParse,
			Detail: fmt.Sprintf("HTML parse failed: %v", err),
		}
	}

	record = &model.ExtractionRecord{
		URL:         res.URL,
		Depth:       depth,
		Fields:      selector.ExtractFields(doc, p.fields),
		ExtractedAt: time.Now().UTC(),
	}

	if p.followLinks {
		candidates = p.discoverLinks(doc, res.URL, depth)
	}

	return record, candidates, nil
}

// discoverLinks collects anchor targets, resolves them against the page
// URL, and filters them to crawlable candidates. The results are
// candidates only: deduplication and budget enforcement happen in the
// frontier.
func (p *Processor) discoverLinks(doc *html.Node, pageURL string, depth int) []frontier.Candidate {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var candidates []frontier.Candidate
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if resolved, ok := p.resolveLink(base, href); ok {
					candidates = append(candidates, frontier.Candidate{
						URL:    resolved,
						Depth:  depth + 1,
						Parent: pageURL,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return candidates
}

// resolveLink resolves an href against the page base and reports whether
// the result is in crawl scope.
func (p *Processor) resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	if p.sameDomainOnly && !p.inScope(resolved.Hostname()) {
		return "", false
	}

	return resolved.String(), true
}

// inScope reports whether a hostname shares the seed's registrable domain.
// Subdomains of the seed's domain are in scope (blog.example.com for a
// seed on example.com); unrelated hosts are not.
func (p *Processor) inScope(host string) bool {
	host = strings.ToLower(host)
	if p.seedDomain == "" {
		return host == p.seedHost
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return domain == p.seedDomain
}

// isParseableContentType reports whether the body can be parsed as HTML.
// An empty content type is accepted: some servers omit the header and the
// parser handles arbitrary bytes without panicking.
func isParseableContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
