package hal

import (
	"context"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/yosida95/uritemplate/v3"
)

const (
	linksKey    = "_links"
	embeddedKey = "_embedded"
)

// Params are substituted into a relation's URI template or sent as query
// string.
type Params map[string]any

// Link is a HAL link object.
type Link struct {
	Href      string `mapstructure:"href"`
	Templated bool   `mapstructure:"templated"`
	Name      string `mapstructure:"name"`
	Title     string `mapstructure:"title"`
}

// Resource is a fetched HAL resource, or a collection of resources reached
// through an embedded relation or returned as a JSON array.
type Resource struct {
	nav *Navigator
	url string
	// rel is the relation this resource was reached through.
	rel string

	state    map[string]any
	links    map[string][]Link
	embedded map[string][]*Resource

	// members is non-nil for collections.
	members []*Resource
}

func newResource(nav *Navigator, target, rel string, obj map[string]any) *Resource {
	r := &Resource{
		nav:      nav,
		url:      target,
		rel:      rel,
		state:    make(map[string]any, len(obj)),
		links:    map[string][]Link{},
		embedded: map[string][]*Resource{},
	}

	for k, v := range obj {
		switch k {
		case linksKey:
			r.parseLinks(v)
		case embeddedKey:
			r.parseEmbedded(v)
		default:
			r.state[k] = v
		}
	}

	return r
}

func (r *Resource) parseLinks(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for rel, raw := range m {
		var objs []any
		switch lv := raw.(type) {
		case []any:
			objs = lv
		case map[string]any:
			objs = []any{lv}
		default:
			continue
		}
		for _, o := range objs {
			var l Link
			if err := mapstructure.Decode(o, &l); err != nil || l.Href == "" {
				continue
			}
			r.links[rel] = append(r.links[rel], l)
		}
	}
}

func (r *Resource) parseEmbedded(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for rel, raw := range m {
		switch ev := raw.(type) {
		case []any:
			list := make([]*Resource, 0, len(ev))
			for _, e := range ev {
				if obj, ok := e.(map[string]any); ok {
					list = append(list, newResource(r.nav, r.url, rel, obj))
				}
			}
			r.embedded[rel] = list
		case map[string]any:
			r.embedded[rel] = []*Resource{newResource(r.nav, r.url, rel, ev)}
		}
	}
}

// URL returns the URL the resource was fetched from.
func (r *Resource) URL() string {
	return r.url
}

// Has reports whether rel is advertised as a link or embedded resource. An
// embedded empty collection still counts as advertised.
func (r *Resource) Has(rel string) bool {
	if _, ok := r.embedded[rel]; ok {
		return true
	}
	_, ok := r.links[rel]
	return ok
}

// Link returns the first link advertised under rel.
func (r *Resource) Link(rel string) (Link, bool) {
	links := r.links[rel]
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}

// Relations returns every advertised relation name, sorted.
func (r *Resource) Relations() []string {
	seen := make(map[string]struct{}, len(r.links)+len(r.embedded))
	for rel := range r.links {
		seen[rel] = struct{}{}
	}
	for rel := range r.embedded {
		seen[rel] = struct{}{}
	}
	rels := make([]string, 0, len(seen))
	for rel := range seen {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels
}

// Get follows rel. Embedded relations are returned as they are; linked
// relations are fetched with params applied. A relation that is not
// advertised yields a *NavigationError.
func (r *Resource) Get(ctx context.Context, rel string, params Params) (*Resource, error) {
	if list, ok := r.embedded[rel]; ok {
		if len(params) > 0 {
			r.nav.logger.Debug("ignoring parameters for embedded relation", "rel", rel)
		}
		return &Resource{nav: r.nav, url: r.url, rel: rel, members: list}, nil
	}

	link, ok := r.Link(rel)
	if !ok {
		return nil, &NavigationError{Relation: rel, URL: r.url, Available: r.Relations()}
	}

	target, err := r.nav.expand(link, params)
	if err != nil {
		return nil, fmt.Errorf("failed to expand relation %q: %w", rel, err)
	}

	return r.nav.fetchResource(ctx, target, rel)
}

// collection returns the resources Items decodes. A resource reached
// through a relation that embeds nothing is an empty collection; only a
// root with state of its own counts as a single member.
func (r *Resource) collection() []*Resource {
	if r.members != nil {
		return r.members
	}
	if list, ok := r.embedded[r.rel]; ok && r.rel != "" {
		return list
	}
	if len(r.embedded) == 1 {
		for _, list := range r.embedded {
			return list
		}
	}
	if r.rel == "" && len(r.state) > 0 {
		return []*Resource{r}
	}
	return []*Resource{}
}

// expand builds the absolute URL for link. Template variables are filled
// from params; everything else in params goes to the query string.
func (n *Navigator) expand(link Link, params Params) (string, error) {
	href := link.Href
	used := map[string]bool{}

	if link.Templated {
		tmpl, err := uritemplate.New(link.Href)
		if err != nil {
			return "", fmt.Errorf("invalid URI template %q: %w", link.Href, err)
		}
		values := uritemplate.Values{}
		for _, name := range tmpl.Varnames() {
			if v, ok := params[name]; ok {
				values.Set(name, uritemplate.String(fmt.Sprint(v)))
				used[name] = true
			}
		}
		href, err = tmpl.Expand(values)
		if err != nil {
			return "", fmt.Errorf("failed to expand URI template %q: %w", link.Href, err)
		}
	}

	u, err := n.resolve(href)
	if err != nil {
		return "", err
	}

	if len(params) > len(used) {
		q := u.Query()
		for k, v := range params {
			if !used[k] {
				q.Set(k, fmt.Sprint(v))
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
