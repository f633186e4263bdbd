package riak

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}/]+\}`)

// Substitution replaces every occurrence of Placeholder in a template with Value.
type Substitution struct {
	Placeholder string
	Value       string
}

// LinkSpec is one link-walking phase. Empty Bucket or Tag match anything.
type LinkSpec struct {
	Bucket string
	Tag    string
	Keep   bool
}

// String renders the phase as a path segment, e.g. "people,friend,1".
func (l LinkSpec) String() string {
	return l.segment(false)
}

func (l LinkSpec) segment(escape bool) string {
	bucket, tag := l.Bucket, l.Tag
	if escape {
		bucket, tag = url.PathEscape(bucket), url.PathEscape(tag)
	}
	if bucket == "" {
		bucket = "_"
	}
	if tag == "" {
		tag = "_"
	}
	keep := "0"
	if l.Keep {
		keep = "1"
	}
	return bucket + "," + tag + "," + keep
}

// Resolve renders the URL for route with subs applied. Substitutions that do
// not appear in the template are ignored.
func (c *Client) Resolve(route Route, subs ...Substitution) (string, error) {
	return c.resolve(route, subs, nil)
}

// ResolveLinks renders the link-walking URL for an object and its phases.
func (c *Client) ResolveLinks(bucket, key string, links ...LinkSpec) (string, error) {
	return c.resolve(RouteLinkWalking, []Substitution{
		{Placeholder: PlaceholderBucket, Value: bucket},
		{Placeholder: PlaceholderKey, Value: key},
	}, links)
}

func (c *Client) resolve(route Route, subs []Substitution, links []LinkSpec) (string, error) {
	tmpl, err := c.routes.Template(route)
	if err != nil {
		return "", err
	}

	// Link walking only ever fills the object coordinates.
	if route == RouteLinkWalking {
		subs = linkWalkingSubs(subs)
	}

	if c.cfg.Strict {
		if missing := unresolved(tmpl, subs); len(missing) > 0 {
			return "", fmt.Errorf("%w: %s in route %q", ErrUnresolvedPlaceholder, strings.Join(missing, ", "), route)
		}
	}

	path := c.substitute(tmpl, subs)
	if route == RouteLinkWalking {
		var b strings.Builder
		b.WriteString(path)
		for _, l := range links {
			b.WriteString(l.segment(c.cfg.EscapePathSegments))
			b.WriteByte('/')
		}
		path = b.String()
	}

	return c.dsn + strings.TrimSuffix(path, "/"), nil
}

func (c *Client) substitute(tmpl string, subs []Substitution) string {
	pairs := make([]string, 0, 2*len(subs))
	for _, s := range subs {
		if s.Placeholder == "" {
			continue
		}
		v := s.Value
		if c.cfg.EscapePathSegments {
			v = url.PathEscape(v)
		}
		pairs = append(pairs, s.Placeholder, v)
	}
	if len(pairs) == 0 {
		return tmpl
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func linkWalkingSubs(subs []Substitution) []Substitution {
	out := make([]Substitution, 0, 2)
	for _, s := range subs {
		if s.Placeholder == PlaceholderBucket || s.Placeholder == PlaceholderKey {
			out = append(out, s)
		}
	}
	return out
}

// unresolved lists template placeholders that no substitution covers.
func unresolved(tmpl string, subs []Substitution) []string {
	supplied := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		supplied[s.Placeholder] = struct{}{}
	}

	var missing []string
	for _, p := range placeholderPattern.FindAllString(tmpl, -1) {
		if _, ok := supplied[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
