// Package options loads the dynamic choices of node properties from the
// remote account.
package options

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/node"
)

// Option is one selectable value.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Lister is the part of the API client the loaders use.
type Lister interface {
	ListBlogs(ctx context.Context) ([]dropinblog.Blog, error)
	ListStatuses(ctx context.Context) ([]dropinblog.Status, error)
}

// Blogs lists the account's blogs. Values are string ids.
func Blogs(ctx context.Context, api Lister) ([]Option, error) {
	blogs, err := api.ListBlogs(ctx)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(blogs))
	for _, b := range blogs {
		opts = append(opts, Option{Label: b.Name, Value: b.ID.String()})
	}
	return opts, nil
}

// Statuses lists the account's post statuses. Values are numeric ids.
func Statuses(ctx context.Context, api Lister) ([]Option, error) {
	statuses, err := api.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(statuses))
	for _, s := range statuses {
		id, err := s.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("status %q has non-numeric id %q", s.Name, s.ID)
		}
		opts = append(opts, Option{Label: s.Name, Value: id})
	}
	return opts, nil
}

// LoaderFunc produces the options of one property.
type LoaderFunc func(ctx context.Context, api Lister) ([]Option, error)

// Registry resolves the loader names used in node descriptors.
type Registry map[string]LoaderFunc

// DefaultRegistry returns the loaders for every descriptor.
func DefaultRegistry() Registry {
	return Registry{
		node.LoadBlogs:    Blogs,
		node.LoadStatuses: Statuses,
	}
}

// Load runs the named loader.
func (r Registry) Load(ctx context.Context, name string, api Lister) ([]Option, error) {
	fn, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown option loader %q", name)
	}
	return fn(ctx, api)
}

// Names returns the registered loader names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
