package reddit

import (
	"context"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

// NewWithGetter builds an adapter over a stub post client.
func NewWithGetter(get func(ctx context.Context, id string) (*goreddit.PostAndComments, *goreddit.Response, error), limit int) *Adapter {
	return newAdapter(getterFunc(get), limit)
}

type getterFunc func(ctx context.Context, id string) (*goreddit.PostAndComments, *goreddit.Response, error)

func (f getterFunc) Get(ctx context.Context, id string) (*goreddit.PostAndComments, *goreddit.Response, error) {
	return f(ctx, id)
}
