package sink

import "context"

// Object is one published document. Put replaces any previous object stored
// under the same key.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	ACL          string
}

type Writer interface {
	Put(ctx context.Context, obj Object) error
}
