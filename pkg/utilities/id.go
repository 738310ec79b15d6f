package utilities

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE (default 1). The node is created
// once per process so ids generated in the same millisecond stay distinct.
// If the node cannot be initialized a KSUID string is returned instead.
func NewSnowflakeID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil {
			nodeID = v
		}
		if n, err := snowflake.NewNode(nodeID); err == nil {
			node = n
		}
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// NewSnowflakeIDWithNode generates a snowflake ID string using the provided node ID.
// If the node cannot be initialized, it falls back to a KSUID string.
func NewSnowflakeIDWithNode(nodeID int64) string {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return NewKSUID()
	}
	return n.Generate().String()
}

type requestIDKey struct{}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
