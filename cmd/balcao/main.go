package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/server"
)

func main() {
	app := fx.New(
		fx.Provide(RegisterSnowflake),
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake derives the node id from the hostname so replicas do
// not mint colliding ids.
func RegisterSnowflake() *snowflake.Node {
	nodeID := int64(1)
	if host, err := os.Hostname(); err == nil && host != "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(host))
		nodeID = int64(h.Sum32() % 1024)
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		panic(err)
	}
	return node
}
