package services

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeIDs generates timestamp-derived record ids that increase
// monotonically within one node.
type SnowflakeIDs struct {
	node *snowflake.Node
}

// NewSnowflakeIDs returns a generator for nodeID (0..1023).
func NewSnowflakeIDs(nodeID int64) (*SnowflakeIDs, error) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeIDs{node: n}, nil
}

// NextID returns the next id.
func (s *SnowflakeIDs) NextID() int64 { return s.node.Generate().Int64() }
