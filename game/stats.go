package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/simregion/world"
	"go.uber.org/zap"
)

// FrameStats describes one simulated tick.
type FrameStats struct {
	Tick uint64

	Entities  int
	Updatable int
	Moved     int
	Rules     int

	World  world.Stats
	Camera world.Position

	Duration time.Duration
}

// Fields returns the stats as ordered key/value pairs, in the order they are reported in.
func (s FrameStats) Fields() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	m.Set("tick", s.Tick)
	m.Set("entities", s.Entities)
	m.Set("updatable", s.Updatable)
	m.Set("moved", s.Moved)
	m.Set("rules", s.Rules)
	m.Set("chunks", s.World.Chunks)
	m.Set("blocks", s.World.Blocks)
	m.Set("free_blocks", s.World.FreeBlocks)
	m.Set("camera_chunk", [3]int32{s.Camera.ChunkX, s.Camera.ChunkY, s.Camera.ChunkZ})
	m.Set("duration", s.Duration)
	return m
}

// ZapFields returns the stats as structured log fields.
func (s FrameStats) ZapFields() []zap.Field {
	m := s.Fields()
	fields := make([]zap.Field, 0, m.Len())
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		fields = append(fields, zap.Any(key, v))
	}
	return fields
}

// String formats the stats as a bracketed list of key=value pairs.
func (s FrameStats) String() string {
	m := s.Fields()
	var b strings.Builder
	b.WriteByte('[')
	for i, key := range m.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		v, _ := m.Get(key)
		fmt.Fprintf(&b, "%s=%v", key, v)
	}
	b.WriteByte(']')
	return b.String()
}
