package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/oerror"
	"github.com/oomph-ac/simregion/store"
	"github.com/oomph-ac/simregion/worker"
	"github.com/oomph-ac/simregion/world"
	"github.com/zeebo/xxh3"
)

// Version is the snapshot format written by this package.
const Version = 1

const bufferSize = 256 * 1024

type header struct {
	Version int
	Count   int
	Digest  uint64
}

type payload struct {
	Header header
	Lows   []entity.Low
}

// Options tunes how snapshots are compressed.
type Options struct {
	// Level is the zstd encoder level, from 1 (fastest) to 4 (best compression).
	Level int
}

// Write encodes every entity in st to w. The store must not be modified while Write runs.
func Write(w io.Writer, st *store.Store, opts Options) error {
	return writeLows(w, st.Lows(), opts)
}

func writeLows(w io.Writer, lows []entity.Low, opts Options) error {
	level := zstd.EncoderLevel(opts.Level)
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, bufferSize)

	p := payload{
		Header: header{Version: Version, Count: len(lows), Digest: digestLows(lows)},
		Lows:   lows,
	}
	if err := gob.NewEncoder(bw).Encode(&p); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a snapshot from r and returns a store holding its entities, indexed in w. w should be
// empty: chunk membership is rebuilt from the stored positions.
func Read(r io.Reader, w *world.World) (*store.Store, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var p payload
	if err := gob.NewDecoder(bufio.NewReaderSize(dec, bufferSize)).Decode(&p); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if p.Header.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", oerror.ErrSnapshotVersion, p.Header.Version, Version)
	}
	if p.Header.Count != len(p.Lows) {
		return nil, fmt.Errorf("%w: header lists %d entities, found %d", oerror.ErrCorrupted, p.Header.Count, len(p.Lows))
	}
	if d := digestLows(p.Lows); d != p.Header.Digest {
		return nil, fmt.Errorf("%w: digest mismatch %x != %x", oerror.ErrCorrupted, d, p.Header.Digest)
	}
	shareVolumes(p.Lows)
	return store.Restore(w, p.Lows), nil
}

// WriteFile writes a snapshot of st to path, creating parent directories as needed. The file is replaced
// atomically: readers see either the previous snapshot or the new one.
func WriteFile(path string, st *store.Store, opts Options) error {
	return writeLowsFile(path, st.Lows(), opts)
}

func writeLowsFile(path string, lows []entity.Low, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Each writer gets its own temporary file, so concurrent writes to one path never share one.
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := writeLows(f, lows, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFile reads the snapshot at path into a new store indexed in w.
func ReadFile(path string, w *world.World) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, w)
}

// WriteFileAsync copies the entities of st and writes them to path on the pool passed. done, if not nil,
// is called from the worker with the result. The copy is taken before WriteFileAsync returns, so the
// caller may keep simulating.
func WriteFileAsync(pool *worker.Pool, path string, st *store.Store, opts Options, done func(error)) {
	lows := st.Lows()
	pool.Submit(func() {
		err := writeLowsFile(path, lows, opts)
		if done != nil {
			done(err)
		}
	})
}

// Digest returns a hash of the simulation state of every entity in st. Two stores with equal digests hold
// the same entities at the same positions. Transient bookkeeping such as the simming flag is ignored.
func Digest(st *store.Store) uint64 {
	return digestLows(st.Lows())
}

func digestLows(lows []entity.Low) uint64 {
	h := xxh3.New()
	var buf []byte
	for i := range lows {
		buf = appendLow(buf[:0], &lows[i])
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func appendLow(b []byte, l *entity.Low) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(l.P.ChunkX))
	b = binary.LittleEndian.AppendUint32(b, uint32(l.P.ChunkY))
	b = binary.LittleEndian.AppendUint32(b, uint32(l.P.ChunkZ))
	b = appendVec(b, l.P.Offset)

	s := &l.Sim
	b = append(b, byte(s.Type))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.Flags&^entity.FlagSimming))
	b = appendVec(b, s.P)
	b = appendVec(b, s.DP)
	b = appendFloat(b, s.DistanceLimit)
	b = appendFloat(b, s.FacingDirection)
	b = binary.LittleEndian.AppendUint32(b, s.HitPointMax)
	for _, hp := range s.HitPoints[:min(int(s.HitPointMax), len(s.HitPoints))] {
		b = append(b, hp.Flags, hp.FilledAmount)
	}
	b = binary.LittleEndian.AppendUint32(b, s.Sword.Index)
	// A nil group and an empty one describe the same shape.
	var g entity.VolumeGroup
	if s.Collision != nil {
		g = *s.Collision
	}
	b = appendVolume(b, g.Total)
	for _, v := range g.Volumes {
		b = appendVolume(b, v)
	}
	return b
}

func appendVolume(b []byte, v entity.Volume) []byte {
	return appendVec(appendVec(b, v.Offset), v.Dim)
}

func appendVec(b []byte, v [3]float32) []byte {
	for _, f := range v {
		b = appendFloat(b, f)
	}
	return b
}

func appendFloat(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

// shareVolumes makes entities with identical collision shapes point at one VolumeGroup again. gob writes
// each pointer's target separately, so a decoded snapshot would otherwise hold a group per entity.
func shareVolumes(lows []entity.Low) {
	groups := make(map[uint64][]*entity.VolumeGroup)
	var buf []byte
	for i := range lows {
		g := lows[i].Sim.Collision
		if g == nil {
			lows[i].Sim.Collision = entity.NewNullGroup()
			continue
		}
		buf = appendVolume(buf[:0], g.Total)
		for _, v := range g.Volumes {
			buf = appendVolume(buf, v)
		}
		key := xxh3.Hash(buf)

		shared := false
		for _, other := range groups[key] {
			if sameGroup(g, other) {
				lows[i].Sim.Collision = other
				shared = true
				break
			}
		}
		if !shared {
			groups[key] = append(groups[key], g)
		}
	}
}

func sameGroup(a, b *entity.VolumeGroup) bool {
	if a.Total != b.Total || len(a.Volumes) != len(b.Volumes) {
		return false
	}
	for i := range a.Volumes {
		if a.Volumes[i] != b.Volumes[i] {
			return false
		}
	}
	return true
}
