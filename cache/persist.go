package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/KyleAnthonyShepherd/spring/model"
)

// Snapshot file layout (zstd-compressed stream):
//
//	magic   uint32
//	version uint16
//	count   uint32
//	entries, least-recently-used first:
//	  hash      uint64
//	  pathType  uint8
//	  numPoints uint32
//	  points    numPoints * (x, z float32) ... y is always zero for cached paths
const (
	snapshotMagic   = 0x53505043 // "SPPC"
	snapshotVersion = 1
)

var errBadSnapshot = errors.New("cache: malformed snapshot")

// Save writes a compressed snapshot of the cache contents to w. Entries are
// written least-recently-used first so that reloading preserves eviction
// order.
func (c *PathCache) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("cache: create compressor: %w", err)
	}

	if err := writeHeader(zw, uint32(c.evictList.Len())); err != nil {
		_ = zw.Close()
		return err
	}

	for e := c.evictList.Back(); e != nil; e = e.Prev() {
		ent := e.Value.(*entry)
		if err := writeEntry(zw, ent.hash, ent.path); err != nil {
			_ = zw.Close()
			return err
		}
	}

	return zw.Close()
}

// Load replaces the cache contents with a snapshot previously written by
// Save. Hit and miss counters are unaffected.
func (c *PathCache) Load(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("cache: create decompressor: %w", err)
	}
	defer zr.Close()

	count, err := readHeader(zr)
	if err != nil {
		return err
	}

	c.Purge()

	for i := uint32(0); i < count; i++ {
		hash, path, err := readEntry(zr)
		if err != nil {
			return err
		}
		c.Set(hash, path)
	}
	return nil
}

func writeHeader(w io.Writer, count uint32) error {
	var hdr [10]byte
	binary.LittleEndian.PutUint32(hdr[0:], snapshotMagic)
	binary.LittleEndian.PutUint16(hdr[4:], snapshotVersion)
	binary.LittleEndian.PutUint32(hdr[6:], count)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("cache: write snapshot header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (uint32, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, fmt.Errorf("cache: read snapshot header: %w", err)
	}

	if binary.LittleEndian.Uint32(hdr[0:]) != snapshotMagic {
		return 0, errBadSnapshot
	}
	if binary.LittleEndian.Uint16(hdr[4:]) != snapshotVersion {
		return 0, fmt.Errorf("cache: unsupported snapshot version %d", binary.LittleEndian.Uint16(hdr[4:]))
	}
	return binary.LittleEndian.Uint32(hdr[6:]), nil
}

func writeEntry(w io.Writer, hash uint64, path *model.Path) error {
	var hdr [13]byte
	binary.LittleEndian.PutUint64(hdr[0:], hash)
	hdr[8] = path.PathType()
	binary.LittleEndian.PutUint32(hdr[9:], uint32(path.NumPoints()))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("cache: write snapshot entry: %w", err)
	}

	buf := make([]byte, path.NumPoints()*8)
	for i := 0; i < path.NumPoints(); i++ {
		pt := path.Point(i)
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(pt.X))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(pt.Z))
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("cache: write snapshot entry: %w", err)
	}
	return nil
}

func readEntry(r io.Reader) (uint64, *model.Path, error) {
	var hdr [13]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("cache: read snapshot entry: %w", err)
	}

	hash := binary.LittleEndian.Uint64(hdr[0:])
	pathType := hdr[8]
	numPoints := binary.LittleEndian.Uint32(hdr[9:])

	if numPoints < 2 || numPoints > 1<<20 {
		return 0, nil, errBadSnapshot
	}

	buf := make([]byte, numPoints*8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("cache: read snapshot entry: %w", err)
	}

	path := model.NewPath(0, pathType)
	path.AllocPoints(int(numPoints))
	for i := 0; i < int(numPoints); i++ {
		path.SetPoint(i, model.Point{
			X: math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:])),
		})
	}

	path.SetSourcePoint(path.Point(0))
	path.SetTargetPoint(path.Point(int(numPoints) - 1))
	path.SetHash(hash)
	path.SetHasFullPath(true)
	path.SetBoundingBox()

	return hash, path, nil
}
