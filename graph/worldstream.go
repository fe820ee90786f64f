package graph

import (
	"sort"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/stream"
	"github.com/pkg/errors"
)

// WorldVersion is the current wire format version this package writes.
// Readers tolerate any version with registered patches bringing it
// forward; anything past the newest registered target is rejected.
const WorldVersion = 10

var ErrUnsupportedVersion = errors.New("graph: unsupported world stream version")

// WorldObject is the flattened per-object record the world wire format
// carries, independent of the typed GameObject the world package owns.
type WorldObject struct {
	ParentIndex  uint32 // 0 = no parent, else 1-based dense index
	Name         string
	GlobalKey    string
	Local        corevalue.Transform
	ActiveFlag   bool
	DynamicFlag  bool
	Tags         []uint32
	TeamID       uint16
	StableSeed   uint32
}

// ComponentTypeBlock groups every component of one type, in creation and
// serialized-data form.
type ComponentTypeBlock struct {
	TypeName    string
	TypeVersion uint32
	Creations   []ComponentCreation
	// Serialized holds each component's pre-encoded payload in the same
	// order as Creations; each payload is individually length-prefixed
	// so the reader can split the block back into per-component slices.
	Serialized [][]byte
}

// ComponentCreation is the per-component header written in the creation
// block: which object it belongs to, its dense index within its type,
// whether it starts active, and its 8 user flags.
type ComponentCreation struct {
	ParentObjectIndex uint32
	DenseIndex        uint32
	ActiveFlag        bool
	UserFlags         uint8
}

// WorldStream is the flattened, write-ready form of a world snapshot:
// roots first, then children (both already in BFS order), plus the
// sorted component type blocks.
type WorldStream struct {
	RootObjects  []WorldObject
	ChildObjects []WorldObject
	Types        []ComponentTypeBlock
}

// WriteWorldStream encodes ws to w following the wire layout: version
// byte, string-dedup scope, counts, objects (roots then children),
// per-type headers, per-type creation blocks, per-type serialized blocks.
// Component types are assumed already sorted by name by the caller
// assembling WorldStream (the world package's writer does this when it
// flattens live objects); WriteWorldStream re-sorts defensively so a
// caller-supplied order never breaks determinism.
func WriteWorldStream(w stream.Writer, ws *WorldStream) error {
	if err := stream.WriteU8(w, WorldVersion); err != nil {
		return err
	}

	sortedTypes := append([]ComponentTypeBlock(nil), ws.Types...)
	sort.Slice(sortedTypes, func(i, j int) bool { return sortedTypes[i].TypeName < sortedTypes[j].TypeName })

	dedup := stream.BeginDedupWrite()
	sw := dedup.Writer()

	if err := stream.WriteU32(sw, uint32(len(ws.RootObjects))); err != nil {
		return err
	}
	if err := stream.WriteU32(sw, uint32(len(ws.ChildObjects))); err != nil {
		return err
	}
	if err := stream.WriteU32(sw, uint32(len(sortedTypes))); err != nil {
		return err
	}

	for _, obj := range ws.RootObjects {
		if err := writeWorldObject(sw, dedup, obj); err != nil {
			return err
		}
	}
	for _, obj := range ws.ChildObjects {
		if err := writeWorldObject(sw, dedup, obj); err != nil {
			return err
		}
	}

	for _, t := range sortedTypes {
		if err := stream.WriteString(sw, t.TypeName); err != nil {
			return err
		}
		if err := stream.WriteU32(sw, t.TypeVersion); err != nil {
			return err
		}
	}

	for _, t := range sortedTypes {
		if err := writeCreationBlock(sw, t); err != nil {
			return err
		}
	}

	for _, t := range sortedTypes {
		if err := writeSerializedBlock(sw, t); err != nil {
			return err
		}
	}

	_, err := dedup.End(w)
	return err
}

func writeWorldObject(w stream.Writer, dedup *stream.DedupWriteContext, obj WorldObject) error {
	if err := stream.WriteU32(w, obj.ParentIndex); err != nil {
		return err
	}
	if err := stream.WriteString(w, obj.Name); err != nil {
		return err
	}
	if err := stream.WriteString(w, obj.GlobalKey); err != nil {
		return err
	}
	if err := stream.WriteVec3(w, obj.Local.Position); err != nil {
		return err
	}
	if err := stream.WriteQuat(w, obj.Local.Rotation); err != nil {
		return err
	}
	if err := stream.WriteVec3(w, obj.Local.Scale); err != nil {
		return err
	}
	if err := stream.WriteF32(w, obj.Local.UniformScale); err != nil {
		return err
	}
	if err := stream.WriteU8(w, boolToU8(obj.ActiveFlag)); err != nil {
		return err
	}
	if err := stream.WriteU8(w, boolToU8(obj.DynamicFlag)); err != nil {
		return err
	}
	if err := writeTagSet(w, obj.Tags); err != nil {
		return err
	}
	if err := stream.WriteU16(w, obj.TeamID); err != nil {
		return err
	}
	return stream.WriteU32(w, obj.StableSeed)
}

// writeTagSet emits the sparse block representation: a first-block index
// followed by the block words, mirroring TagSet's lazy growth from the
// first set bit.
func writeTagSet(w stream.Writer, tags []uint32) error {
	blocks := tagsToBlocks(tags)
	if err := stream.WriteU32(w, uint32(len(blocks))); err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	if err := stream.WriteU32(w, blocks[0].index); err != nil {
		return err
	}
	for _, b := range blocks {
		if err := stream.WriteU64(w, b.word); err != nil {
			return err
		}
	}
	return nil
}

type tagBlock struct {
	index uint32
	word  uint64
}

func tagsToBlocks(tags []uint32) []tagBlock {
	if len(tags) == 0 {
		return nil
	}
	byIndex := make(map[uint32]uint64)
	minIdx := ^uint32(0)
	maxIdx := uint32(0)
	for _, t := range tags {
		idx := t / 64
		bit := t % 64
		byIndex[idx] |= uint64(1) << bit
		if idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	blocks := make([]tagBlock, 0, maxIdx-minIdx+1)
	for i := minIdx; i <= maxIdx; i++ {
		blocks = append(blocks, tagBlock{index: i, word: byIndex[i]})
	}
	return blocks
}

func blocksToTags(firstIndex uint32, words []uint64) []uint32 {
	var tags []uint32
	for i, word := range words {
		base := (firstIndex + uint32(i)) * 64
		for bit := uint32(0); bit < 64; bit++ {
			if word&(1<<bit) != 0 {
				tags = append(tags, base+bit)
			}
		}
	}
	return tags
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func writeCreationBlock(w stream.Writer, t ComponentTypeBlock) error {
	var body bytesSink
	for _, c := range t.Creations {
		if err := stream.WriteU32(&body, c.ParentObjectIndex); err != nil {
			return err
		}
		if err := stream.WriteU32(&body, c.DenseIndex); err != nil {
			return err
		}
		if err := stream.WriteU8(&body, boolToU8(c.ActiveFlag)); err != nil {
			return err
		}
		if err := stream.WriteU8(&body, c.UserFlags); err != nil {
			return err
		}
	}
	payload := append(u32bytes(uint32(len(t.Creations))), body.buf...)
	if err := stream.WriteU32(w, uint32(len(payload))); err != nil {
		return err
	}
	return w.WriteBytes(payload)
}

// writeSerializedBlock emits each component's payload length-prefixed so a
// reader can split the concatenated blob back into per-component slices
// without needing to understand the payload format itself.
func writeSerializedBlock(w stream.Writer, t ComponentTypeBlock) error {
	var body bytesSink
	for _, payload := range t.Serialized {
		if err := stream.WriteU32(&body, uint32(len(payload))); err != nil {
			return err
		}
		body.buf = append(body.buf, payload...)
	}
	if err := stream.WriteU32(w, uint32(len(body.buf))); err != nil {
		return err
	}
	return w.WriteBytes(body.buf)
}

// bytesSink is a tiny in-memory stream.Writer used to build length-
// prefixed blocks before knowing their total size.
type bytesSink struct{ buf []byte }

func (b *bytesSink) WriteBytes(p []byte) error {
	b.buf = append(b.buf, p...)
	return nil
}

func u32bytes(v uint32) []byte {
	var sink bytesSink
	_ = stream.WriteU32(&sink, v)
	return sink.buf
}
