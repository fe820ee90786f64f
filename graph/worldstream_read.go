package graph

import (
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/stream"
)

// KnownComponentType tells the reader how to consume a registered
// component type's serialized block. Readers register one per live RTTI
// descriptor; types with no registration present in the stream are
// skipped by their block length rather than failing the whole load.
type KnownComponentType struct {
	TypeName    string
	TypeVersion uint32
}

// ReadWorldStream decodes a stream written by WriteWorldStream. known
// maps type names the caller can actually instantiate; any type present
// in the stream but absent from known has its creation and serialized
// blocks skipped by length, and its name is returned in skippedTypes.
func ReadWorldStream(r stream.Reader, known map[string]bool, maxVersion uint32) (*WorldStream, []string, error) {
	version, err := stream.ReadU8(r)
	if err != nil {
		return nil, nil, err
	}
	if uint32(version) > maxVersion {
		return nil, nil, ErrUnsupportedVersion
	}

	dedup, err := stream.BeginDedupRead(r)
	if err != nil {
		return nil, nil, err
	}
	dr := dedup.Reader()

	numRoots, err := stream.ReadU32(dr)
	if err != nil {
		return nil, nil, err
	}
	numChildren, err := stream.ReadU32(dr)
	if err != nil {
		return nil, nil, err
	}
	numTypes, err := stream.ReadU32(dr)
	if err != nil {
		return nil, nil, err
	}

	ws := &WorldStream{
		RootObjects:  make([]WorldObject, numRoots),
		ChildObjects: make([]WorldObject, numChildren),
	}
	for i := range ws.RootObjects {
		obj, err := readWorldObject(dr)
		if err != nil {
			return nil, nil, err
		}
		ws.RootObjects[i] = obj
	}
	for i := range ws.ChildObjects {
		obj, err := readWorldObject(dr)
		if err != nil {
			return nil, nil, err
		}
		ws.ChildObjects[i] = obj
	}

	headers := make([]struct {
		name    string
		version uint32
	}, numTypes)
	for i := range headers {
		name, err := stream.ReadString(dr)
		if err != nil {
			return nil, nil, err
		}
		v, err := stream.ReadU32(dr)
		if err != nil {
			return nil, nil, err
		}
		headers[i].name, headers[i].version = name, v
	}

	var skipped []string
	ws.Types = make([]ComponentTypeBlock, numTypes)
	for i, h := range headers {
		ws.Types[i].TypeName = h.name
		ws.Types[i].TypeVersion = h.version
	}

	for i, h := range headers {
		blockLen, err := stream.ReadU32(dr)
		if err != nil {
			return nil, nil, err
		}
		raw := make([]byte, blockLen)
		if _, err := dr.ReadBytes(raw); err != nil {
			return nil, nil, err
		}
		if !known[h.name] {
			skipped = append(skipped, h.name)
			continue
		}
		creations, err := decodeCreationBlock(raw)
		if err != nil {
			return nil, nil, err
		}
		ws.Types[i].Creations = creations
	}

	for i, h := range headers {
		blockLen, err := stream.ReadU32(dr)
		if err != nil {
			return nil, nil, err
		}
		raw := make([]byte, blockLen)
		if _, err := dr.ReadBytes(raw); err != nil {
			return nil, nil, err
		}
		if !known[h.name] {
			continue
		}
		payloads, err := decodeSerializedBlock(raw, len(ws.Types[i].Creations))
		if err != nil {
			return nil, nil, err
		}
		ws.Types[i].Serialized = payloads
	}

	return ws, skipped, nil
}

func readWorldObject(r stream.Reader) (WorldObject, error) {
	var obj WorldObject
	var err error
	if obj.ParentIndex, err = stream.ReadU32(r); err != nil {
		return obj, err
	}
	if obj.Name, err = stream.ReadString(r); err != nil {
		return obj, err
	}
	if obj.GlobalKey, err = stream.ReadString(r); err != nil {
		return obj, err
	}
	pos, err := stream.ReadVec3(r)
	if err != nil {
		return obj, err
	}
	rot, err := stream.ReadQuat(r)
	if err != nil {
		return obj, err
	}
	scale, err := stream.ReadVec3(r)
	if err != nil {
		return obj, err
	}
	uscale, err := stream.ReadF32(r)
	if err != nil {
		return obj, err
	}
	obj.Local = corevalue.Transform{Position: pos, Rotation: rot, Scale: scale, UniformScale: uscale}

	active, err := stream.ReadU8(r)
	if err != nil {
		return obj, err
	}
	obj.ActiveFlag = active != 0
	dynamic, err := stream.ReadU8(r)
	if err != nil {
		return obj, err
	}
	obj.DynamicFlag = dynamic != 0

	tags, err := readTagSet(r)
	if err != nil {
		return obj, err
	}
	obj.Tags = tags

	if obj.TeamID, err = stream.ReadU16(r); err != nil {
		return obj, err
	}
	if obj.StableSeed, err = stream.ReadU32(r); err != nil {
		return obj, err
	}
	return obj, nil
}

func readTagSet(r stream.Reader) ([]uint32, error) {
	numBlocks, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if numBlocks == 0 {
		return nil, nil
	}
	firstIndex, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, numBlocks)
	for i := range words {
		w, err := stream.ReadU64(r)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return blocksToTags(firstIndex, words), nil
}

func decodeCreationBlock(raw []byte) ([]ComponentCreation, error) {
	r := stream.NewReader(&bytesReader{raw})
	count, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]ComponentCreation, count)
	for i := range out {
		parent, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		dense, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		active, err := stream.ReadU8(r)
		if err != nil {
			return nil, err
		}
		flags, err := stream.ReadU8(r)
		if err != nil {
			return nil, err
		}
		out[i] = ComponentCreation{ParentObjectIndex: parent, DenseIndex: dense, ActiveFlag: active != 0, UserFlags: flags}
	}
	return out, nil
}

// decodeSerializedBlock splits raw back into the length-prefixed payloads
// writeSerializedBlock concatenated, one per component in creation order.
// count is the number of creations already decoded for this type, so a
// truncated or malformed block fails instead of silently under-reading.
func decodeSerializedBlock(raw []byte, count int) ([][]byte, error) {
	r := stream.NewReader(&bytesReader{raw})
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		n, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, n)
		if n > 0 {
			if _, err := r.ReadBytes(payload); err != nil {
				return nil, err
			}
		}
		out[i] = payload
	}
	return out, nil
}

// bytesReader adapts a byte slice to io.Reader so decodeCreationBlock can
// reuse stream.NewReader instead of a bespoke scalar decoder.
type bytesReader struct{ b []byte }

func (r *bytesReader) Read(p []byte) (int, error) {
	n := copy(p, r.b)
	if n == 0 && len(p) > 0 {
		return 0, errEOF
	}
	r.b = r.b[n:]
	return n, nil
}

type eofError struct{}

func (eofError) Error() string { return "EOF" }

var errEOF = eofError{}
