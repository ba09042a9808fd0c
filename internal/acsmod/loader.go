package acsmod

import (
	"fmt"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsobj"
	"github.com/acsvm/acsvm/internal/bytecursor"
	"github.com/acsvm/acsvm/internal/diag"
)

// spRecordSize is the on-disk size of one SPTR record: i16 number, u8 type,
// u8 num_param, i32 offset (§4.2).
const spRecordSize = 8

// funcRecordSize is the on-disk size of one FUNC record: u8 num_param,
// u8 size, u8 has_return, u8 pad, i32 offset.
const funcRecordSize = 8

// Load runs the two-pass loader (§4.2) over obj and returns a populated
// Module. Malformed chunks (non-NUL-terminated names, truncated records)
// are fatal; unrecognized-but-well-formed content (unknown script types,
// unknown SFLG bits) is reported to stream as a warning and tolerated.
func Load(obj *acsobj.Object, name string, stream *diag.Stream) (*Module, error) {
	m := NewModule(name, obj)

	var chunks []acsobj.Chunk
	if err := obj.Chunks(func(c acsobj.Chunk) error {
		chunks = append(chunks, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("acsmod: reading chunk directory: %w", err)
	}

	for _, c := range chunks {
		if err := loadPass1(m, c, stream); err != nil {
			return nil, fmt.Errorf("acsmod: module %q: pass1 %s: %w", name, c.Tag, err)
		}
	}
	for _, c := range chunks {
		if err := loadPass2(m, c, stream); err != nil {
			return nil, fmt.Errorf("acsmod: module %q: pass2 %s: %w", name, c.Tag, err)
		}
	}
	return m, nil
}

func loadPass1(m *Module, c acsobj.Chunk, stream *diag.Stream) error {
	switch c.Tag {
	case "SPTR":
		return loadSPTR(m, c, stream)
	case "STRL", "STRE":
		return loadStringTable(m, c, c.Tag == "STRE")
	case "ARAY":
		return loadARAY(m, c)
	case "FUNC":
		return loadFUNC(m, c)
	case "LOAD":
		return loadLOAD(m, c)
	default:
		return nil
	}
}

func loadPass2(m *Module, c acsobj.Chunk, stream *diag.Stream) error {
	switch c.Tag {
	case "MINI":
		return loadMINI(m, c)
	case "AINI":
		return loadAINI(m, c)
	case "SARY":
		return loadLocalArrayTable(m, c, true)
	case "FARY":
		return loadLocalArrayTable(m, c, false)
	case "SFLG":
		return loadSFLG(m, c, stream)
	case "SVCT":
		return loadSVCT(m, c)
	case "SNAM":
		return loadSNAM(m, c)
	case "MEXP":
		return loadMEXP(m, c)
	case "MIMP":
		return loadMIMP(m, c)
	case "AIMP":
		return loadAIMP(m, c)
	case "FNAM":
		return loadFNAM(m, c)
	default:
		return nil
	}
}

func loadSPTR(m *Module, c acsobj.Chunk, stream *diag.Stream) error {
	if len(c.Payload)%spRecordSize != 0 {
		return fmt.Errorf("SPTR payload size %d not a multiple of %d", len(c.Payload), spRecordSize)
	}
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		number, err := cur.I16()
		if err != nil {
			return err
		}
		rawType, err := cur.Byte()
		if err != nil {
			return err
		}
		numParam, err := cur.Byte()
		if err != nil {
			return err
		}
		offset, err := cur.I32()
		if err != nil {
			return err
		}
		scriptType := decodeScriptType(rawType)
		if scriptType == api.ScriptTypeUnknown && stream != nil {
			stream.Printf(diag.LevelWarn, "script %d has unrecognized type %d", number, rawType)
		}
		m.Scripts = append(m.Scripts, &Script{
			Module:    m,
			Number:    int32(number),
			Type:      scriptType,
			CodeStart: offset,
			NumVars:   DefaultScalarVars,
		})
		_ = numParam // script entry-argument count is not modeled separately; the engine treats script locals uniformly.
	}
	return nil
}

func decodeScriptType(raw byte) api.ScriptType {
	t := api.ScriptType(raw)
	switch t {
	case api.ScriptTypeClosed, api.ScriptTypeOpen, api.ScriptTypeRespawn, api.ScriptTypeDeath,
		api.ScriptTypeEnter, api.ScriptTypePickup, api.ScriptTypeBlueReturn, api.ScriptTypeRedReturn,
		api.ScriptTypeWhiteReturn, api.ScriptTypeLightning, api.ScriptTypeUnloading, api.ScriptTypeDisconnect,
		api.ScriptTypeReturn, api.ScriptTypeEvent, api.ScriptTypeKill, api.ScriptTypeReopen:
		return t
	default:
		return api.ScriptTypeUnknown
	}
}

func loadStringTable(m *Module, c acsobj.Chunk, encoded bool) error {
	cur := bytecursor.New(c.Payload)
	if _, err := cur.U32(); err != nil { // unused
		return err
	}
	count, err := cur.U32()
	if err != nil {
		return err
	}
	if _, err := cur.U32(); err != nil { // unused
		return err
	}
	offsets := make([]int32, count)
	for i := range offsets {
		v, err := cur.I32()
		if err != nil {
			return err
		}
		offsets[i] = v
	}
	for _, off := range offsets {
		s, err := decodeChunkString(c.Payload, int(off), encoded)
		if err != nil {
			return err
		}
		m.Strings = append(m.Strings, s)
	}
	return nil
}

// decodeChunkString reads a NUL-terminated string at a chunk-relative
// offset. When encoded, every byte is XOR-decoded per §4.2 STRE before the
// NUL check (the decode is applied byte-by-byte so a byte that only
// becomes NUL after decoding correctly terminates the string).
func decodeChunkString(payload []byte, offset int, encoded bool) (string, error) {
	if offset < 0 || offset > len(payload) {
		return "", fmt.Errorf("%w: string offset %d out of chunk (len %d)", bytecursor.ErrOutOfBounds, offset, len(payload))
	}
	if !encoded {
		return bytecursor.CStringAt(payload, offset)
	}
	var out []byte
	for i := offset; i < len(payload); i++ {
		key := byte(int32(offset)*157135 + int32(i-offset)>>1)
		b := payload[i] ^ key
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
	return "", fmt.Errorf("%w: unterminated STRE string at %d", bytecursor.ErrOutOfBounds, offset)
}

func loadARAY(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		index, err := cur.I32()
		if err != nil {
			return err
		}
		size, err := cur.I32()
		if err != nil {
			return err
		}
		if index < 0 || int(index) >= MaxMapVars {
			return fmt.Errorf("ARAY index %d out of range", index)
		}
		if size < 0 {
			return fmt.Errorf("ARAY size %d negative", size)
		}
		m.MapVars[index].Kind = MapVarArray
		m.MapVars[index].Array = make([]int32, size)
	}
	return nil
}

func loadFUNC(m *Module, c acsobj.Chunk) error {
	if len(c.Payload)%funcRecordSize != 0 {
		return fmt.Errorf("FUNC payload size %d not a multiple of %d", len(c.Payload), funcRecordSize)
	}
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		numParam, err := cur.Byte()
		if err != nil {
			return err
		}
		size, err := cur.Byte()
		if err != nil {
			return err
		}
		hasReturn, err := cur.Byte()
		if err != nil {
			return err
		}
		if _, err := cur.Byte(); err != nil { // pad
			return err
		}
		offset, err := cur.I32()
		if err != nil {
			return err
		}
		fn := &Function{
			Module:     m,
			NumParams:  int32(numParam),
			LocalCount: int32(size),
			HasReturn:  hasReturn != 0,
			CodeStart:  offset,
			Imported:   offset == 0,
		}
		m.Functions.Owned = append(m.Functions.Owned, fn)
	}
	return nil
}

func loadLOAD(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		name, err := cur.CString()
		if err != nil {
			return err
		}
		if name == "" {
			continue // padding
		}
		m.Imports = append(m.Imports, &Import{Name: name})
	}
	return nil
}

func loadMINI(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	first, err := cur.I32()
	if err != nil {
		return err
	}
	k := int32(0)
	for cur.Remaining() >= 4 {
		v, err := cur.I32()
		if err != nil {
			return err
		}
		idx := first + k
		if idx >= 0 && int(idx) < MaxMapVars {
			m.MapVars[idx].Value = v
		}
		k++
	}
	return nil
}

func loadAINI(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	index, err := cur.I32()
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= MaxMapVars {
		return fmt.Errorf("AINI index %d out of range", index)
	}
	arr := m.MapVars[index].Array
	i := 0
	for cur.Remaining() >= 4 {
		v, err := cur.I32()
		if err != nil {
			return err
		}
		if i < len(arr) { // a zero-size array silently drops all initializers
			arr[i] = v
		}
		i++
	}
	return nil
}

// loadLocalArrayTable handles both SARY (script local arrays) and FARY
// (function local arrays): "[index:i16] then N 32-bit sizes ... packed
// into a local-array table with running start offsets."
func loadLocalArrayTable(m *Module, c acsobj.Chunk, forScript bool) error {
	cur := bytecursor.New(c.Payload)
	index, err := cur.I16()
	if err != nil {
		return err
	}
	var entries []LocalArrayEntry
	var running int32
	for cur.Remaining() >= 4 {
		size, err := cur.I32()
		if err != nil {
			return err
		}
		entries = append(entries, LocalArrayEntry{Start: running, Size: size})
		running += size
	}
	if forScript {
		s := m.ScriptByNumber(int32(index))
		if s == nil {
			return fmt.Errorf("SARY references unknown script %d", index)
		}
		s.ArrayTable = entries
		s.TotalArraySize = running
	} else {
		if int(index) < 0 || int(index) >= len(m.Functions.Owned) {
			return fmt.Errorf("FARY references unknown function %d", index)
		}
		fn := m.Functions.Owned[index]
		fn.ArrayTable = entries
		fn.TotalArraySize = running
	}
	return nil
}

func loadSFLG(m *Module, c acsobj.Chunk, stream *diag.Stream) error {
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		number, err := cur.I16()
		if err != nil {
			return err
		}
		flags, err := cur.U16()
		if err != nil {
			return err
		}
		s := m.ScriptByNumber(int32(number))
		if s == nil {
			if stream != nil {
				stream.Printf(diag.LevelWarn, "SFLG references unknown script %d, ignored", number)
			}
			continue
		}
		f := api.ScriptFlag(flags)
		if unknown := f.UnknownBits(); unknown != 0 && stream != nil {
			stream.Printf(diag.LevelWarn, "script %d has unrecognized flag bits %#x", number, unknown)
		}
		s.Flags = f
	}
	return nil
}

func loadSVCT(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		number, err := cur.I16()
		if err != nil {
			return err
		}
		size, err := cur.I16()
		if err != nil {
			return err
		}
		s := m.ScriptByNumber(int32(number))
		if s == nil {
			return fmt.Errorf("SVCT references unknown script %d", number)
		}
		s.NumVars = int32(size)
	}
	return nil
}

func loadSNAM(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	count, err := cur.I32()
	if err != nil {
		return err
	}
	for k := int32(0); k < count; k++ {
		off, err := cur.I32()
		if err != nil {
			return err
		}
		name, err := bytecursor.CStringAt(c.Payload, int(off))
		if err != nil {
			return err
		}
		number := -1 - k
		if s := m.ScriptByNumber(number); s != nil {
			s.Name = name
		}
	}
	return nil
}

func loadMEXP(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	count, err := cur.I32()
	if err != nil {
		return err
	}
	for k := int32(0); k < count; k++ {
		off, err := cur.I32()
		if err != nil {
			return err
		}
		name, err := bytecursor.CStringAt(c.Payload, int(off))
		if err != nil {
			return err
		}
		m.ExportNames[k] = name
	}
	return nil
}

func loadMIMP(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	for cur.Remaining() > 0 {
		index, err := cur.I32()
		if err != nil {
			return err
		}
		name, err := cur.CString()
		if err != nil {
			return err
		}
		if index < 0 || int(index) >= MaxMapVars {
			return fmt.Errorf("MIMP index %d out of range", index)
		}
		m.MapVars[index].Imported = true
		m.MapVars[index].ImportName = name
		m.MapVars[index].ImportIsArray = false
	}
	return nil
}

func loadAIMP(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	count, err := cur.U32()
	if err != nil {
		return err
	}
	for k := uint32(0); k < count; k++ {
		index, err := cur.U32()
		if err != nil {
			return err
		}
		if _, err := cur.U32(); err != nil { // declared size; informational only, actual size comes from the exporter
			return err
		}
		name, err := cur.CString()
		if err != nil {
			return err
		}
		if int(index) >= MaxMapVars {
			return fmt.Errorf("AIMP index %d out of range", index)
		}
		m.MapVars[index].Imported = true
		m.MapVars[index].ImportName = name
		m.MapVars[index].ImportIsArray = true
	}
	return nil
}

func loadFNAM(m *Module, c acsobj.Chunk) error {
	cur := bytecursor.New(c.Payload)
	count, err := cur.I32()
	if err != nil {
		return err
	}
	for k := int32(0); k < count; k++ {
		off, err := cur.I32()
		if err != nil {
			return err
		}
		name, err := bytecursor.CStringAt(c.Payload, int(off))
		if err != nil {
			return err
		}
		if int(k) < len(m.Functions.Owned) {
			m.Functions.Owned[k].Name = name
		}
	}
	return nil
}
