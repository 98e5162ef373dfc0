// Package decode implements the "Parser" external collaborator of the
// translator (spec.md §6): it turns a raw Wasm binary into the wasm.Module
// data model and, for each function body, a stream of CodeOperator events
// the frontend package drives directly without ever touching raw bytes.
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/waspile/waspile/leb128"
	"github.com/waspile/waspile/wasm"
)

const (
	magic   = 0x6d736100 // "\0asm"
	version = 0x00000001
)

const (
	sectionCustom = iota
	sectionType
	sectionImport
	sectionFunction
	sectionTable
	sectionMemory
	sectionGlobal
	sectionExport
	sectionStart
	sectionElement
	sectionCode
	sectionData
)

// ParseModule decodes a complete Wasm binary module into wasm.Module,
// resolving every section the core translator consults directly: types,
// imports, functions, exports, globals, the presence of a memory, and the
// decoded (but not yet operator-parsed) code bodies.
func ParseModule(data []byte) (*wasm.Module, error) {
	r := bytes.NewReader(data)

	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("decode: reading header: %w", err)
	}
	if leU32(hdr[0:4]) != magic {
		return nil, fmt.Errorf("decode: not a wasm module (bad magic)")
	}
	if leU32(hdr[4:8]) != version {
		return nil, fmt.Errorf("decode: unsupported wasm version %#x", leU32(hdr[4:8]))
	}

	m := &wasm.Module{}
	for {
		id, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode: reading section id: %w", err)
		}
		size, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("decode: reading section %d size: %w", id, err)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("decode: reading section %d body: %w", id, err)
		}
		sr := bytes.NewReader(body)
		switch id {
		case sectionType:
			if err := parseTypeSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: type section: %w", err)
			}
		case sectionImport:
			if err := parseImportSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: import section: %w", err)
			}
		case sectionFunction:
			if err := parseFunctionSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: function section: %w", err)
			}
		case sectionMemory:
			var count uint32
			if count, err = leb128.DecodeUint32(sr); err != nil {
				return nil, fmt.Errorf("decode: memory section: %w", err)
			}
			m.HasMemory = count > 0
		case sectionGlobal:
			if err := parseGlobalSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: global section: %w", err)
			}
		case sectionExport:
			if err := parseExportSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: export section: %w", err)
			}
		case sectionCode:
			if err := parseCodeSection(sr, m); err != nil {
				return nil, fmt.Errorf("decode: code section: %w", err)
			}
		case sectionCustom, sectionTable, sectionStart, sectionElement, sectionData:
			// Not consulted by the core translator; the Runtime collaborator
			// owns table/element/data wiring out of band.
		default:
			return nil, fmt.Errorf("decode: unknown section id %d", id)
		}
	}

	for _, imp := range m.ImportSection {
		if imp.Type == wasm.ExternTypeFunc {
			m.ImportFuncCount++
		}
	}
	return m, nil
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readName(r *bytes.Reader) (string, error) {
	n, err := leb128.DecodeUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func parseTypeSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.TypeSection = make([]wasm.FunctionType, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return err
		}
		if form != 0x60 {
			return fmt.Errorf("expected functype (0x60), got %#x", form)
		}
		params, err := readValueTypeVec(r)
		if err != nil {
			return err
		}
		results, err := readValueTypeVec(r)
		if err != nil {
			return err
		}
		m.TypeSection[i] = wasm.FunctionType{Params: params, Results: results}
	}
	return nil
}

func readValueTypeVec(r *bytes.Reader) ([]wasm.ValueType, error) {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	vts := make([]wasm.ValueType, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		vts[i] = b
	}
	return vts, nil
}

func parseImportSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.ImportSection = make([]wasm.Import, count)
	for i := uint32(0); i < count; i++ {
		mod, err := readName(r)
		if err != nil {
			return err
		}
		name, err := readName(r)
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		imp := wasm.Import{Module: mod, Name: name, Type: kind}
		switch kind {
		case wasm.ExternTypeFunc:
			if imp.DescFunc, err = leb128.DecodeUint32(r); err != nil {
				return err
			}
		case wasm.ExternTypeTable:
			if err := skipTableType(r); err != nil {
				return err
			}
		case wasm.ExternTypeMemory:
			if err := skipLimits(r); err != nil {
				return err
			}
		case wasm.ExternTypeGlobal:
			vt, err := r.ReadByte()
			if err != nil {
				return err
			}
			mut, err := r.ReadByte()
			if err != nil {
				return err
			}
			imp.DescGlobal = wasm.GlobalType{ValType: vt, Mutable: mut != 0}
		default:
			return fmt.Errorf("unknown import kind %#x", kind)
		}
		m.ImportSection[i] = imp
	}
	return nil
}

func skipTableType(r *bytes.Reader) error {
	if _, err := r.ReadByte(); err != nil { // elemtype
		return err
	}
	return skipLimits(r)
}

func skipLimits(r *bytes.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if _, err := leb128.DecodeUint32(r); err != nil { // min
		return err
	}
	if flags&0x01 != 0 {
		if _, err := leb128.DecodeUint32(r); err != nil { // max
			return err
		}
	}
	return nil
}

func parseFunctionSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.FunctionSection = make([]wasm.Index, count)
	for i := uint32(0); i < count; i++ {
		if m.FunctionSection[i], err = leb128.DecodeUint32(r); err != nil {
			return err
		}
	}
	return nil
}

func parseGlobalSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.GlobalSection = make([]wasm.Global, count)
	for i := uint32(0); i < count; i++ {
		vt, err := r.ReadByte()
		if err != nil {
			return err
		}
		mut, err := r.ReadByte()
		if err != nil {
			return err
		}
		init, err := readInitExpr(r)
		if err != nil {
			return err
		}
		m.GlobalSection[i] = wasm.Global{Type: wasm.GlobalType{ValType: vt, Mutable: mut != 0}, Init: init}
	}
	return nil
}

func parseExportSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.ExportSection = make([]wasm.Export, count)
	for i := uint32(0); i < count; i++ {
		name, err := readName(r)
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		idx, err := leb128.DecodeUint32(r)
		if err != nil {
			return err
		}
		m.ExportSection[i] = wasm.Export{Name: name, Type: kind, Index: idx}
	}
	return nil
}

func parseCodeSection(r *bytes.Reader, m *wasm.Module) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return err
	}
	m.CodeSection = make([]wasm.Code, count)
	for i := uint32(0); i < count; i++ {
		bodySize, err := leb128.DecodeUint32(r)
		if err != nil {
			return err
		}
		bodyBytes := make([]byte, bodySize)
		if _, err := io.ReadFull(r, bodyBytes); err != nil {
			return err
		}
		br := bytes.NewReader(bodyBytes)

		groupCount, err := leb128.DecodeUint32(br)
		if err != nil {
			return err
		}
		groups := make([]wasm.LocalGroup, groupCount)
		for j := uint32(0); j < groupCount; j++ {
			n, err := leb128.DecodeUint32(br)
			if err != nil {
				return err
			}
			t, err := br.ReadByte()
			if err != nil {
				return err
			}
			groups[j] = wasm.LocalGroup{Count: n, Type: t}
		}
		rest := make([]byte, br.Len())
		if _, err := io.ReadFull(br, rest); err != nil {
			return err
		}
		m.CodeSection[i] = wasm.Code{LocalGroups: groups, Body: rest}
	}
	return nil
}

// readInitExpr copies a constant expression verbatim up to and including its
// terminating `end` opcode. The core translator never evaluates these (the
// Runtime collaborator owns global/data/element initialization), so this
// only needs to know each opcode's immediate width, not its semantics.
func readInitExpr(r *bytes.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(op)
		if op == 0x0b { // end
			return buf.Bytes(), nil
		}
		switch op {
		case 0x41: // i32.const
			if err := copyLEB(r, &buf); err != nil {
				return nil, err
			}
		case 0x42: // i64.const
			if err := copyLEB(r, &buf); err != nil {
				return nil, err
			}
		case 0x43: // f32.const
			if err := copyN(r, &buf, 4); err != nil {
				return nil, err
			}
		case 0x44: // f64.const
			if err := copyN(r, &buf, 8); err != nil {
				return nil, err
			}
		case 0x23: // global.get
			if err := copyLEB(r, &buf); err != nil {
				return nil, err
			}
		}
	}
}

func copyLEB(r *bytes.Reader, buf *bytes.Buffer) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		buf.WriteByte(b)
		if b&0x80 == 0 {
			return nil
		}
	}
}

func copyN(r *bytes.Reader, buf *bytes.Buffer, n int) error {
	tmp := make([]byte, n)
	if _, err := io.ReadFull(r, tmp); err != nil {
		return err
	}
	buf.Write(tmp)
	return nil
}
