package ast

import (
	"bytes"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"rial/internal/source"
)

// Current schema version - increment when the binary unit format changes
const unitSchemaVersion uint16 = 1

// unitPayload is the on-disk envelope of a .rast.mp file.
type unitPayload struct {
	Schema uint16 `msgpack:"schema"`
	Unit   *Unit  `msgpack:"unit"`
}

// EncodeUnit writes u in the binary interchange form.
func EncodeUnit(w io.Writer, u *Unit) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&unitPayload{Schema: unitSchemaVersion, Unit: u})
}

// MarshalUnit is EncodeUnit into a byte slice.
func MarshalUnit(u *Unit) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeUnit(&buf, u); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeUnit reads a unit in the binary interchange form.
func DecodeUnit(data []byte) (*Unit, error) {
	var p unitPayload
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("ast: decode unit: %w", err)
	}
	if p.Schema != unitSchemaVersion {
		return nil, fmt.Errorf("ast: unit schema %d, expected %d", p.Schema, unitSchemaVersion)
	}
	if p.Unit == nil {
		return nil, fmt.Errorf("ast: empty unit payload")
	}
	return p.Unit, nil
}

// Узлы кодируются массивом [kind, line, col, data]: payload хранится за
// интерфейсом, поэтому конкретный тип восстанавливается по kind.

var (
	_ msgpack.CustomEncoder = (*Expr)(nil)
	_ msgpack.CustomDecoder = (*Expr)(nil)
	_ msgpack.CustomEncoder = (*Stmt)(nil)
	_ msgpack.CustomDecoder = (*Stmt)(nil)
)

func encodeHeader(enc *msgpack.Encoder, kind uint8, pos source.Pos) error {
	if err := enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := enc.EncodeUint(uint64(kind)); err != nil {
		return err
	}
	if err := enc.EncodeUint(uint64(pos.Line)); err != nil {
		return err
	}
	return enc.EncodeUint(uint64(pos.Col))
}

func decodeHeader(dec *msgpack.Decoder) (kind uint8, pos source.Pos, err error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return 0, pos, err
	}
	if n != 4 {
		return 0, pos, fmt.Errorf("ast: node array of %d elements", n)
	}
	k, err := dec.DecodeUint64()
	if err != nil {
		return 0, pos, err
	}
	line, err := dec.DecodeUint64()
	if err != nil {
		return 0, pos, err
	}
	col, err := dec.DecodeUint64()
	if err != nil {
		return 0, pos, err
	}
	if kind, err = safecast.Conv[uint8](k); err != nil {
		return 0, pos, err
	}
	if pos.Line, err = safecast.Conv[uint32](line); err != nil {
		return 0, pos, err
	}
	if pos.Col, err = safecast.Conv[uint32](col); err != nil {
		return 0, pos, err
	}
	return kind, pos, nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (e *Expr) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := encodeHeader(enc, uint8(e.Kind), e.Pos); err != nil {
		return err
	}
	return enc.Encode(e.Data)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (e *Expr) DecodeMsgpack(dec *msgpack.Decoder) error {
	kind, pos, err := decodeHeader(dec)
	if err != nil {
		return err
	}
	e.Kind, e.Pos = ExprKind(kind), pos
	switch e.Kind {
	case ExprLiteral:
		e.Data, err = decodeData[LiteralData](dec)
	case ExprPath:
		e.Data, err = decodeData[PathData](dec)
	case ExprUnary:
		e.Data, err = decodeData[UnaryData](dec)
	case ExprBinary:
		e.Data, err = decodeData[BinaryData](dec)
	case ExprCast:
		e.Data, err = decodeData[CastData](dec)
	case ExprTernary:
		e.Data, err = decodeData[TernaryData](dec)
	case ExprCall:
		e.Data, err = decodeData[CallData](dec)
	case ExprMethodCall:
		e.Data, err = decodeData[MethodCallData](dec)
	case ExprConstruct:
		e.Data, err = decodeData[ConstructData](dec)
	default:
		return fmt.Errorf("ast: unknown expression kind %d", kind)
	}
	return err
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (s *Stmt) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := encodeHeader(enc, uint8(s.Kind), s.Pos); err != nil {
		return err
	}
	return enc.Encode(s.Data)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *Stmt) DecodeMsgpack(dec *msgpack.Decoder) error {
	kind, pos, err := decodeHeader(dec)
	if err != nil {
		return err
	}
	s.Kind, s.Pos = StmtKind(kind), pos
	switch s.Kind {
	case StmtExpr:
		s.Data, err = decodeData[ExprStmtData](dec)
	case StmtVar:
		s.Data, err = decodeData[VarData](dec)
	case StmtAssign:
		s.Data, err = decodeData[AssignData](dec)
	case StmtCompoundAssign:
		s.Data, err = decodeData[CompoundAssignData](dec)
	case StmtIncDec:
		s.Data, err = decodeData[IncDecData](dec)
	case StmtReturn:
		s.Data, err = decodeData[ReturnData](dec)
	case StmtBreak:
		s.Data, err = decodeData[BreakData](dec)
	case StmtContinue:
		s.Data, err = decodeData[ContinueData](dec)
	case StmtIf:
		s.Data, err = decodeData[IfData](dec)
	case StmtWhile:
		s.Data, err = decodeData[WhileData](dec)
	case StmtLoop:
		s.Data, err = decodeData[LoopData](dec)
	case StmtFor:
		s.Data, err = decodeData[ForData](dec)
	case StmtSwitch:
		s.Data, err = decodeData[SwitchData](dec)
	default:
		return fmt.Errorf("ast: unknown statement kind %d", kind)
	}
	return err
}

func decodeData[T any](dec *msgpack.Decoder) (T, error) {
	var v T
	err := dec.Decode(&v)
	return v, err
}
