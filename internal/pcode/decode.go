package pcode

import (
	"fmt"

	"github.com/acsvm/acsvm/internal/bytecursor"
)

// Decode reads one opcode from cur per §4.5's "Opcode decode": in
// small-code mode a single byte, continued to a second byte when the first
// is >= MaxSingleByte; in fixed mode a 32-bit little-endian word. It does
// not reject unknown values — validity is the caller's job via Op.Valid,
// since an unrecognized opcode is fatal (§7), not a decode error.
func Decode(cur *bytecursor.Cursor, smallCode bool) (Op, error) {
	if !smallCode {
		v, err := cur.U32()
		if err != nil {
			return 0, err
		}
		return Op(v), nil
	}
	b, err := cur.Byte()
	if err != nil {
		return 0, err
	}
	if int(b) < MaxSingleByte {
		return Op(b), nil
	}
	b2, err := cur.Byte()
	if err != nil {
		return 0, fmt.Errorf("pcode: truncated two-byte opcode after %d: %w", b, err)
	}
	return Op(MaxSingleByte) + Op(b2), nil
}
