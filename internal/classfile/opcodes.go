package classfile

import "encoding/binary"

// bodyRefKind tags a constant-pool reference recovered from a method
// body's bytecode. It deliberately reuses the DependencyEdge kind
// vocabulary the extractor package understands, except where the
// instruction set has no matching edge kind (see the CHECKCAST note
// below, resolved as an Open Question in DESIGN.md).
type bodyRefKind int

const (
	RefNew bodyRefKind = iota
	RefInstanceOf // also covers CHECKCAST; both are type-narrowing checks, no allocation
	RefFieldAccess
	RefMethodCall
	RefLambdaTarget // invokedynamic: the functional-interface type a desugared lambda produces
)

// BodyRef is one constant-pool-resolving instruction found while
// scanning a Code attribute's bytecode.
type BodyRef struct {
	Kind bodyRefKind

	// Populated for RefNew/RefInstanceOf: the internal binary class name.
	ClassName string

	// Populated for RefFieldAccess/RefMethodCall.
	Owner      string
	MemberName string
	Descriptor string
}

// ScanCode walks a method's bytecode instruction stream and returns
// every constant-pool reference relevant to dependency-edge extraction:
// new/anewarray/multianewarray (RefNew), checkcast/instanceof
// (RefInstanceOf), get/putfield, get/putstatic (RefFieldAccess),
// invokevirtual/invokespecial/invokestatic/invokeinterface
// (RefMethodCall), and invokedynamic (RefLambdaTarget: the call-site
// descriptor's return type is the functional interface a desugared
// lambda or method reference produces, so the enclosing method is
// credited with referencing that target type without parsing the
// BootstrapMethods attribute).
func (cf *classFile) ScanCode(code []byte) []BodyRef {
	var refs []BodyRef
	pos := 0
	n := len(code)

	for pos < n {
		op := code[pos]
		start := pos
		pos++

		switch op {
		case 0xBB: // new
			idx := u2At(code, pos)
			pos += 2
			if name := cf.classNameAt(idx); name != "" {
				refs = append(refs, BodyRef{Kind: RefNew, ClassName: name})
			}
		case 0xBD: // anewarray
			idx := u2At(code, pos)
			pos += 2
			if name := cf.classNameAt(idx); name != "" {
				refs = append(refs, BodyRef{Kind: RefNew, ClassName: name})
			}
		case 0xC5: // multianewarray
			idx := u2At(code, pos)
			pos += 2
			if _, err := requireByte(code, pos); err != nil {
				return refs
			}
			pos++ // dimensions
			if name := cf.classNameAt(idx); name != "" {
				refs = append(refs, BodyRef{Kind: RefNew, ClassName: name})
			}
		case 0xC0, 0xC1: // checkcast, instanceof
			idx := u2At(code, pos)
			pos += 2
			if name := cf.classNameAt(idx); name != "" {
				refs = append(refs, BodyRef{Kind: RefInstanceOf, ClassName: name})
			}
		case 0xB2, 0xB3, 0xB4, 0xB5: // getstatic, putstatic, getfield, putfield
			idx := u2At(code, pos)
			pos += 2
			if owner, name, desc, ok := cf.refAt(idx); ok {
				refs = append(refs, BodyRef{Kind: RefFieldAccess, Owner: owner, MemberName: name, Descriptor: desc})
			}
		case 0xB6, 0xB7, 0xB8: // invokevirtual, invokespecial, invokestatic
			idx := u2At(code, pos)
			pos += 2
			if owner, name, desc, ok := cf.refAt(idx); ok {
				refs = append(refs, BodyRef{Kind: RefMethodCall, Owner: owner, MemberName: name, Descriptor: desc})
			}
		case 0xB9: // invokeinterface
			idx := u2At(code, pos)
			pos += 4 // index2 + count + 0
			if owner, name, desc, ok := cf.refAt(idx); ok {
				refs = append(refs, BodyRef{Kind: RefMethodCall, Owner: owner, MemberName: name, Descriptor: desc})
			}
		case 0xBA: // invokedynamic, see doc comment above
			idx := u2At(code, pos)
			pos += 4 // index2 + two zero bytes
			if name, target, ok := cf.invokeDynamicTarget(idx); ok {
				refs = append(refs, BodyRef{Kind: RefLambdaTarget, ClassName: target, MemberName: name})
			}

		case 0xAA: // tableswitch
			pos = alignTo4(pos)
			if pos+12 > n {
				return refs
			}
			low := int32(binary.BigEndian.Uint32(code[pos+4:]))
			high := int32(binary.BigEndian.Uint32(code[pos+8:]))
			count := int(high - low + 1)
			pos += 12
			if count > 0 {
				pos += count * 4
			}
		case 0xAB: // lookupswitch
			pos = alignTo4(pos)
			if pos+8 > n {
				return refs
			}
			npairs := int(binary.BigEndian.Uint32(code[pos+4:]))
			pos += 8
			if npairs > 0 {
				pos += npairs * 8
			}
		case 0xC4: // wide
			if pos >= n {
				return refs
			}
			sub := code[pos]
			pos++
			if sub == 0x84 { // iinc
				pos += 4
			} else {
				pos += 2
			}

		default:
			pos += fixedOperandLen(op)
		}

		if pos <= start {
			// A malformed/unknown opcode must not stall the cursor.
			break
		}
	}

	return refs
}

func u2At(code []byte, pos int) uint16 {
	if pos+2 > len(code) {
		return 0
	}
	return binary.BigEndian.Uint16(code[pos:])
}

func requireByte(code []byte, pos int) (byte, error) {
	if pos >= len(code) {
		return 0, ErrTruncated
	}
	return code[pos], nil
}

func alignTo4(pos int) int {
	for pos%4 != 0 {
		pos++
	}
	return pos
}

// fixedOperandLen returns the number of operand bytes (excluding the
// opcode itself) for every instruction not handled as a special case
// above. Table per JVMS chapter 6.
func fixedOperandLen(op byte) int {
	switch {
	case op == 0x10, op == 0x12, op == 0xA9: // bipush, ldc, ret
		return 1
	case op >= 0x15 && op <= 0x19: // iload,lload,fload,dload,aload
		return 1
	case op >= 0x36 && op <= 0x3A: // istore,lstore,fstore,dstore,astore
		return 1
	case op == 0xBC: // newarray
		return 1
	case op == 0x11, op == 0x13, op == 0x14: // sipush, ldc_w, ldc2_w
		return 2
	case op == 0x84: // iinc
		return 2
	case op >= 0x99 && op <= 0xA8: // if<cond>, if_acmp*, goto, jsr
		return 2
	case op == 0xC6, op == 0xC7: // ifnull, ifnonnull
		return 2
	case op == 0xC8, op == 0xC9: // goto_w, jsr_w
		return 4
	default:
		return 0
	}
}
