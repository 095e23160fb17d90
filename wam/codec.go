package wam

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
)

const codeImageVersion = 1

// maxImageRegisters bounds the register file of decoded code.
const maxImageRegisters = 1 << 16

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wam: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// codeImage is the serialized form of Code.
type codeImage struct {
	Version      int            `cbor:"version"`
	Role         string         `cbor:"role"`
	NumRegisters int            `cbor:"num_registers"`
	Vars         map[string]int `cbor:"vars,omitempty"`
	Instructions []instrImage   `cbor:"instructions"`
}

type instrImage struct {
	_     struct{} `cbor:",toarray"`
	Op    Opcode
	Name  string
	Arity int
	Reg   int
}

// MarshalCode serializes compiled code to CBOR bytes. The encoding is
// deterministic, so equal code produces equal bytes.
func MarshalCode(c *Code) ([]byte, error) {
	img := codeImage{
		Version:      codeImageVersion,
		Role:         c.Role.String(),
		NumRegisters: c.NumRegisters,
		Instructions: make([]instrImage, len(c.Instructions)),
	}
	if len(c.Vars) > 0 {
		img.Vars = make(map[string]int, len(c.Vars))
		for x, reg := range c.Vars {
			img.Vars[x.Name] = int(reg)
		}
	}
	for i, instr := range c.Instructions {
		ii := instrImage{Op: instr.Opcode(), Reg: int(register(instr))}
		switch instr := instr.(type) {
		case PutStructure:
			ii.Name, ii.Arity = instr.Functor.Name, instr.Functor.Arity
		case GetStructure:
			ii.Name, ii.Arity = instr.Functor.Name, instr.Functor.Arity
		}
		img.Instructions[i] = ii
	}
	return cborEncMode.Marshal(img)
}

// UnmarshalCode deserializes compiled code from CBOR bytes.
func UnmarshalCode(data []byte) (*Code, error) {
	var img codeImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("wam: unmarshal code: %w", err)
	}
	if img.Version != codeImageVersion {
		return nil, errors.New("wam: unsupported code image version %d", img.Version)
	}
	role, err := ParseRole(img.Role)
	if err != nil {
		return nil, errors.New("wam: unmarshal code: %v", err)
	}
	if img.NumRegisters < 0 || img.NumRegisters > maxImageRegisters {
		return nil, errors.New("wam: unmarshal code: invalid number of registers %d", img.NumRegisters)
	}
	c := &Code{
		Role:         role,
		NumRegisters: img.NumRegisters,
		Instructions: make([]Instruction, len(img.Instructions)),
		Vars:         make(map[logic.Var]RegAddr, len(img.Vars)),
	}
	for name, reg := range img.Vars {
		if !logic.IsVar(name) {
			return nil, errors.New("wam: unmarshal code: invalid var name %q", name)
		}
		if reg < 0 || reg >= img.NumRegisters {
			return nil, errors.New("wam: unmarshal code: var %s: register X%d out of range (%d registers)", name, reg, img.NumRegisters)
		}
		c.Vars[logic.NewVar(name)] = RegAddr(reg)
	}
	for i, ii := range img.Instructions {
		instr, err := ii.instruction()
		if err != nil {
			return nil, errors.New("wam: unmarshal code: instruction %d: %v", i, err)
		}
		c.Instructions[i] = instr
	}
	if n := NumRegisters(c.Instructions); n > c.NumRegisters {
		return nil, errors.New("wam: unmarshal code: instructions need %d registers, got %d", n, c.NumRegisters)
	}
	return c, nil
}

func (ii instrImage) instruction() (Instruction, error) {
	if ii.Reg < 0 {
		return nil, errors.New("invalid register %d", ii.Reg)
	}
	if ii.Arity < 0 {
		return nil, errors.New("invalid arity %d", ii.Arity)
	}
	reg := RegAddr(ii.Reg)
	fn := Functor{ii.Name, ii.Arity}
	switch ii.Op {
	case OpPutStructure:
		return PutStructure{fn, reg}, nil
	case OpSetVariable:
		return SetVariable{reg}, nil
	case OpSetValue:
		return SetValue{reg}, nil
	case OpGetStructure:
		return GetStructure{fn, reg}, nil
	case OpUnifyVariable:
		return UnifyVariable{reg}, nil
	case OpUnifyValue:
		return UnifyValue{reg}, nil
	default:
		return nil, errors.New("unknown opcode %v", ii.Op)
	}
}
