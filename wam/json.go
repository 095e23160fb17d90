package wam

import (
	"encoding/json"
)

func (a Addr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a RegAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (f Functor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (c Ref) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c Str) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (mode UnificationMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (i PutStructure) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i SetVariable) MarshalText() ([]byte, error)   { return []byte(i.String()), nil }
func (i SetValue) MarshalText() ([]byte, error)      { return []byte(i.String()), nil }
func (i GetStructure) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i UnifyVariable) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i UnifyValue) MarshalText() ([]byte, error)    { return []byte(i.String()), nil }

func (m *Machine) MarshalJSON() ([]byte, error) {
	obj := map[string]interface{}{
		"RunID": m.runID,
		"Step":  m.step,
		"Instr": m.instr,
		"Heap":  m.Heap,
		"Reg":   m.Reg,
		"Mode":  m.Mode,
		"S":     m.S,
		"Fail":  m.Fail,
	}
	if m.Fail {
		obj["Reason"] = m.failReason
	}
	return json.Marshal(obj)
}
