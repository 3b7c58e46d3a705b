package types

import "github.com/skerry-lang/skerry/classifier"

// ValuePart computes the value projection T|_v: T itself when T is value
// kind, Nothing when T is error kind, the value component for unions, and
// the value projection for an un-split parameter.
func ValuePart(t Type) Type {
	switch q := t.(type) {
	case *Union:
		if v := q.Value(); v != nil {
			return v
		}
		return Nothing
	case AnyType:
		return Value
	case Param:
		return ValueProj{Param: q}
	case NothingType:
		return Nothing
	default:
		if IsValuePart(t) {
			return t
		}
		return Nothing
	}
}

// ErrorTypes computes the constituents of the error projection T|_e. The
// unbounded error kinds Any and Error yield the Error top itself.
func ErrorTypes(t Type) []Type {
	switch q := t.(type) {
	case *Union:
		return q.ErrParts()
	case AnyType, TopError:
		return []Type{Error}
	default:
		if IsErrorPart(t) {
			return []Type{t}
		}
		return nil
	}
}

// Interp is the classifier-set interpretation of an error part: flattened
// constants plus resolved variables, the payload instantiations known for
// them, and the variables that are not yet resolved. All marks the
// unbounded interpretation produced by Error and Any.
type Interp struct {
	All   bool
	Set   *classifier.Set
	Insts map[classifier.ID]Type
	Flex  []*ErrVar // unresolved flexible variables
	Rigid []*ErrVar // rigid variables, abstract for the whole session
}

// InterpErrors flattens the error projection of t.
func InterpErrors(t Type) Interp {
	in := Interp{Set: classifier.NewSet()}
	for _, e := range ErrorTypes(t) {
		switch q := e.(type) {
		case TopError:
			in.All = true
		case ErrConst:
			in.Set.Insert(q.Class)
			if q.Inst != nil {
				in.inst(q.Class, q.Inst)
			}
		case *ErrVar:
			switch {
			case q.Rigid():
				in.Rigid = append(in.Rigid, q)
			case q.Frozen():
				for _, id := range q.LowerIDs() {
					in.Set.Insert(id)
					if inst, ok := q.Inst(id); ok {
						in.inst(id, inst)
					}
				}
			default:
				in.Flex = append(in.Flex, q)
			}
		}
	}
	return in
}

func (in *Interp) inst(c classifier.ID, t Type) {
	if in.Insts == nil {
		in.Insts = make(map[classifier.ID]Type)
	}
	if _, ok := in.Insts[c]; !ok {
		in.Insts[c] = t
	}
}

// Unresolved reports whether any flexible variable remains in the
// interpretation.
func (in Interp) Unresolved() bool {
	return len(in.Flex) > 0
}
