package ops

import (
	"context"
	"fmt"

	"github.com/robbyt/go-polyexpr/execution/convert"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// NewObject creates an instance of a named type from its arguments and an optional
// initializer array.
type NewObject struct {
	TypeName string
	Argc     int
	HasInit  bool
}

// NewNewObject returns a NewObject node.
func NewNewObject(typeName string, argc int, hasInit bool) *NewObject {
	return &NewObject{TypeName: typeName, Argc: argc, HasInit: hasInit}
}

func (o *NewObject) Eval(_ context.Context, ec env.Context, st *Stack) error {
	var init value.Value
	if o.HasInit {
		v, err := st.Pop()
		if err != nil {
			return err
		}
		init = v
	}
	args, err := st.PopN(o.Argc)
	if err != nil {
		return err
	}

	t, ok := ec.FindType(o.TypeName)
	if !ok {
		return evalerr.MissingMember(o.TypeName)
	}

	var result value.Value
	switch k := t.Kind(); {
	case k == value.KindArray:
		result, err = o.newArray(t, args, init)
	case k.IsPrimitive() || k == value.KindString || k == value.KindNullable:
		result, err = o.newPrimitive(t, args)
	default:
		result, err = o.construct(ec, t, args, init)
	}
	if err != nil {
		return err
	}
	st.Push(result)
	return nil
}

func (o *NewObject) newArray(t *value.Type, args []value.Value, init value.Value) (value.Value, error) {
	if o.HasInit {
		return convert.Convert(t, init)
	}
	switch len(args) {
	case 0:
		return value.ArrayOfType(t, nil), nil
	case 1:
		n, err := convert.ToInt(args[0])
		if err != nil {
			return value.Null, err
		}
		if n < 0 {
			return value.Null, evalerr.InvalidCast(args[0].String(), t.Name(), "negative array length")
		}
		items := make([]value.Value, n)
		zero := convert.Zero(t.Elem())
		for i := range items {
			items[i] = zero
		}
		return value.ArrayOfType(t, items), nil
	}
	return value.Null, evalerr.MissingMember(fmt.Sprintf("%s(%d args)", t.Name(), len(args)))
}

func (o *NewObject) newPrimitive(t *value.Type, args []value.Value) (value.Value, error) {
	switch len(args) {
	case 0:
		return convert.Zero(t), nil
	case 1:
		return convert.Convert(t, args[0])
	}
	return value.Null, evalerr.MissingMember(fmt.Sprintf("%s(%d args)", t.Name(), len(args)))
}

func (o *NewObject) construct(ec env.Context, t *value.Type, args []value.Value, init value.Value) (value.Value, error) {
	obj, err := ec.Construct(t, args)
	if err != nil {
		return value.Null, err
	}
	if !o.HasInit {
		return obj, nil
	}

	items := init.Items()
	if init.Kind() != value.KindArray && !init.IsNull() {
		items = []value.Value{init}
	}
	allowPrivate := ec.Capabilities().AllowPrivate
	for _, item := range items {
		_, found, err := ec.TryResolveMember(obj, obj.Type(), false, "Add", []value.Value{item}, allowPrivate)
		if err != nil {
			return value.Null, err
		}
		if !found {
			return value.Null, evalerr.MissingMember("Add")
		}
	}
	return obj, nil
}

func (o *NewObject) StackBalance() int {
	n := 1 - o.Argc
	if o.HasInit {
		n--
	}
	return n
}

func (o *NewObject) String() string {
	return fmt.Sprintf("New(%s, %d, %t)", o.TypeName, o.Argc, o.HasInit)
}

// CreateBlock pops N values and pushes them as an array of their common type.
type CreateBlock struct {
	N int
}

// NewCreateBlock returns a CreateBlock of n values.
func NewCreateBlock(n int) *CreateBlock {
	return &CreateBlock{N: n}
}

func (o *CreateBlock) Eval(_ context.Context, _ env.Context, st *Stack) error {
	items, err := st.PopN(o.N)
	if err != nil {
		return err
	}
	t := convert.CommonType(items)
	if t.Kind() == value.KindAny {
		st.Push(value.Array(value.AnyType, items))
		return nil
	}
	for i, item := range items {
		if items[i], err = convert.Convert(t, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	st.Push(value.Array(t, items))
	return nil
}

func (o *CreateBlock) StackBalance() int { return 1 - o.N }

func (o *CreateBlock) String() string {
	return fmt.Sprintf("Block(%d)", o.N)
}

// Is pops a value and pushes whether it is a non-null instance of the named type.
type Is struct {
	TypeName string
}

// NewIs returns an Is test against typeName.
func NewIs(typeName string) *Is {
	return &Is{TypeName: typeName}
}

func (o *Is) Eval(_ context.Context, ec env.Context, st *Stack) error {
	v, err := st.Pop()
	if err != nil {
		return err
	}
	t, ok := ec.FindType(o.TypeName)
	if !ok {
		return evalerr.MissingMember(o.TypeName)
	}
	st.Push(value.Bool(!v.IsNull() && v.Type().AssignableTo(t)))
	return nil
}

func (o *Is) StackBalance() int { return 0 }

func (o *Is) String() string {
	return fmt.Sprintf("Is(%s)", o.TypeName)
}

// Assign stores the top of the stack in a variable, leaving it in place.
type Assign struct {
	Name string
}

// NewAssign returns an Assign to the named variable.
func NewAssign(name string) *Assign {
	return &Assign{Name: name}
}

func (o *Assign) Eval(_ context.Context, ec env.Context, st *Stack) error {
	v, err := st.Peek()
	if err != nil {
		return err
	}
	ec.SetVariable(o.Name, v)
	return nil
}

func (o *Assign) StackBalance() int { return 0 }

func (o *Assign) String() string {
	return fmt.Sprintf("Assign(%s)", o.Name)
}

// Dump hands the top of the stack to the context's dump channel, leaving it in place.
type Dump struct {
	Label string
}

// NewDump returns a Dump with the given label.
func NewDump(label string) *Dump {
	return &Dump{Label: label}
}

func (o *Dump) Eval(_ context.Context, ec env.Context, st *Stack) error {
	v, err := st.Peek()
	if err != nil {
		return err
	}
	if !ec.Capabilities().AllowDump {
		return fmt.Errorf("%w: dump", evalerr.ErrNotPermitted)
	}
	ec.Dump(o.Label, v)
	return nil
}

func (o *Dump) StackBalance() int { return 0 }

func (o *Dump) String() string {
	return fmt.Sprintf("Dump(%s)", o.Label)
}
