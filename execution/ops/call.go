package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// Call resolves a dotted identifier chain and reads the terminal property or invokes
// the terminal method with Argc popped arguments. A this-call pops its receiver from
// below the arguments and resolves the chain as members of it.
type Call struct {
	Chain    string
	ThisCall bool
	Property bool
	Argc     int

	segments []string
	prefixes []string
}

// NewCall returns a Call node. A chain starting with a dot resolves its first member
// against the context's no-name scopes.
func NewCall(chain string, thisCall, property bool, argc int) *Call {
	segments := strings.Split(chain, ".")
	prefixes := make([]string, len(segments))
	for i := range segments {
		prefixes[i] = strings.Join(segments[:i+1], ".")
	}
	return &Call{
		Chain:    chain,
		ThisCall: thisCall,
		Property: property,
		Argc:     argc,
		segments: segments,
		prefixes: prefixes,
	}
}

func (o *Call) Eval(ctx context.Context, ec env.Context, st *Stack) error {
	args, err := st.PopN(o.Argc)
	if err != nil {
		return err
	}
	var receiver value.Value
	if o.ThisCall {
		if receiver, err = st.Pop(); err != nil {
			return err
		}
	}
	v, err := o.resolve(ctx, ec, receiver, args)
	if err != nil {
		return err
	}
	st.Push(v)
	return nil
}

func (o *Call) resolve(ctx context.Context, ec env.Context, receiver value.Value, args []value.Value) (value.Value, error) {
	if !o.ThisCall && !o.Property && len(o.segments) == 1 {
		return ec.CallExternal(ctx, o.Chain, args)
	}

	var scopes []env.Pair
	next := 0
	switch {
	case o.ThisCall:
		p, ok := env.PairOf(receiver)
		if !ok {
			return value.Null, nil
		}
		scopes = []env.Pair{p}
	case o.segments[0] == "":
		scopes = ec.NoNameScopes()
		next = 1
	default:
		scope, consumed, ok := o.discover(ec)
		if !ok {
			return value.Null, evalerr.MissingMember(o.Chain)
		}
		scopes = []env.Pair{scope}
		next = consumed
	}
	if len(scopes) == 0 {
		return value.Null, evalerr.MissingMember(o.Chain)
	}

	caps := ec.Capabilities()
	members := o.segments[next:]
	for i, name := range members {
		final := i == len(members)-1
		v, ok, err := o.member(ec, scopes, name, final, args, caps.AllowPrivate)
		if err != nil {
			return value.Null, err
		}
		if !ok && len(members) == 1 && caps.AllowNativeInterop {
			v, ok, err = o.native(ec, scopes, name, args, caps.AllowPrivate)
			if err != nil {
				return value.Null, err
			}
		}
		if !ok {
			return value.Null, evalerr.MissingMember(name)
		}
		p, ok := env.PairOf(v)
		if !ok {
			return value.Null, nil
		}
		scopes = []env.Pair{p}
	}
	return scopes[0].Instance, nil
}

// discover extends a prefix of the chain one segment at a time until it names an
// object or a type, and returns that scope with the number of segments consumed.
func (o *Call) discover(ec env.Context) (env.Pair, int, bool) {
	for i, prefix := range o.prefixes {
		if p, ok := ec.TryGetNamedObject(prefix); ok {
			return p, i + 1, true
		}
		if t, ok := ec.FindType(prefix); ok {
			return env.StaticPair(t), i + 1, true
		}
	}
	return env.Pair{}, 0, false
}

// member resolves name against each candidate scope in turn. Intermediate segments
// and property reads try a property first; intermediate segments then fall back to a
// parameterless method.
func (o *Call) member(
	ec env.Context,
	scopes []env.Pair,
	name string,
	final bool,
	args []value.Value,
	allowPrivate bool,
) (value.Value, bool, error) {
	for _, sc := range scopes {
		if final && !o.Property {
			v, ok, err := ec.TryResolveMember(sc.Instance, sc.Type, false, name, args, allowPrivate)
			if err != nil || ok {
				return v, ok, err
			}
			continue
		}
		v, ok, err := ec.TryResolveMember(sc.Instance, sc.Type, true, name, nil, allowPrivate)
		if err != nil || ok {
			return v, ok, err
		}
		if !final {
			v, ok, err = ec.TryResolveMember(sc.Instance, sc.Type, false, name, nil, allowPrivate)
			if err != nil || ok {
				return v, ok, err
			}
		}
	}
	return value.Null, false, nil
}

// native invokes name directly on each instance scope, mapping get_X and set_X
// accessor names onto property access.
func (o *Call) native(
	ec env.Context,
	scopes []env.Pair,
	name string,
	args []value.Value,
	allowPrivate bool,
) (value.Value, bool, error) {
	for _, sc := range scopes {
		if sc.IsStatic() {
			continue
		}
		v, ok, err := ec.InvokeNative(sc.Instance, name, args)
		if err != nil || ok {
			return v, ok, err
		}
		switch prop, isGet := strings.CutPrefix(name, "get_"); {
		case isGet && len(args) == 0:
			v, ok, err = ec.TryResolveMember(sc.Instance, sc.Type, true, prop, nil, allowPrivate)
			if err != nil || ok {
				return v, ok, err
			}
		case strings.HasPrefix(name, "set_") && len(args) == 1:
			ok, err = ec.TrySetMember(sc.Instance, sc.Type, name[len("set_"):], args[0], allowPrivate)
			if err != nil || ok {
				return args[0], ok, err
			}
		}
	}
	return value.Null, false, nil
}

func (o *Call) StackBalance() int {
	n := 1 - o.Argc
	if o.ThisCall {
		n--
	}
	return n
}

func (o *Call) String() string {
	return fmt.Sprintf("Call(%s, this=%t, prop=%t, %d)", o.Chain, o.ThisCall, o.Property, o.Argc)
}
