package types

// FuncInfo records a top-level function's inferred/declared signature,
// built during function registration (spec §4.1 pass 1) and mutated in
// place by the refinement pass (spec §4.1 pass 2). Keeping this by pointer
// in FuncEnv means refinement updates are visible to every call site that
// already looked the function up.
type FuncInfo struct {
	Name       string
	Params     []Type // positional; missing annotations default to a fresh TWeak
	Return     Type   // fresh TWeak if not annotated
	Variadic   bool
}

// FuncEnv is the global function-name environment (spec §4.1: "the
// function-type environment is global").
type FuncEnv struct {
	funcs map[string]*FuncInfo
}

// NewFuncEnv creates an empty function environment.
func NewFuncEnv() *FuncEnv {
	return &FuncEnv{funcs: make(map[string]*FuncInfo)}
}

// Register records (or overwrites) a function's signature.
func (e *FuncEnv) Register(info *FuncInfo) {
	e.funcs[info.Name] = info
}

// Lookup returns a function's signature, or nil if undeclared.
func (e *FuncEnv) Lookup(name string) *FuncInfo {
	return e.funcs[name]
}

// TypeEnv is the lexically scoped variable-type environment (spec §4.1
// pass 3: "Block/function scope enter/exit saves and restores the variable
// type environment"). Each frame maps a name to its RefinedType.
type TypeEnv struct {
	vars   map[string]RefinedType
	parent *TypeEnv
}

// NewTypeEnv creates a root type environment with the pre-bound `inf`
// (typed Inf()) in scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{vars: map[string]RefinedType{"inf": NewRefinedType(Inf())}}
}

// Child creates a new child scope (block/function entry).
func (e *TypeEnv) Child() *TypeEnv {
	return &TypeEnv{vars: make(map[string]RefinedType), parent: e}
}

// Define binds name in the current frame, shadowing any outer binding.
func (e *TypeEnv) Define(name string, rt RefinedType) {
	if name == "_" {
		return
	}
	e.vars[name] = rt
}

// Lookup walks parent frames to find name's RefinedType.
func (e *TypeEnv) Lookup(name string) (RefinedType, bool) {
	for env := e; env != nil; env = env.parent {
		if rt, ok := env.vars[name]; ok {
			return rt, true
		}
	}
	return RefinedType{}, false
}

// Set rebinds name in the nearest frame that already holds it (assignment);
// it does not create a new binding. Returns false if name is unbound.
func (e *TypeEnv) Set(name string, rt RefinedType) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = rt
			return true
		}
	}
	return false
}
