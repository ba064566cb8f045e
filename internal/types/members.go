package types

// MemberType synthesizes the type of `container.property`, implementing
// the member/call synthesis table from spec §4.1. Unknown members return
// (nil, false) so the caller can raise TYP003 with the access's source
// position. Access on an unresolved weak yields weak; access on dynamic
// yields dynamic (both per spec).
func MemberType(container Type, name string) (Type, bool) {
	switch {
	case IsWeak(container):
		return container, true
	case container.Kind() == "dynamic":
		return Dynamic, true
	}

	switch c := Deref(container).(type) {
	case *TArray:
		return arrayMember(c, name)
	case *TMap:
		return mapMember(c, name)
	case *TSet:
		return setMember(c, name)
	case *THeap:
		return heapMember(c, name)
	case *THeapMap:
		return heapMapMember(c, name)
	case *TBinaryTree:
		return treeMember(c.Elem, name)
	case *TAVLTree:
		return treeMember(c.Elem, name)
	case *TGraph:
		return graphMember(c, name)
	default:
		return nil, false
	}
}

func fn(ret Type, params ...Type) Type {
	return &TFunction{Params: params, Return: ret}
}

func arrayMember(c *TArray, name string) (Type, bool) {
	switch name {
	case "length":
		return fn(Int), true
	case "push":
		return fn(Void, c.Elem), true
	case "pop":
		return fn(c.Elem), true
	default:
		return nil, false
	}
}

func mapMember(c *TMap, name string) (Type, bool) {
	switch name {
	case "size":
		return fn(Int), true
	case "get":
		return fn(c.Value, c.Key), true
	case "set":
		return fn(Void, c.Key, c.Value), true
	case "has":
		return fn(Boolean, c.Key), true
	case "delete", "deleteWithKey":
		// spec §9 open question: honor both names as aliases.
		return fn(Boolean, c.Key), true
	case "keys":
		return fn(&TArray{Elem: c.Key}), true
	case "values":
		return fn(&TArray{Elem: c.Value}), true
	case "entries":
		return fn(&TArray{Elem: &TTuple{Elems: []Type{c.Key, c.Value}}}), true
	default:
		return nil, false
	}
}

func setMember(c *TSet, name string) (Type, bool) {
	switch name {
	case "size":
		return fn(Int), true
	case "add":
		return fn(Void, c.Elem), true
	case "has":
		return fn(Boolean, c.Elem), true
	case "delete":
		return fn(Boolean, c.Elem), true
	case "values":
		return fn(&TArray{Elem: c.Elem}), true
	default:
		return nil, false
	}
}

func heapMember(c *THeap, name string) (Type, bool) {
	switch name {
	case "size":
		return fn(Int), true
	case "push":
		return fn(Void, c.Elem), true
	case "pop":
		return fn(c.Elem), true
	case "peek":
		return fn(c.Elem), true
	default:
		return nil, false
	}
}

func heapMapMember(c *THeapMap, name string) (Type, bool) {
	switch name {
	case "size":
		return fn(Int), true
	case "push":
		return fn(Void, c.Key, c.Value), true
	case "pop":
		return fn(c.Key), true
	case "peek":
		return fn(c.Key), true
	default:
		return nil, false
	}
}

func treeMember(elem Type, name string) (Type, bool) {
	switch name {
	case "insert":
		return fn(Void, elem), true
	case "search":
		return fn(Boolean, elem), true
	case "getHeight":
		return fn(Int), true
	case "preOrderTraversal", "inOrderTraversal", "postOrderTraversal":
		return fn(&TArray{Elem: elem}), true
	default:
		return nil, false
	}
}

// edgeRecord and neighborRecord are the record shapes returned by
// Graph.getEdges / Graph.getNeighbors (spec §6).
func edgeRecord(node Type) Type {
	return &TRecord{Fields: []RecordField{
		{Name: "from", Type: node},
		{Name: "to", Type: node},
		{Name: "weight", Type: Float},
	}}
}

func neighborRecord(node Type) Type {
	return &TRecord{Fields: []RecordField{
		{Name: "to", Type: node},
		{Name: "weight", Type: Float},
	}}
}

func graphMember(c *TGraph, name string) (Type, bool) {
	switch name {
	case "addVertex":
		return fn(Void, c.Node), true
	case "addEdge":
		// weight defaults to 1 at the call site (spec §6); the member type
		// itself accepts the 2-arg or 3-arg form, validated by the call
		// synthesizer's variadic-like arity tolerance for this one builtin.
		return &TFunction{Params: []Type{c.Node, c.Node, Float}, Return: Void, Variadic: true}, true
	case "hasVertex":
		return fn(Boolean, c.Node), true
	case "hasEdge":
		return fn(Boolean, c.Node, c.Node), true
	case "getVertices":
		return fn(&TArray{Elem: c.Node}), true
	case "getEdges":
		return fn(&TArray{Elem: edgeRecord(c.Node)}), true
	case "getNeighbors":
		return fn(&TArray{Elem: neighborRecord(c.Node)}, c.Node), true
	case "isDirected":
		return fn(Boolean), true
	case "size":
		return fn(Int), true
	default:
		return nil, false
	}
}
