package types

import "testing"

func TestArrayMemberTypes(t *testing.T) {
	arr := &TArray{Elem: Int}
	lenTy, ok := MemberType(arr, "length")
	if !ok {
		t.Fatalf("expected array.length to resolve")
	}
	fnTy := lenTy.(*TFunction)
	if !Equals(fnTy.Return, Int) {
		t.Errorf("array.length should return int, got %s", fnTy.Return)
	}

	if _, ok := MemberType(arr, "nope"); ok {
		t.Errorf("expected unknown member to fail")
	}
}

func TestMapDeleteAliasesDeleteWithKey(t *testing.T) {
	m := &TMap{Key: String_, Value: Int}
	del, ok := MemberType(m, "delete")
	if !ok {
		t.Fatalf("expected map.delete to resolve")
	}
	delWithKey, ok := MemberType(m, "deleteWithKey")
	if !ok {
		t.Fatalf("expected map.deleteWithKey to resolve")
	}
	if !Equals(del, delWithKey) {
		t.Errorf("delete and deleteWithKey should have identical signatures")
	}
}

func TestWeakAndDynamicMemberPropagation(t *testing.T) {
	w := NewWeak()
	ty, ok := MemberType(w, "anything")
	if !ok || ty != Type(w) {
		t.Errorf("member access on weak should propagate the same weak")
	}
	ty, ok = MemberType(Dynamic, "whatever")
	if !ok || ty != Dynamic {
		t.Errorf("member access on dynamic should yield dynamic")
	}
}

func TestGraphEdgeAndNeighborRecords(t *testing.T) {
	g := &TGraph{Node: String_}
	edgesTy, ok := MemberType(g, "getEdges")
	if !ok {
		t.Fatalf("expected graph.getEdges to resolve")
	}
	fn := edgesTy.(*TFunction)
	arr := fn.Return.(*TArray)
	rec := arr.Elem.(*TRecord)
	for _, want := range []string{"from", "to", "weight"} {
		if rec.Lookup(want) == nil {
			t.Errorf("edge record missing field %q", want)
		}
	}
}
