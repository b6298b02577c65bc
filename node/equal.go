package node

// Equal reports structural equality. Arrays and object entries compare in
// order; numbers compare by value, so 1, 1.0 and 1e0 are equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInvalid, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindNumber:
		if a.s == b.s {
			return true
		}
		ra, ok1 := Number(a.s).rat()
		rb, ok2 := Number(b.s).rat()
		return ok1 && ok2 && ra.Cmp(rb) == 0
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ka, kb := a.obj.Keys(), b.obj.Keys()
		if len(ka) != len(kb) {
			return false
		}
		for i := range ka {
			if ka[i] != kb[i] {
				return false
			}
			va, _ := a.obj.Get(ka[i])
			vb, _ := b.obj.Get(kb[i])
			if !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}
