package canonical

// unionFind groups labels transitively: if A merges with B and B with C,
// all three land in one cluster regardless of merge order.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind(keys []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(keys)),
		rank:   make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		uf.parent[k] = k
	}
	return uf
}

func (uf *unionFind) find(key string) string {
	root := key
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	// Path compression.
	for uf.parent[key] != root {
		uf.parent[key], key = root, uf.parent[key]
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// groups returns cluster membership keyed by root. Membership is fully
// determined by the union calls; callers sort the result for stable output.
func (uf *unionFind) groups() map[string][]string {
	out := make(map[string][]string)
	for key := range uf.parent {
		root := uf.find(key)
		out[root] = append(out[root], key)
	}
	return out
}
