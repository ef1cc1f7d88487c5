package rubric

// matcher is a small Aho-Corasick automaton over normalized text
// Each node keeps a 256-way transition table so scans never touch a map

type acNode struct {
	// trans[b] = next state or -1 when absent
	trans  [256]int
	fail   int
	output []int // term ids ending here
}

type matcher struct {
	nodes []acNode
	terms []string
}

func newNode() acNode {
	var n acNode
	for i := range n.trans {
		n.trans[i] = -1
	}
	return n
}

// newMatcher compiles terms; ids are indexes into terms
func newMatcher(terms []string) *matcher {
	m := &matcher{nodes: []acNode{newNode()}, terms: terms}
	for id, t := range terms {
		m.add([]byte(t), id)
	}
	m.build()
	return m
}

func (m *matcher) add(pat []byte, id int) {
	if len(pat) == 0 {
		return
	}
	state := 0
	for _, b := range pat {
		nxt := m.nodes[state].trans[b]
		if nxt == -1 {
			nxt = len(m.nodes)
			m.nodes[state].trans[b] = nxt
			m.nodes = append(m.nodes, newNode())
		}
		state = nxt
	}
	m.nodes[state].output = append(m.nodes[state].output, id)
}

// build wires failure links breadth first
func (m *matcher) build() {
	q := make([]int, 0, 64)
	for b := range 256 {
		if s := m.nodes[0].trans[b]; s != -1 {
			m.nodes[s].fail = 0
			q = append(q, s)
		}
	}
	for qi := 0; qi < len(q); qi++ {
		r := q[qi]
		for b := range 256 {
			s := m.nodes[r].trans[b]
			if s == -1 {
				continue
			}
			q = append(q, s)

			f := m.nodes[r].fail
			for f != 0 && m.nodes[f].trans[b] == -1 {
				f = m.nodes[f].fail
			}
			if nxt := m.nodes[f].trans[b]; nxt != -1 {
				m.nodes[s].fail = nxt
			} else {
				m.nodes[s].fail = 0
			}
			m.nodes[s].output = append(m.nodes[s].output, m.nodes[m.nodes[s].fail].output...)
		}
	}
}

// match returns the distinct terms found in text, in term order
// A hit only counts on word boundaries so "app" does not fire inside "happy"
func (m *matcher) match(text string) []string {
	if m == nil || len(m.terms) == 0 {
		return nil
	}
	hit := make([]bool, len(m.terms))
	state := 0
	for i := 0; i < len(text); i++ {
		b := text[i]
		for state != 0 && m.nodes[state].trans[b] == -1 {
			state = m.nodes[state].fail
		}
		if nxt := m.nodes[state].trans[b]; nxt != -1 {
			state = nxt
		}
		for _, id := range m.nodes[state].output {
			start := i + 1 - len(m.terms[id])
			if boundary(text, start-1) && boundary(text, i+1) {
				hit[id] = true
			}
		}
	}
	var out []string
	for id, ok := range hit {
		if ok {
			out = append(out, m.terms[id])
		}
	}
	return out
}

// boundary reports whether position i is outside text or a non word byte
func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	return boundaryByte(text[i])
}
