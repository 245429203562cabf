package geometry

// indexStack is a LIFO of node/entity indices backed by a chain of fixed-size
// blocks. Blocks are allocated on demand with geometric growth, so traversal
// depth is unbounded while steady-state use never reallocates. Reset keeps
// the blocks for reuse across traversals.
type indexStack struct {
	blocks [][]int32
	block  int // Index of the block holding the top of the stack
	pos    int // Next free slot within the current block
}

const firstBlockSize = 64

func newIndexStack() *indexStack {
	return &indexStack{
		blocks: [][]int32{make([]int32, firstBlockSize)},
	}
}

// Push adds a value to the top of the stack, growing the block chain if needed
func (s *indexStack) Push(v int32) {
	if s.pos == len(s.blocks[s.block]) {
		if s.block+1 == len(s.blocks) {
			// Each new block doubles the previous block's size
			s.blocks = append(s.blocks, make([]int32, 2*len(s.blocks[s.block])))
		}
		s.block++
		s.pos = 0
	}
	s.blocks[s.block][s.pos] = v
	s.pos++
}

// Pop removes and returns the top of the stack. Callers must check Empty first.
func (s *indexStack) Pop() int32 {
	if s.pos == 0 {
		s.block--
		s.pos = len(s.blocks[s.block])
	}
	s.pos--
	return s.blocks[s.block][s.pos]
}

// Empty reports whether the stack holds no values
func (s *indexStack) Empty() bool {
	return s.block == 0 && s.pos == 0
}

// Reset clears the stack without releasing its blocks
func (s *indexStack) Reset() {
	s.block = 0
	s.pos = 0
}

// Cap returns the total capacity of all allocated blocks
func (s *indexStack) Cap() int {
	total := 0
	for _, b := range s.blocks {
		total += len(b)
	}
	return total
}
