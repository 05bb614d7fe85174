package world

// BlockCapacity is the number of entity indices a single entity block holds.
const BlockCapacity = 16

// entityBlock is a fixed-capacity run of storage indices. Blocks past the first one of a chunk live in the
// world's block slab and are addressed by handle, where handle zero means none.
type entityBlock struct {
	count   int
	indices [BlockCapacity]uint32
	next    uint32
}

// Chunk is a cell of the world grid. It owns the storage indices of every spatial entity whose position
// lies in it, kept in a chain of entity blocks headed by an inline first block.
type Chunk struct {
	X, Y, Z int32

	first      entityBlock
	nextInHash uint32
}

// next returns the block that follows b in its chain, or nil at the end of the chain.
func (w *World) next(b *entityBlock) *entityBlock {
	if b.next == 0 {
		return nil
	}
	return &w.blocks[b.next]
}

// allocBlock returns the handle of an empty block, reusing a freed one when possible.
func (w *World) allocBlock() uint32 {
	if h := w.firstFreeBlock; h != 0 {
		w.firstFreeBlock = w.blocks[h].next
		w.freeBlocks--
		w.blocks[h] = entityBlock{}
		return h
	}
	w.blocks = append(w.blocks, entityBlock{})
	return uint32(len(w.blocks) - 1)
}

// releaseBlock pushes the block with the handle passed onto the free list.
func (w *World) releaseBlock(h uint32) {
	w.blocks[h] = entityBlock{next: w.firstFreeBlock}
	w.firstFreeBlock = h
	w.freeBlocks++
}

// insert appends index to the chunk. A full first block has its contents moved into a fresh block that is
// chained directly behind it, so the first block always has room.
func (w *World) insert(c *Chunk, index uint32) {
	first := &c.first
	if first.count == BlockCapacity {
		h := w.allocBlock()
		w.blocks[h] = *first
		first.next = h
		first.count = 0
	}
	first.indices[first.count] = index
	first.count++
}

// remove deletes index from the chunk, filling the hole with the last index of the first block. It
// reports false if the chunk did not hold index.
func (w *World) remove(c *Chunk, index uint32) bool {
	first := &c.first
	for b := first; b != nil; b = w.next(b) {
		for i := 0; i < b.count; i++ {
			if b.indices[i] != index {
				continue
			}
			first.count--
			b.indices[i] = first.indices[first.count]

			if first.count == 0 && first.next != 0 {
				h := first.next
				*first = w.blocks[h]
				w.releaseBlock(h)
			}
			return true
		}
	}
	return false
}
