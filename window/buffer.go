// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package window

// Size is the number of samples held per channel.
const Size = 15

// Buffer is a fixed-capacity ring of the most recent samples of one channel.
// Slots start at zero and the oldest value is overwritten first. It is not
// safe for concurrent use.
type Buffer struct {
	slots  [Size]float64
	cursor int
	count  int
}

// Push stores a value in the oldest slot.
func (b *Buffer) Push(v float64) {
	b.slots[b.cursor] = v
	b.cursor = (b.cursor + 1) % Size
	if b.count < Size {
		b.count++
	}
}

// Average returns the sum of every slot divided by Size. Before the buffer has
// been filled the untouched slots contribute zeros, which biases the first
// window after startup toward zero.
func (b *Buffer) Average() float64 {
	var sum float64
	for _, v := range b.slots {
		sum += v
	}
	return sum / Size
}

// Len returns the number of slots written since the last reset, up to Size.
func (b *Buffer) Len() int {
	return b.count
}

// Cursor returns the index of the slot the next Push will overwrite.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Reset rewinds the cursor and fill count. Slot contents are kept.
func (b *Buffer) Reset() {
	b.cursor = 0
	b.count = 0
}
