package prose

import (
	"fmt"

	"github.com/prosegen/narrate/pkg/fable/bytecode"
)

// Discovery pairs a block with the label its document section will carry.
// The root block is labelled by the caller (usually with the source file
// name); nested blocks label themselves.
type Discovery struct {
	Label string
	Block *bytecode.Block
}

// Discoveries is the FIFO of blocks waiting to be rendered. It remembers
// every block it has ever held, so a block reachable through more than one
// constant is rendered exactly once and self-references cannot loop. It
// also owns label assignment, so two distinct blocks can never share a
// section heading.
type Discoveries struct {
	queue  []Discovery
	labels map[*bytecode.Block]string
	counts map[string]int
}

func NewDiscoveries() *Discoveries {
	return &Discoveries{
		labels: map[*bytecode.Block]string{},
		counts: map[string]int{},
	}
}

// Add enqueues a block under the given label unless it was seen before, and
// returns the label the block's section will actually carry. A label
// already claimed by a different block gets a disambiguating counter
// suffix; a block seen before keeps its first-assigned label.
func (d *Discoveries) Add(label string, b *bytecode.Block) string {
	if assigned, ok := d.labels[b]; ok {
		return assigned
	}
	d.counts[label]++
	if n := d.counts[label]; n > 1 {
		label = fmt.Sprintf("%s (%d)", label, n)
	}
	d.labels[b] = label
	d.queue = append(d.queue, Discovery{Label: label, Block: b})
	return label
}

// Next pops the oldest pending discovery.
func (d *Discoveries) Next() (Discovery, bool) {
	if len(d.queue) == 0 {
		return Discovery{}, false
	}
	next := d.queue[0]
	d.queue = d.queue[1:]
	return next, true
}

// describeValue names a constant operand in prose. Encountered code blocks
// are registered with the discovery queue and referenced by label.
func (r *InstructionRenderer) describeValue(v bytecode.Value, q *Discoveries) string {
	switch t := v.(type) {
	case bytecode.CodeValue:
		label := q.Add(t.Block.Label(), t.Block)
		return fmt.Sprintf("the code object described under %s", label)
	case bytecode.StringValue:
		return fmt.Sprintf("the literal string *'%s'*", EscapeMarkup(t.Value))
	case bytecode.IntValue:
		return fmt.Sprintf("the integer constant %s", NumberWord(t.Value))
	case bytecode.NoneValue:
		return "the constant None"
	case bytecode.TupleValue:
		if len(t.Items) == 0 {
			return "the empty tuple"
		}
		items := make([]string, len(t.Items))
		for i, item := range t.Items {
			items[i] = r.describeValue(item, q)
		}
		return "the tuple consisting of " + JoinList(items)
	}
	r.log.Warn("uninterpretable constant", "value", fmt.Sprintf("%#v", v))
	return fmt.Sprintf("%v", v)
}
