package frontend

import (
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// EndPolicy governs what a block's `end` operator emits.
type EndPolicy interface{ endPolicy() }

// EndReturn is the outermost function body's policy: `end` returns,
// optionally with the popped result value.
type EndReturn struct{ Result *types.Scalar }

func (EndReturn) endPolicy() {}

// EndUnreachable is every nested block/loop's policy: `end` falls through
// to an Unreachable anchor (the enclosing block picks up control flow via
// its own Branch/BranchConditional/Label anchors).
type EndUnreachable struct{}

func (EndUnreachable) endPolicy() {}

// EnclosingLabel is one entry of a block's nearest-first label queue: the
// branch target a `br`/`br_if` of the matching depth resolves to, and
// whether it is a loop (branches go to the loop's start) or a plain block
// (branches go to its end).
type EnclosingLabel struct {
	Label  *fg.Label
	IsLoop bool
}

// Block is one structured-control-flow scope's translation state: its own
// operand stack, the operator reader scanning its body (shared with every
// nested scope, since the operator stream is flat), its end policy, and
// the enclosing label queue branches within it resolve against. Anchors is
// a pointer to the enclosing function's single anchor stream: nested
// blocks/loops append into the same slice their parent does, since the
// emitted instruction order must stay flat.
type Block struct {
	Stack     AbstractStack
	Reader    OperatorReader
	End       EndPolicy
	Enclosing []EnclosingLabel
	Anchors   *fg.Anchors
}

// ImportCallback implements a spir_global builtin import's call-site
// semantics: rather than emitting a real FunctionCall anchor
// or value, it pops/pushes directly against the block's abstract stack,
// the way a compiler intrinsic would.
type ImportCallback func(b *Block, fc *FunctionContext) error

// Result is the outcome of trying one operator-translator family against
// the current operator.
type Result uint8

const (
	Found Result = iota
	NotFound
	EOF
)

// family is one operator-translator family: constants, control-flow,
// conversion, variables, memory, arithmetic, logic, or comparison.
type family func(b *Block, op Operator, fc *FunctionContext) (Result, error)

// families lists the translator families in dispatch order. It is filled
// in by init because Translate, reached from translateControlFlow through
// translateBlockOrLoop, refers back to it.
var families []family

func init() {
	families = []family{
		translateConstants,
		translateControlFlow,
		translateConversion,
		translateVariables,
		translateMemory,
		translateArithmetic,
		translateLogic,
		translateComparison,
	}
}

// Translate runs the block translation loop: read the next
// operator, try each family in order until one reports Found or EOF, fail
// on an operator no family recognizes.
func Translate(b *Block, fc *FunctionContext) error {
	for {
		op, ok, err := b.Reader.Next()
		if err != nil {
			return err
		}
		if !ok {
			return types.Errf("Unknown instruction: unexpected end of operator stream")
		}

		matched := false
		for _, fn := range families {
			res, err := fn(b, op, fc)
			if err != nil {
				return err
			}
			switch res {
			case Found:
				matched = true
			case EOF:
				return nil
			case NotFound:
				continue
			}
			if matched {
				break
			}
		}
		if !matched {
			return types.Errf("Unknown instruction: %d", op.Code)
		}
	}
}
