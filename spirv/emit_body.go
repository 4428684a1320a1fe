package spirv

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/fg"
)

// emitFunctionBody walks function i's anchor stream in order, emitting the
// value graph on demand as anchors reference it. Anchors alone carry the
// observable order of side effects (stores, calls, branches); everything
// else is memoized through its own EmitterID the first time something
// forces it into existence.
func (e *Emitter) emitFunctionBody(i int) error {
	fn := &e.mod.Functions[i]
	fs := e.funcStates[i]
	e.cur = fs
	defer func() { e.cur = nil }()

	e.builder.AddLabel()
	fs.varInsertPos = e.builder.FunctionSectionLen()

	labelPos := make(map[*fg.Label]int, 8)
	for idx, a := range fn.Anchors {
		if al, ok := a.(fg.AnchorLabel); ok {
			labelPos[al.Target] = idx
		}
	}

	var curLabel *fg.Label
	for _, a := range fn.Anchors {
		switch an := a.(type) {
		case fg.AnchorLabel:
			curLabel = an.Target
			e.builder.AddLabelID(e.labelID(an.Target))

		case fg.AnchorBranch:
			e.builder.AddBranch(e.labelID(an.Target))

		case fg.AnchorBranchConditional:
			if err := e.emitBranchConditional(fn.Anchors, labelPos, curLabel, an); err != nil {
				return err
			}

		case fg.AnchorStore:
			if err := e.emitStore(an); err != nil {
				return err
			}

		case fg.AnchorCopy:
			if err := e.emitCopy(an); err != nil {
				return err
			}

		case fg.AnchorFunctionCall:
			if _, err := e.emitCallAnchor(an); err != nil {
				return err
			}

		case fg.AnchorNop:
			e.builder.AddNop()

		case fg.AnchorUnreachable:
			e.builder.AddUnreachable()

		case fg.AnchorReturn:
			if an.Value != nil {
				id, err := e.emitValue(an.Value)
				if err != nil {
					return err
				}
				e.builder.AddReturnValue(id)
			} else {
				e.builder.AddReturn()
			}

		default:
			return fmt.Errorf("spirv: unknown anchor %T", a)
		}
	}

	e.builder.AddFunctionEnd()
	return nil
}

// labelID returns the SPIR-V id standing in for l, allocating one the
// first time it's referenced whether that reference is l's own AnchorLabel
// or a forward use as a branch/merge/continue target.
func (e *Emitter) labelID(l *fg.Label) uint32 {
	if id := *l.EmitterID(); id != 0 {
		return id
	}
	id := e.builder.AllocID()
	*l.EmitterID() = id
	return id
}

// branchTargetOf reports a's unconditional branch target, or nil if a is
// not a plain AnchorBranch (the only shape terminatorAt ever needs to see
// through for merge-block detection).
func branchTargetOf(a fg.Anchor) *fg.Label {
	if b, ok := a.(fg.AnchorBranch); ok {
		return b.Target
	}
	return nil
}

// terminatorAt scans forward from label's own AnchorLabel to the anchor
// that ends its block (the next Branch/BranchConditional/Return/
// Unreachable), mirroring block_of(self).last() in the reference
// translator. Returns nil if label was never opened in this stream.
func terminatorAt(anchors fg.Anchors, labelPos map[*fg.Label]int, label *fg.Label) fg.Anchor {
	pos, ok := labelPos[label]
	if !ok {
		return nil
	}
	for idx := pos + 1; idx < len(anchors); idx++ {
		switch anchors[idx].(type) {
		case fg.AnchorBranch, fg.AnchorBranchConditional, fg.AnchorReturn, fg.AnchorUnreachable:
			return anchors[idx]
		}
	}
	return nil
}

// detectMerge recovers the structured-control-flow merge and (for a loop
// header) continue targets of a conditional branch, the same 5-way pattern
// match the reference translator runs over the true/false blocks'
// terminators: both branch to the same place -> that's the merge; one
// side branches back to the block housing this conditional -> the other
// side is the merge and this is a loop; one side branches straight to the
// other's label -> that's the merge with no continue target. No match
// means this conditional needs no OpSelectionMerge/OpLoopMerge at all.
func (e *Emitter) detectMerge(anchors fg.Anchors, labelPos map[*fg.Label]int, currentLabel *fg.Label, trueLabel, falseLabel *fg.Label) (merge, cont *fg.Label) {
	trueBr := branchTargetOf(terminatorAt(anchors, labelPos, trueLabel))
	falseBr := branchTargetOf(terminatorAt(anchors, labelPos, falseLabel))

	switch {
	case trueBr != nil && falseBr != nil && trueBr == falseBr:
		return trueBr, nil
	case trueBr != nil && trueBr == currentLabel:
		return falseLabel, trueLabel
	case trueBr != nil && trueBr == falseLabel:
		return falseLabel, nil
	case falseBr != nil && falseBr == trueLabel:
		return trueLabel, nil
	case falseBr != nil && falseBr == currentLabel:
		return trueLabel, falseLabel
	default:
		return nil, nil
	}
}

func (e *Emitter) emitBranchConditional(anchors fg.Anchors, labelPos map[*fg.Label]int, currentLabel *fg.Label, a fg.AnchorBranchConditional) error {
	trueID := e.labelID(a.True)
	falseID := e.labelID(a.False)
	merge, cont := e.detectMerge(anchors, labelPos, currentLabel, a.True, a.False)

	condID, err := e.emitValue(a.Cond)
	if err != nil {
		return err
	}

	if merge != nil {
		mergeID := e.labelID(merge)
		if cont != nil {
			e.builder.AddLoopMerge(mergeID, e.labelID(cont), LoopControlNone)
		} else {
			e.builder.AddSelectionMerge(mergeID, SelectionControlNone)
		}
	}

	e.builder.AddBranchConditional(condID, trueID, falseID)
	return nil
}

func (e *Emitter) emitStore(a fg.AnchorStore) error {
	ptrID, err := e.pointerID(a.Target)
	if err != nil {
		return err
	}
	valID, err := e.emitValue(a.Value)
	if err != nil {
		return err
	}
	if a.HasAlign {
		e.builder.AddStoreAligned(ptrID, valID, uint32(1)<<a.Log2Align)
	} else {
		e.builder.AddStore(ptrID, valID)
	}
	return nil
}

func (e *Emitter) emitCopy(a fg.AnchorCopy) error {
	dstID, err := e.pointerID(a.Dst)
	if err != nil {
		return err
	}
	srcID, err := e.pointerID(a.Src)
	if err != nil {
		return err
	}
	if !a.HasDstAlign && !a.HasSrcAlign {
		e.builder.AddCopyMemory(dstID, srcID)
		return nil
	}
	dstAlign := uint32(1)
	if a.HasDstAlign {
		dstAlign = uint32(1) << a.DstLog2Align
	}
	srcAlign := uint32(1)
	if a.HasSrcAlign {
		srcAlign = uint32(1) << a.SrcLog2Align
	}
	e.builder.AddCopyMemoryAligned(dstID, srcID, dstAlign, srcAlign)
	return nil
}

func (e *Emitter) emitCallAnchor(a fg.AnchorFunctionCall) (uint32, error) {
	slot, ok := e.funcIndexSlot[a.FuncIndex]
	if !ok {
		return 0, fmt.Errorf("spirv: call to unknown function index %d", a.FuncIndex)
	}
	callee := e.funcStates[slot]
	args := make([]uint32, len(a.Args))
	for i, arg := range a.Args {
		id, err := e.emitValue(arg)
		if err != nil {
			return 0, err
		}
		args[i] = id
	}
	return e.builder.AddFunctionCall(e.typeVoid(), callee.funcID, args...), nil
}
