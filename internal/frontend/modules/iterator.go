package modules

import (
	"container/heap"
	"sync"
)

// sharedReady is the process-wide condvar that lets one
// DependencyIterator's progress wake waiters blocked on a sibling
// iterator (spec §4.H/§5: "the process-wide condvar allows one
// iterator's progress to wake waiters on sibling iterators").
var (
	sharedMu   sync.Mutex
	sharedCond = sync.NewCond(&sharedMu)
)

type readyItem struct {
	node     *Node
	priority int
	seq      int // insertion order, for deterministic tie-breaking
}

type readyQueue []*readyItem

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q readyQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x interface{}) { *q = append(*q, x.(*readyItem)) }
func (q *readyQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// DependencyIterator hands translation units to worker goroutines in
// priority order, gated by dependency completion (spec §4.H). State
// is protected by one mutex local to the iterator; stepsCompleted on
// each Node is additionally atomic so it can be read without it.
type DependencyIterator struct {
	localCond *sync.Cond
	mu        sync.Mutex

	rootsNotReady      []*Node
	rootsReady         readyQueue
	rootsSentButNotDone map[string]*Node
	childModules       map[Declaration]*Node
	minStageCompleted   int64
	totalNumModules     int
	nextSeq             int
}

// NewDependencyIterator builds an iterator over g that hands out a
// node once MarkDone has been called for each of its imports and its
// own StepsDone has reached minStageCompleted.
func NewDependencyIterator(g *Graph, minStageCompleted int64) *DependencyIterator {
	it := &DependencyIterator{
		rootsSentButNotDone: map[string]*Node{},
		childModules:        map[Declaration]*Node{},
		minStageCompleted:   minStageCompleted,
		totalNumModules:     len(g.Roots) + len(g.Children),
	}
	it.localCond = sync.NewCond(&it.mu)
	for decl, n := range g.Children {
		it.childModules[decl] = n
	}
	for _, n := range g.Roots {
		it.rootsNotReady = append(it.rootsNotReady, n)
	}
	return it
}

// updateReadies moves nodes whose StepsDone has reached the required
// stage from rootsNotReady into the rootsReady heap. Caller must hold
// mu.
func (it *DependencyIterator) updateReadies() {
	var stillNotReady []*Node
	for _, n := range it.rootsNotReady {
		if n.StepsDone() >= it.minStageCompleted {
			priority := len(n.DependedBy)*it.totalNumModules + n.Depth
			heap.Push(&it.rootsReady, &readyItem{node: n, priority: priority, seq: it.nextSeq})
			it.nextSeq++
		} else {
			stillNotReady = append(stillNotReady, n)
		}
	}
	it.rootsNotReady = stillNotReady
}

// WouldBlock reports whether calling Next now would have to wait for
// another goroutine's markDone, a debugging aid carried from the
// original implementation's wouldLockIfNext.
func (it *DependencyIterator) WouldBlock() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return len(it.rootsNotReady) == 0 && it.rootsReady.Len() == 0 && len(it.childModules) > 0
}

// Next blocks until a translation unit is ready to run, or returns
// ("", false) once every unit has been delivered and nothing remains
// blocked (spec §4.H step-by-step next()).
func (it *DependencyIterator) Next() (string, bool) {
	it.mu.Lock()
	for len(it.rootsNotReady) == 0 && it.rootsReady.Len() == 0 &&
		len(it.rootsSentButNotDone) != 0 && len(it.childModules) != 0 {
		it.localCond.Wait()
	}

	if len(it.rootsNotReady) == 0 && it.rootsReady.Len() == 0 && len(it.childModules) == 0 {
		it.mu.Unlock()
		return "", false
	}

	if len(it.rootsNotReady) == 0 && it.rootsReady.Len() == 0 &&
		len(it.rootsSentButNotDone) == 0 && len(it.childModules) != 0 {
		// No unit is in flight, none is ready, yet children remain:
		// every import was satisfied so this can only be an internal
		// bookkeeping bug, not a user-facing deadlock.
		panic("modules: DependencyIterator stalled with no unit in flight")
	}
	it.mu.Unlock()

	sharedMu.Lock()
	it.mu.Lock()
	for {
		it.updateReadies()
		if it.rootsReady.Len() > 0 {
			break
		}
		it.mu.Unlock()
		sharedCond.Wait()
		it.mu.Lock()
	}
	sharedMu.Unlock()

	item := heap.Pop(&it.rootsReady).(*readyItem)
	it.rootsSentButNotDone[item.node.TU] = item.node
	it.mu.Unlock()
	return item.node.TU, true
}

// MarkDone records that tu finished pipeline stage newStage, promoting
// any dependent whose last blocking import this was, then wakes both
// this iterator's waiters and every sibling iterator's (spec §4.H
// markDone).
func (it *DependencyIterator) MarkDone(tu string, newStage int64) {
	it.mu.Lock()
	root, ok := it.rootsSentButNotDone[tu]
	if !ok {
		it.mu.Unlock()
		panic("modules: MarkDone called for a TU that was never sent")
	}
	delete(it.rootsSentButNotDone, tu)
	root.markStep(newStage)

	for _, childDecl := range root.DependedBy {
		child, present := it.childModules[childDecl]
		if !present {
			continue
		}
		delete(child.DependsOn, root.Decl)
		if len(child.DependsOn) == 0 {
			delete(it.childModules, childDecl)
			it.rootsNotReady = append(it.rootsNotReady, child)
		}
	}
	it.updateReadies()
	it.mu.Unlock()

	it.localCond.Signal()
	sharedCond.Broadcast()
}
