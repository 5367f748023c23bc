package dungeonecs

import "sort"

// Phase is a named stage a system runs in. Phases always execute in the
// fixed order PreUpdate, Update, PostUpdate within a tick.
type Phase string

const (
	PreUpdate  Phase = "pre_update"
	Update     Phase = "update"
	PostUpdate Phase = "post_update"
)

var tickPhases = []Phase{PreUpdate, Update, PostUpdate}

// SystemFunc is one unit of per-tick world logic.
type SystemFunc func(w *World)

// System is a registered unit of work within a phase, with optional
// ordering constraints relative to other systems in the same phase.
type System struct {
	Name    string
	Phase   Phase
	Before  []string
	After   []string
	Enabled bool
	Run     SystemFunc
}

type scheduledSystem struct {
	System
	regSeq int
}

// Scheduler orders and runs registered systems phase by phase. Within a
// phase, Before/After declarations are resolved with a stable topological
// sort: ties (no ordering constraint between two systems) break by
// registration order, so scheduling is deterministic across runs.
type Scheduler struct {
	byPhase map[Phase][]*scheduledSystem
	byName  map[string]*scheduledSystem
	regSeq  int
	dirty   map[Phase]bool
	order   map[Phase][]*scheduledSystem
}

func newScheduler() *Scheduler {
	return &Scheduler{
		byPhase: make(map[Phase][]*scheduledSystem),
		byName:  make(map[string]*scheduledSystem),
		dirty:   make(map[Phase]bool),
		order:   make(map[Phase][]*scheduledSystem),
	}
}

// Register adds a system to the scheduler. Systems start enabled; use
// SetEnabled to disable one after registration.
func (s *Scheduler) Register(sys System) {
	s.regSeq++
	sys.Enabled = true
	ss := &scheduledSystem{System: sys, regSeq: s.regSeq}
	s.byPhase[sys.Phase] = append(s.byPhase[sys.Phase], ss)
	s.byName[sys.Name] = ss
	s.dirty[sys.Phase] = true
}

// SetEnabled toggles a registered system's Enabled flag by name.
func (s *Scheduler) SetEnabled(name string, enabled bool) {
	if ss, ok := s.byName[name]; ok {
		ss.Enabled = enabled
	}
}

// compile resolves Before/After into a concrete run order for phase,
// using Kahn's algorithm with a priority queue keyed by registration
// order to keep unconstrained systems in registration order.
func (s *Scheduler) compile(phase Phase) ([]*scheduledSystem, error) {
	systems := s.byPhase[phase]
	indegree := make(map[string]int, len(systems))
	adj := make(map[string][]string)
	byName := make(map[string]*scheduledSystem, len(systems))
	for _, sys := range systems {
		indegree[sys.Name] = 0
		byName[sys.Name] = sys
	}
	addEdge := func(from, to string) {
		if _, ok := byName[from]; !ok {
			return
		}
		if _, ok := byName[to]; !ok {
			return
		}
		adj[from] = append(adj[from], to)
		indegree[to]++
	}
	for _, sys := range systems {
		for _, after := range sys.After {
			addEdge(after, sys.Name)
		}
		for _, before := range sys.Before {
			addEdge(sys.Name, before)
		}
	}

	var ready []*scheduledSystem
	for _, sys := range systems {
		if indegree[sys.Name] == 0 {
			ready = append(ready, sys)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].regSeq < ready[j].regSeq })

	var order []*scheduledSystem
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		var newlyReady []*scheduledSystem
		for _, dep := range adj[next.Name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				newlyReady = append(newlyReady, byName[dep])
			}
		}
		sort.Slice(newlyReady, func(i, j int) bool { return newlyReady[i].regSeq < newlyReady[j].regSeq })
		ready = append(ready, newlyReady...)
		sort.Slice(ready, func(i, j int) bool { return ready[i].regSeq < ready[j].regSeq })
	}
	if len(order) != len(systems) {
		return nil, CircularSystemDependencyError{Phase: phase}
	}
	return order, nil
}

func (s *Scheduler) ensureCompiled(phase Phase) error {
	if !s.dirty[phase] {
		return nil
	}
	order, err := s.compile(phase)
	if err != nil {
		return err
	}
	s.order[phase] = order
	s.dirty[phase] = false
	return nil
}

// RunPhase runs every enabled system registered for phase, in dependency
// order.
func (s *Scheduler) RunPhase(w *World, phase Phase) error {
	if err := s.ensureCompiled(phase); err != nil {
		return err
	}
	for _, sys := range s.order[phase] {
		if !sys.Enabled {
			continue
		}
		sys.Run(w)
	}
	return nil
}

// RunAll runs PreUpdate, Update, then PostUpdate in order.
func (s *Scheduler) RunAll(w *World) error {
	for _, phase := range tickPhases {
		if err := s.RunPhase(w, phase); err != nil {
			return err
		}
	}
	return nil
}
