package reconcile

import "loanlook/internal/domain"

// workingSet is an ordered, copy-on-write view of the applications under
// reconciliation. Removed entries are tombstoned so positions stay stable
// for the code index.
type workingSet struct {
	apps    []domain.Application
	removed []bool
	// live positions per code, ascending; the head is the first match
	index  map[string][]int
	head   int
	lastID int64
}

func newWorkingSet(base []domain.Application) *workingSet {
	ws := &workingSet{
		apps:    make([]domain.Application, len(base), len(base)+8),
		removed: make([]bool, len(base), len(base)+8),
		index:   make(map[string][]int, len(base)),
	}
	copy(ws.apps, base)

	for i, a := range ws.apps {
		ws.index[a.Code] = append(ws.index[a.Code], i)
		if a.ID < ws.lastID {
			ws.lastID = a.ID
		}
	}
	return ws
}

func (ws *workingSet) find(code string) int {
	if pos := ws.index[code]; len(pos) > 0 {
		return pos[0]
	}
	return -1
}

func (ws *workingSet) first() (domain.Application, bool) {
	for ws.head < len(ws.apps) && ws.removed[ws.head] {
		ws.head++
	}
	if ws.head == len(ws.apps) {
		return domain.Application{}, false
	}
	return ws.apps[ws.head], true
}

func (ws *workingSet) append(a domain.Application) {
	ws.apps = append(ws.apps, a)
	ws.removed = append(ws.removed, false)
	ws.index[a.Code] = append(ws.index[a.Code], len(ws.apps)-1)
}

func (ws *workingSet) remove(i int) {
	ws.removed[i] = true

	code := ws.apps[i].Code
	pos := ws.index[code]
	for k, p := range pos {
		if p == i {
			pos = append(pos[:k:k], pos[k+1:]...)
			break
		}
	}
	if len(pos) == 0 {
		delete(ws.index, code)
		return
	}
	ws.index[code] = pos
}

// nextID hands out ids below every id seen so far.
func (ws *workingSet) nextID() int64 {
	ws.lastID--
	return ws.lastID
}

func (ws *workingSet) collect() []domain.Application {
	out := make([]domain.Application, 0, len(ws.apps))
	for i, a := range ws.apps {
		if !ws.removed[i] {
			out = append(out, a)
		}
	}
	return out
}
