package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// whereBuilder accumulates "$n" placeholder conditions.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(args ...any) *whereBuilder {
	return &whereBuilder{conds: []string{"1=1"}, args: args}
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addTimeRange(column string, from, to *time.Time) {
	if from != nil {
		w.add(column+" >= $%d", *from)
	}
	if to != nil {
		w.add(column+" < $%d", *to)
	}
}

func (w *whereBuilder) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}
