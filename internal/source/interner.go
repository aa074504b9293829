package source

import (
	"strings"
)

type StringID uint32

const NoStringID StringID = 0

// Interner dedupes strings that repeat across a trace: binary paths of
// backtrace frames, syscall names, signal names. A trace with backtraces
// repeats the same few dozen paths hundreds of thousands of times.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern вставляет строку и возвращает её ID.
// Если строка уже есть, возвращает её ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// Собственная копия: s обычно срез строки из буфера чтения.
	cpy := strings.Clone(s)
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Canonical returns the interned copy of s.
func (i *Interner) Canonical(s string) string {
	return i.byID[i.Intern(s)]
}

// Lookup возвращает строку по ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// Len возвращает количество строк, NoStringID тоже учитывается.
func (i *Interner) Len() int {
	return len(i.byID)
}
