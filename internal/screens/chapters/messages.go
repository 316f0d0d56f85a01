package chapters

import "github.com/shuhei10/whquiz/internal/pool"

// poolLoadedMsg carries the result of one pool load. seq ties it to the
// request that started it; the screen drops results from superseded
// loads.
type poolLoadedMsg struct {
	seq     int
	payload *pool.Payload
	err     error
}

// reviewCountsMsg carries the per-chapter review set sizes for the
// grade, keyed by chapter name.
type reviewCountsMsg struct {
	seq    int
	counts map[string]int
	total  int
	err    error
}
